package fetcher

import (
	"io"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/darkkaiser/bidnotice-collector/pkg/log"
)

const (
	// DefaultMaxRetries 최초 시도를 제외한 기본 재시도 횟수입니다.
	DefaultMaxRetries = 3

	// DefaultMinRetryDelay 재시도 대기시간의 기본 하한값입니다.
	DefaultMinRetryDelay = 2 * time.Second

	// DefaultMaxRetryDelay 재시도 대기시간의 기본 상한값입니다.
	DefaultMaxRetryDelay = 30 * time.Second
)

// RetryFetcher 실패한 요청을 지수 백오프로 재시도하는 데코레이터입니다.
//
// 재시도 대상은 멱등성이 보장되는 메소드(GET, HEAD, OPTIONS)로 한정되며,
// 네트워크 오류 또는 재시도 가능한 상태 코드(5xx, 408, 429)가 반환된
// 경우에만 재시도합니다. 서버가 Retry-After 헤더를 반환하면 해당 값을
// 우선 적용합니다.
type RetryFetcher struct {
	delegate   Fetcher
	maxRetries int
	minDelay   time.Duration
	maxDelay   time.Duration
}

var _ Fetcher = (*RetryFetcher)(nil)

// NewRetryFetcher 새로운 RetryFetcher 인스턴스를 생성합니다.
// 잘못된 설정값은 기본값으로 보정됩니다.
func NewRetryFetcher(delegate Fetcher, maxRetries int, minDelay, maxDelay time.Duration) *RetryFetcher {
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	if minDelay <= 0 {
		minDelay = DefaultMinRetryDelay
	}
	if maxDelay < minDelay {
		maxDelay = DefaultMaxRetryDelay
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}

	return &RetryFetcher{
		delegate:   delegate,
		maxRetries: maxRetries,
		minDelay:   minDelay,
		maxDelay:   maxDelay,
	}
}

// Do 요청을 수행하고, 실패시 설정된 횟수만큼 재시도합니다.
func (f *RetryFetcher) Do(req *http.Request) (*http.Response, error) {
	if !isIdempotentMethod(req.Method) {
		return f.delegate.Do(req)
	}

	var resp *http.Response
	var err error

	for attempt := 0; ; attempt++ {
		resp, err = f.delegate.Do(req)

		if err == nil && !isRetryableStatus(resp.StatusCode) {
			return resp, nil
		}
		if attempt >= f.maxRetries {
			break
		}

		delay := f.backoffDelay(attempt)
		if resp != nil {
			if retryAfter, ok := parseRetryAfter(resp.Header.Get("Retry-After")); ok {
				delay = retryAfter
			}
			// 연결 재사용을 위해 응답 본문을 소진한 후 닫습니다.
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}

		log.WithComponentAndFields(component, log.Fields{
			"url":     req.URL.String(),
			"attempt": attempt + 1,
			"delay":   delay.String(),
		}).Debug("HTTP 요청 실패, 잠시 후 재시도합니다.")

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(delay):
		}
	}

	if err != nil {
		return nil, err
	}
	return resp, nil
}

// backoffDelay 시도 횟수에 따른 지수 백오프 대기시간을 계산합니다.
// 동시 재시도가 몰리지 않도록 ±20% 범위의 지터를 더합니다.
func (f *RetryFetcher) backoffDelay(attempt int) time.Duration {
	delay := f.minDelay << uint(attempt)
	if delay > f.maxDelay || delay <= 0 {
		delay = f.maxDelay
	}

	jitter := time.Duration(rand.Int64N(int64(delay) * 2 / 5))
	delay = delay - delay/5 + jitter

	if delay < f.minDelay {
		delay = f.minDelay
	}
	if delay > f.maxDelay {
		delay = f.maxDelay
	}
	return delay
}

func isIdempotentMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	case http.StatusNotImplemented, http.StatusHTTPVersionNotSupported:
		return false
	}
	return statusCode >= 500
}

// parseRetryAfter Retry-After 헤더값을 해석합니다.
// 초 단위 숫자와 HTTP 날짜 형식을 모두 지원합니다.
func parseRetryAfter(value string) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second, true
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d, true
		}
	}
	return 0, false
}
