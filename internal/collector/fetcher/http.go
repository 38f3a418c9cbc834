package fetcher

import (
	"net/http"
	"time"
)

const (
	// DefaultTimeout HTTP 요청 전체(전송~본문 수신)에 대한 기본 타임아웃입니다.
	// 이 시간을 초과한 요청은 페이지 접근 실패로 처리됩니다.
	DefaultTimeout = 30 * time.Second

	// 연결 풀 기본값
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 5
	defaultIdleConnTimeout     = 90 * time.Second
	defaultTLSHandshakeTimeout = 10 * time.Second
)

// HTTPFetcher net/http 기반의 기본 Fetcher 구현체입니다.
//
// 전역 http.DefaultClient를 사용하지 않고 전용 클라이언트를 보유하여,
// 테스트 실행과 운영 실행 간에 숨은 공유 상태가 생기지 않도록 합니다.
type HTTPFetcher struct {
	client *http.Client
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher 새로운 HTTPFetcher 인스턴스를 생성합니다.
// timeout이 0 이하이면 DefaultTimeout이 적용됩니다.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        defaultMaxIdleConns,
		MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
		IdleConnTimeout:     defaultIdleConnTimeout,
		TLSHandshakeTimeout: defaultTLSHandshakeTimeout,
	}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Do HTTP 요청을 수행합니다.
func (f *HTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	return f.client.Do(req)
}
