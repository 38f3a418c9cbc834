package fetcher

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitFetcher 요청 간 최소 간격을 보장하는 데코레이터입니다.
//
// 대상 서버(기관 홈페이지, 공공데이터 API)에 대한 과도한 요청을 방지하기
// 위해 수집 파이프라인 전체가 하나의 RateLimitFetcher를 공유합니다.
// 요청의 컨텍스트가 취소되면 대기를 중단하고 즉시 반환합니다.
type RateLimitFetcher struct {
	delegate Fetcher
	limiter  *rate.Limiter
}

var _ Fetcher = (*RateLimitFetcher)(nil)

// NewRateLimitFetcher 새로운 RateLimitFetcher 인스턴스를 생성합니다.
// minInterval이 0 이하이면 간격 제한 없이 요청을 위임합니다.
func NewRateLimitFetcher(delegate Fetcher, minInterval time.Duration) *RateLimitFetcher {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &RateLimitFetcher{
		delegate: delegate,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Do 요청 간 최소 간격이 지날 때까지 대기한 후 요청을 위임합니다.
func (f *RateLimitFetcher) Do(req *http.Request) (*http.Response, error) {
	if err := f.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return f.delegate.Do(req)
}
