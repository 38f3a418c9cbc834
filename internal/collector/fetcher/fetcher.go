// Package fetcher HTTP 요청 수행 계층을 제공합니다.
//
// Fetcher 인터페이스를 중심으로 한 데코레이터 체인으로 구성됩니다:
//
//	HTTPFetcher -> UserAgentFetcher -> RateLimitFetcher -> RetryFetcher
//
// 각 데코레이터는 단일 관심사(User-Agent 부여, 요청 간격 제한, 재시도)만을
// 담당하며, 호출자는 최종 조립된 Fetcher만을 사용합니다.
package fetcher

import (
	"context"
	"net/http"
)

// component 로깅용 컴포넌트 이름
const component = "collector.fetcher"

// Fetcher HTTP 요청을 수행하는 인터페이스입니다.
type Fetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// Get 지정된 URL로 HTTP GET 요청을 전송합니다.
// Fetcher 인터페이스의 구현체가 공통으로 사용할 수 있는 헬퍼 함수입니다.
func Get(ctx context.Context, f Fetcher, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return f.Do(req)
}
