package fetcher

import "net/http"

// DefaultUserAgent User-Agent 헤더의 기본값입니다.
// 일부 기관 홈페이지는 브라우저가 아닌 User-Agent의 접근을 차단합니다.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// UserAgentFetcher 요청에 User-Agent 헤더를 부여하는 데코레이터입니다.
// 호출자가 이미 User-Agent를 지정한 요청은 변경하지 않습니다.
type UserAgentFetcher struct {
	delegate  Fetcher
	userAgent string
}

var _ Fetcher = (*UserAgentFetcher)(nil)

// NewUserAgentFetcher 새로운 UserAgentFetcher 인스턴스를 생성합니다.
// userAgent가 빈 문자열이면 DefaultUserAgent가 적용됩니다.
func NewUserAgentFetcher(delegate Fetcher, userAgent string) *UserAgentFetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &UserAgentFetcher{
		delegate:  delegate,
		userAgent: userAgent,
	}
}

// Do User-Agent 헤더를 설정한 후 요청을 위임합니다.
func (f *UserAgentFetcher) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	return f.delegate.Do(req)
}
