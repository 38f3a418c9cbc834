package fetcher

import "time"

// Config Fetcher 체인 조립에 필요한 설정값입니다.
type Config struct {
	// Timeout HTTP 요청 전체에 대한 타임아웃
	Timeout time.Duration

	// MaxRetries 최초 시도를 제외한 최대 재시도 횟수
	MaxRetries int

	// MinRetryDelay, MaxRetryDelay 재시도 대기시간의 하한/상한
	MinRetryDelay time.Duration
	MaxRetryDelay time.Duration

	// RequestInterval 요청 간 최소 간격
	RequestInterval time.Duration

	// UserAgent 요청에 부여할 User-Agent 헤더값
	UserAgent string
}

// New 설정값에 따라 전체 데코레이터 체인을 조립한 Fetcher를 생성합니다.
//
// 재시도가 최상위 데코레이터이므로 각 재시도마다 요청 간격 제한이
// 다시 적용됩니다.
func New(config Config) Fetcher {
	var f Fetcher = NewHTTPFetcher(config.Timeout)
	f = NewUserAgentFetcher(f, config.UserAgent)
	f = NewRateLimitFetcher(f, config.RequestInterval)
	f = NewRetryFetcher(f, config.MaxRetries, config.MinRetryDelay, config.MaxRetryDelay)
	return f
}
