package fetcher

import (
	"fmt"
	"net/http"

	apperrors "github.com/darkkaiser/bidnotice-collector/internal/pkg/errors"
)

// HTTPStatusError 2xx가 아닌 HTTP 응답 상태를 나타내는 에러입니다.
type HTTPStatusError struct {
	StatusCode int
	URL        string
}

// Error 표준 error 인터페이스를 구현합니다.
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP 요청 실패 (URL: %s, Status: %d %s)", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// CheckResponseStatus 응답 상태 코드가 2xx 범위인지 검증합니다.
//
// 상태 코드에 따라 에러 타입을 분류합니다:
//   - 5xx, 408, 429: Unavailable (일시적일 수 있으므로 재시도 가능)
//   - 그 외 4xx: ExecutionFailed (재시도 불필요)
func CheckResponseStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	statusErr := &HTTPStatusError{StatusCode: resp.StatusCode}
	if resp.Request != nil && resp.Request.URL != nil {
		statusErr.URL = resp.Request.URL.String()
	}

	errType := apperrors.Unavailable
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		if resp.StatusCode != http.StatusRequestTimeout && resp.StatusCode != http.StatusTooManyRequests {
			errType = apperrors.ExecutionFailed
		}
	}

	return apperrors.Wrap(statusErr, errType, "HTTP 응답 상태가 올바르지 않습니다")
}
