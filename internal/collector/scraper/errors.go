package scraper

import "fmt"

// PageAccessError 목록 페이지 접근 실패(네트워크 오류, 타임아웃, 2xx가 아닌
// 상태 코드)를 나타내는 에러입니다.
type PageAccessError struct {
	URL   string
	Cause error
}

func (e *PageAccessError) Error() string {
	return fmt.Sprintf("페이지(%s) 접근이 실패하였습니다: %v", e.URL, e.Cause)
}

func (e *PageAccessError) Unwrap() error {
	return e.Cause
}

// IframeError iframe으로 구성된 페이지에서 iframe 대상 문서를 가져오지 못한
// 경우를 나타내는 에러입니다.
type IframeError struct {
	URL   string
	Cause error
}

func (e *IframeError) Error() string {
	return fmt.Sprintf("iframe 페이지(%s) 접근이 실패하였습니다: %v", e.URL, e.Cause)
}

func (e *IframeError) Unwrap() error {
	return e.Cause
}
