package errors

// ErrorType 에러의 종류를 분류하는 타입입니다.
//
// 수집 파이프라인의 에러 처리 정책은 에러의 발생 위치(행/페이지/기관/배치)와
// 이 타입의 조합으로 결정됩니다.
type ErrorType string

const (
	// Unknown 분류할 수 없는 에러 (기본값, 사용 지양)
	Unknown ErrorType = "Unknown"

	// Internal 애플리케이션 내부 로직 오류 (버그로 간주)
	Internal ErrorType = "Internal"

	// System 시스템 또는 인프라 수준의 장애 (DB 연결, 파일 I/O 등)
	System ErrorType = "System"

	// Unauthorized 인증 실패 (공공데이터포털 서비스키 거부 등)
	Unauthorized ErrorType = "Unauthorized"

	// InvalidInput 입력값 또는 설정값 검증 실패
	InvalidInput ErrorType = "InvalidInput"

	// Conflict 리소스 충돌 또는 상태 불일치 (중복 실행 등)
	Conflict ErrorType = "Conflict"

	// NotFound 요청한 리소스를 찾을 수 없음
	NotFound ErrorType = "NotFound"

	// ExecutionFailed 비즈니스 로직 또는 외부 호출 실행 실패 (스크래핑 실패 등)
	ExecutionFailed ErrorType = "ExecutionFailed"

	// ParsingFailed 데이터 파싱, 변환, 디코딩 실패 (HTML/JSON/날짜 형식 등)
	ParsingFailed ErrorType = "ParsingFailed"

	// Timeout 작업 시간 초과
	Timeout ErrorType = "Timeout"

	// Unavailable 서비스 일시적 사용 불가 (서버 장애, 과부하, 레이트리밋 등)
	Unavailable ErrorType = "Unavailable"
)

// String ErrorType의 문자열 표현을 반환합니다.
func (t ErrorType) String() string {
	return string(t)
}
