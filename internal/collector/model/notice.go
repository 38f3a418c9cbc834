package model

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"
)

// RawNotice 스크래핑된 행 또는 API 응답 항목 1건의 원시 데이터입니다.
//
// 행 추출기 또는 나라장터 API 클라이언트가 생성하며, 오케스트레이터가
// 즉시 소비합니다. 원시 형태로는 저장되지 않습니다.
type RawNotice struct {
	Title       string    // 공고 제목
	DetailURL   string    // 상세 페이지 URL (상대 경로일 수 있음)
	PostedDate  string    // 게시일 (정규화 전 원시 문자열)
	PostedBy    string    // 게시자/담당부서
	OrgName     string    // 기관명
	Category    string    // 분류 (분류 전 단계에서는 빈 문자열)
	BidNoticeNo string    // 입찰공고번호 (API 수집 건에만 존재)
	Region      string    // 지역
	ScrapedAt   time.Time // 수집 시각
	Raw         string    // 감사(audit)용 원본 페이로드
}

// RowErrorCode 행 단위 추출 실패의 에러 코드입니다.
type RowErrorCode string

const (
	// RowErrTitle 제목 추출 실패
	RowErrTitle RowErrorCode = "TitleError"

	// RowErrURL 상세 URL 추출 실패
	RowErrURL RowErrorCode = "UrlError"

	// RowErrDate 게시일 추출 실패
	RowErrDate RowErrorCode = "DateError"
)

// RowError 단일 행의 추출 실패를 나타냅니다.
// 행 단위 실패는 페이지 전체를 중단시키지 않고 수집 결과에 집계됩니다.
type RowError struct {
	Code    RowErrorCode
	Row     int // 페이지 내 행 번호 (문서 순서, 0부터 시작)
	Message string
}

// NewRowError 새로운 RowError 인스턴스를 생성합니다.
func NewRowError(code RowErrorCode, row int, message string) *RowError {
	return &RowError{Code: code, Row: row, Message: message}
}

// Error 표준 error 인터페이스를 구현합니다.
func (e *RowError) Error() string {
	return fmt.Sprintf("[%s] 행 %d: %s", e.Code, e.Row, e.Message)
}

// RowResult 행 추출의 결과입니다. Notice와 Err 중 정확히 하나만 설정됩니다.
//
// 호출자는 IsError()를 통해 두 경우를 명시적으로 구분하여 처리해야 합니다.
type RowResult struct {
	Notice *RawNotice
	Err    *RowError
}

// IsError 이 결과가 행 단위 에러인지 여부를 반환합니다.
func (r RowResult) IsError() bool {
	return r.Err != nil
}

// CategoryIrrelevant 어떤 분류 규칙에도 해당하지 않는 공고에 부여되는 분류입니다.
const CategoryIrrelevant = "무관"

// NormalizedNotice 저장소에 영속되는 정규화 공고 레코드입니다.
//
// 불변식:
//   - PostedDate는 항상 "YYYY-MM-DD" 형식이며 미래 날짜가 아닙니다.
//   - DetailURL은 항상 절대 URL입니다.
type NormalizedNotice struct {
	NID          string    // 공고 식별자 (입찰공고번호 또는 파생 식별자)
	Title        string    // 공고 제목
	OrgName      string    // 기관명
	PostedDate   string    // 게시일 (YYYY-MM-DD)
	DetailURL    string    // 상세 페이지 절대 URL
	Category     string    // 분류 (미분류 시 "무관")
	Region       string    // 지역
	Registration string    // 등록 번호
	Raw          string    // 감사용 원본 페이로드
	ScrapedAt    time.Time // 수집 시각
}

// DeriveNID HTML 수집 건의 공고 식별자를 파생합니다.
// (기관명, 제목, 게시일)의 SHA-1 해시 앞 20자를 사용합니다.
// API 수집 건은 입찰공고번호를 그대로 사용하므로 이 함수를 거치지 않습니다.
func DeriveNID(orgName, title, postedDate string) string {
	sum := sha1.Sum([]byte(orgName + "\x00" + title + "\x00" + postedDate))
	return hex.EncodeToString(sum[:])[:20]
}
