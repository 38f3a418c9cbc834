package model

import (
	"time"
)

// OrgRunStatus 기관 단위 수집 실행의 상태입니다.
type OrgRunStatus string

const (
	StatusPending     OrgRunStatus = "Pending"
	StatusFetching    OrgRunStatus = "Fetching"
	StatusExtracting  OrgRunStatus = "Extracting"
	StatusClassifying OrgRunStatus = "Classifying"
	StatusPersisting  OrgRunStatus = "Persisting"
	StatusDone        OrgRunStatus = "Done"
	StatusFailed      OrgRunStatus = "Failed"
)

// DefaultErrorListCap 수집 결과에 보관하는 에러 메시지의 기본 상한입니다.
const DefaultErrorListCap = 20

// Result 수집 실행 1회의 누적 카운터입니다.
//
// 실행 시작 시 빈 상태로 생성되어 레코드 처리마다 증가하며,
// 실행 종료 후 리포터로 전달된 뒤에는 변경되지 않습니다.
type Result struct {
	TotalCount     int // 원시 항목 수 (행 단위 에러 포함)
	CollectedCount int // 파싱+검증에 성공한 항목 수
	NewCount       int // 신규 저장된 항목 수
	UpdatedCount   int // 기존 키에 갱신된 항목 수
	ErrorCount     int // 행/레코드 단위 에러 수

	// Errors 에러 메시지 목록 (가독성을 위해 errorListCap 개로 절단)
	Errors []string

	// errorListCap 보관할 에러 메시지의 최대 개수 (0: 기본값 사용)
	errorListCap int

	// truncated 상한 초과로 메시지가 유실되었는지 여부
	truncated bool
}

// NewResult 에러 목록 상한이 설정된 빈 Result를 생성합니다.
func NewResult(errorListCap int) *Result {
	if errorListCap <= 0 {
		errorListCap = DefaultErrorListCap
	}
	return &Result{errorListCap: errorListCap}
}

// AddError 에러 수를 증가시키고 메시지를 목록에 추가합니다.
// 목록이 상한에 도달하면 메시지는 버려지고 카운터만 증가합니다.
func (r *Result) AddError(msg string) {
	r.ErrorCount++

	if r.errorListCap <= 0 {
		r.errorListCap = DefaultErrorListCap
	}
	if len(r.Errors) < r.errorListCap {
		r.Errors = append(r.Errors, msg)
	} else {
		r.truncated = true
	}
}

// Truncated 에러 메시지 목록이 상한 초과로 절단되었는지 여부를 반환합니다.
func (r *Result) Truncated() bool {
	return r.truncated
}

// Merge 다른 Result의 카운터를 이 Result에 합산합니다.
// 날짜 범위 수집에서 일 단위 결과를 누적할 때 사용됩니다.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}

	r.TotalCount += other.TotalCount
	r.CollectedCount += other.CollectedCount
	r.NewCount += other.NewCount
	r.UpdatedCount += other.UpdatedCount
	r.ErrorCount += other.ErrorCount

	if r.errorListCap <= 0 {
		r.errorListCap = DefaultErrorListCap
	}
	for _, msg := range other.Errors {
		if len(r.Errors) < r.errorListCap {
			r.Errors = append(r.Errors, msg)
		} else {
			r.truncated = true
		}
	}
	if other.truncated {
		r.truncated = true
	}
}

// OrgResult 기관 1곳에 대한 수집 실행 결과입니다.
type OrgResult struct {
	OrgName string
	Status  OrgRunStatus
	Result  *Result

	// Err 기관 단위 실패의 원인 (Status == StatusFailed인 경우에만 설정)
	Err error
}

// Failed 기관 단위 실패 여부를 반환합니다.
func (r *OrgResult) Failed() bool {
	return r.Status == StatusFailed
}

// BatchSummary 배치 수집 1회의 최종 요약입니다.
// 크론 출력, 통계 화면, 알림 메시지의 공통 원천입니다.
type BatchSummary struct {
	TotalOrgs  int      // 처리 대상 기관 수
	ErrorOrgs  int      // 기관 단위 실패 수
	FailedOrgs []string // 실패한 기관명 목록

	Total *Result // 전체 기관 합산 카운터

	StartedAt  time.Time
	FinishedAt time.Time
}

// ScrapeLogEntry 기관 1곳, 실행 1회의 감사 로그입니다. 추가 전용(append-only)입니다.
type ScrapeLogEntry struct {
	OrgName       string
	ErrorCode     string // 기관 단위 실패의 에러 타입 (성공 시 빈 문자열)
	ErrorMessage  string
	ScrapedCount  int
	NewCount      int
	InsertedCount int
	CreatedAt     time.Time
}
