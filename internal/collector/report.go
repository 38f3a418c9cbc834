package collector

import (
	"fmt"
	"strings"
	"time"

	"github.com/darkkaiser/bidnotice-collector/internal/collector/model"
)

// BuildSummary 기관별 수집 결과를 배치 요약으로 집계합니다.
func BuildSummary(results []*model.OrgResult, startedAt, finishedAt time.Time, errorListCap int) *model.BatchSummary {
	summary := &model.BatchSummary{
		TotalOrgs:  len(results),
		Total:      model.NewResult(errorListCap),
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}

	for _, r := range results {
		summary.Total.Merge(r.Result)
		if r.Failed() {
			summary.ErrorOrgs++
			summary.FailedOrgs = append(summary.FailedOrgs, r.OrgName)
		}
	}

	return summary
}

// FormatOrgResult 기관 1곳의 수집 결과를 한 줄 요약으로 만듭니다.
// 크론 실행 시 표준 출력 계약(기관별 수집/신규/저장 건수)의 단위입니다.
func FormatOrgResult(r *model.OrgResult) string {
	if r.Failed() {
		return fmt.Sprintf("[실패] %s: %v", r.OrgName, r.Err)
	}
	return fmt.Sprintf("[완료] %s: 수집 %d건, 신규 %d건, 갱신 %d건, 에러 %d건",
		r.OrgName, r.Result.TotalCount, r.Result.NewCount, r.Result.UpdatedCount, r.Result.ErrorCount)
}

// FormatSummary 배치 요약을 여러 줄의 보고 텍스트로 만듭니다.
// 크론 표준 출력, 텔레그램 알림, API 응답에서 공통으로 사용됩니다.
func FormatSummary(summary *model.BatchSummary, results []*model.OrgResult) string {
	var b strings.Builder

	for _, r := range results {
		b.WriteString(FormatOrgResult(r))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString("== 수집 결과 요약 ==\n")
	fmt.Fprintf(&b, "대상 기관: %d곳 (실패 %d곳)\n", summary.TotalOrgs, summary.ErrorOrgs)
	fmt.Fprintf(&b, "수집: %d건 / 신규: %d건 / 갱신: %d건 / 에러: %d건\n",
		summary.Total.TotalCount, summary.Total.NewCount, summary.Total.UpdatedCount, summary.Total.ErrorCount)
	fmt.Fprintf(&b, "소요 시간: %s\n", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Second))

	if len(summary.FailedOrgs) > 0 {
		fmt.Fprintf(&b, "실패 기관: %s\n", strings.Join(summary.FailedOrgs, ", "))
	}
	if len(summary.Total.Errors) > 0 {
		b.WriteString("에러 메시지:\n")
		for _, msg := range summary.Total.Errors {
			fmt.Fprintf(&b, "  - %s\n", msg)
		}
		if summary.Total.Truncated() {
			b.WriteString("  - (이하 생략)\n")
		}
	}

	return b.String()
}
