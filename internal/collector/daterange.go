package collector

import (
	"context"
	"time"

	"github.com/darkkaiser/bidnotice-collector/internal/collector/g2b"
	"github.com/darkkaiser/bidnotice-collector/internal/collector/model"
	apperrors "github.com/darkkaiser/bidnotice-collector/internal/pkg/errors"
	"github.com/darkkaiser/bidnotice-collector/pkg/log"
)

// CollectDateRange 나라장터 API에서 날짜 범위의 공고를 하루 단위로 수집합니다.
//
// 일 단위 결과는 하나의 Result에 합산됩니다. 요청 간격 제한은 공유
// Fetcher 체인이 담당하므로 이 함수는 별도의 대기를 수행하지 않습니다.
// 인증 실패는 즉시 전체 수집을 중단시키며, 그 외의 일 단위 실패는 집계 후
// 다음 날짜로 계속합니다. 취소는 날짜 사이에서만 확인됩니다.
func (c *Collector) CollectDateRange(ctx context.Context, query g2b.Query, begin, end time.Time) (*model.Result, error) {
	if c.g2bClient == nil {
		return nil, apperrors.New(apperrors.InvalidInput, "입찰공고 API 클라이언트가 설정되지 않았습니다")
	}
	if begin.After(end) {
		return nil, apperrors.Newf(apperrors.InvalidInput, "조회 기간이 올바르지 않습니다 (시작: %s, 종료: %s)", begin.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	classifier, err := c.loadClassifier(ctx)
	if err != nil {
		return nil, err
	}

	log.WithComponentAndFields(component, log.Fields{
		"begin": begin.Format("2006-01-02"),
		"end":   end.Format("2006-01-02"),
	}).Info("날짜 범위 API 수집을 시작합니다.")

	result := model.NewResult(c.errorListCap)

	for day := truncateToDay(begin); !day.After(end); day = day.AddDate(0, 0, 1) {
		// 취소는 날짜 사이에서만 확인합니다.
		if ctx.Err() != nil {
			log.WithComponent(component).Warn("날짜 범위 수집이 취소되어 남은 날짜를 건너뜁니다.")
			break
		}

		dayQuery := query
		dayQuery.Begin = day
		dayQuery.End = day.Add(24*time.Hour - time.Minute)

		notices, err := c.g2bClient.Fetch(ctx, dayQuery)
		if err != nil {
			// 유효하지 않은 서비스키로는 이후 날짜도 모두 실패하므로 즉시 중단합니다.
			if apperrors.Is(err, apperrors.Unauthorized) {
				return nil, err
			}
			result.AddError(err.Error())
			continue
		}

		for _, raw := range notices {
			result.TotalCount++

			notice := c.normalizeRecord(raw, nil, classifier)
			result.CollectedCount++

			inserted, err := c.notices.UpsertNotice(ctx, notice)
			if err != nil {
				result.AddError(err.Error())
				continue
			}
			if inserted {
				result.NewCount++
			} else {
				result.UpdatedCount++
			}
		}
	}

	log.WithComponentAndFields(component, log.Fields{
		"total":  result.TotalCount,
		"new":    result.NewCount,
		"errors": result.ErrorCount,
	}).Info("날짜 범위 API 수집을 완료했습니다.")

	return result, nil
}

// truncateToDay 시각 부분을 제거하고 해당 날짜의 자정으로 맞춥니다.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
