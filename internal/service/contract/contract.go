// Package contract 서비스 계층이 공유하는 계약(인터페이스)을 정의합니다.
//
// 서비스 구현 패키지 간의 직접 의존을 막기 위해 계약만을 이 패키지에 둡니다.
package contract

import (
	"context"
	"sync"
	"time"

	"github.com/darkkaiser/bidnotice-collector/internal/collector/model"
)

// Service 애플리케이션 생명주기에 참여하는 서비스입니다.
//
// Start는 즉시 반환되어야 하며, 서비스 본체는 고루틴에서 실행됩니다.
// serviceStopCtx가 취소되면 서비스는 정리 작업을 수행한 후
// serviceStopWG.Done()을 호출해야 합니다.
type Service interface {
	Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error
}

// BatchRunSnapshot 가장 최근에 완료된 배치 수집의 결과입니다.
type BatchRunSnapshot struct {
	Summary *model.BatchSummary
	Results []*model.OrgResult

	// Report 사람이 읽을 수 있는 요약 텍스트
	Report string

	FinishedAt time.Time
}

// BatchRunner 배치 수집의 실행과 최근 결과 조회를 제공합니다.
type BatchRunner interface {
	// RunBatch 전체 활성 기관에 대한 배치 수집을 수행합니다.
	// 이미 실행 중인 배치가 있으면 Conflict 에러를 반환합니다.
	RunBatch(ctx context.Context) (*BatchRunSnapshot, error)

	// RunOrganization 단일 기관 수집을 수행합니다.
	RunOrganization(ctx context.Context, orgName string) (*model.OrgResult, error)

	// LastRun 가장 최근에 완료된 배치 결과를 반환합니다.
	// 완료된 배치가 없으면 두번째 반환값이 false입니다.
	LastRun() (*BatchRunSnapshot, bool)

	// Running 배치가 실행 중인지 여부를 반환합니다.
	Running() bool
}

// NotificationSender 수집 결과와 장애를 운영자에게 알립니다.
type NotificationSender interface {
	// Notify 메시지를 알림 채널로 전송합니다.
	// 알림 실패는 수집 파이프라인에 영향을 주지 않아야 합니다.
	Notify(ctx context.Context, message string) error
}
