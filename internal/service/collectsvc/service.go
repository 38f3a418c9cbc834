// Package collectsvc 수집 오케스트레이터를 서비스 생명주기에 연결합니다.
//
// 배치 수집의 중복 실행을 직렬화하고, 가장 최근 실행 결과를 보관하여
// API/알림 채널에 제공합니다.
package collectsvc

import (
	"context"
	"sync"

	"github.com/darkkaiser/bidnotice-collector/internal/collector"
	"github.com/darkkaiser/bidnotice-collector/internal/collector/model"
	apperrors "github.com/darkkaiser/bidnotice-collector/internal/pkg/errors"
	"github.com/darkkaiser/bidnotice-collector/internal/service/contract"
	"github.com/darkkaiser/bidnotice-collector/pkg/log"
)

// component 로깅용 컴포넌트 이름
const component = "collect.service"

// Service 배치 수집 실행 서비스입니다.
type Service struct {
	collector *collector.Collector

	// notificationSender 배치 완료/장애 알림 (nil 허용)
	notificationSender contract.NotificationSender

	// batchMu 배치 실행을 직렬화합니다.
	batchMu      sync.Mutex
	batchRunning bool

	// lastMu 최근 실행 결과를 보호합니다.
	lastMu  sync.RWMutex
	lastRun *contract.BatchRunSnapshot

	running   bool
	runningMu sync.Mutex
}

// 컴파일 타임에 인터페이스 구현 여부를 검증합니다.
var (
	_ contract.Service     = (*Service)(nil)
	_ contract.BatchRunner = (*Service)(nil)
)

// NewService 새로운 Service 인스턴스를 생성합니다.
func NewService(c *collector.Collector, notificationSender contract.NotificationSender) *Service {
	if c == nil {
		panic("Collector는 필수입니다")
	}

	return &Service{
		collector:          c,
		notificationSender: notificationSender,
	}
}

// Start 수집 서비스를 시작합니다.
// 이 서비스는 상주 루프가 없으며, 종료 신호 수신 시 상태만 정리합니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if s.running {
		defer serviceStopWG.Done()
		log.WithComponent(component).Warn("수집 서비스가 이미 실행 중입니다 (중복 호출)")
		return nil
	}

	s.running = true
	log.WithComponent(component).Info("수집 서비스가 시작되었습니다.")

	go func() {
		defer serviceStopWG.Done()

		<-serviceStopCtx.Done()

		s.runningMu.Lock()
		s.running = false
		s.runningMu.Unlock()

		log.WithComponent(component).Info("수집 서비스가 종료되었습니다.")
	}()

	return nil
}

// RunBatch 전체 활성 기관 배치 수집을 수행합니다.
//
// 동시에 하나의 배치만 실행될 수 있습니다. 크론 스케줄과 API 호출이 겹치는
// 경우 나중의 요청은 Conflict 에러를 받습니다.
func (s *Service) RunBatch(ctx context.Context) (*contract.BatchRunSnapshot, error) {
	s.batchMu.Lock()
	if s.batchRunning {
		s.batchMu.Unlock()
		return nil, apperrors.New(apperrors.Conflict, "배치 수집이 이미 실행 중입니다")
	}
	s.batchRunning = true
	s.batchMu.Unlock()

	defer func() {
		s.batchMu.Lock()
		s.batchRunning = false
		s.batchMu.Unlock()
	}()

	summary, results, err := s.collector.CollectAllActive(ctx)
	if err != nil {
		s.notify(ctx, "배치 수집이 실패하였습니다.\r\n\r\n"+err.Error())
		return nil, err
	}

	snapshot := &contract.BatchRunSnapshot{
		Summary:    summary,
		Results:    results,
		Report:     collector.FormatSummary(summary, results),
		FinishedAt: summary.FinishedAt,
	}

	s.lastMu.Lock()
	s.lastRun = snapshot
	s.lastMu.Unlock()

	s.notify(ctx, snapshot.Report)

	return snapshot, nil
}

// RunOrganization 단일 기관 수집을 수행합니다.
// 배치와 달리 직렬화하지 않으며, 최근 실행 결과에도 반영하지 않습니다.
func (s *Service) RunOrganization(ctx context.Context, orgName string) (*model.OrgResult, error) {
	return s.collector.CollectOrganizationByName(ctx, orgName)
}

// LastRun 가장 최근에 완료된 배치 결과를 반환합니다.
func (s *Service) LastRun() (*contract.BatchRunSnapshot, bool) {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()

	if s.lastRun == nil {
		return nil, false
	}
	return s.lastRun, true
}

// Running 배치가 실행 중인지 여부를 반환합니다.
func (s *Service) Running() bool {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	return s.batchRunning
}

// notify 알림 채널로 메시지를 전송합니다. 실패는 로깅만 합니다.
func (s *Service) notify(ctx context.Context, message string) {
	if s.notificationSender == nil {
		return
	}
	if err := s.notificationSender.Notify(ctx, message); err != nil {
		log.WithComponent(component).WithError(err).Warn("수집 결과 알림 전송이 실패하였습니다.")
	}
}
