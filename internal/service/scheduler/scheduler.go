// Package scheduler 설정된 Cron 스케줄에 맞춰 배치 수집을 자동 실행하는
// 서비스입니다.
package scheduler

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/darkkaiser/bidnotice-collector/internal/config"
	apperrors "github.com/darkkaiser/bidnotice-collector/internal/pkg/errors"
	"github.com/darkkaiser/bidnotice-collector/internal/service/contract"
	"github.com/darkkaiser/bidnotice-collector/pkg/cronx"
	applog "github.com/darkkaiser/bidnotice-collector/pkg/log"
)

// component 로깅용 컴포넌트 이름
const component = "scheduler.service"

// Scheduler Cron 스케줄에 따라 배치 수집을 실행하는 서비스입니다.
type Scheduler struct {
	schedulerConfig config.SchedulerConfig

	cron *cron.Cron

	// batchRunner 배치 수집 실행을 위임받는 인터페이스입니다.
	batchRunner contract.BatchRunner

	// notificationSender 스케줄 등록/실행 장애 알림 (nil 허용)
	notificationSender contract.NotificationSender

	running   bool
	runningMu sync.Mutex
}

var _ contract.Service = (*Scheduler)(nil)

// NewService 새로운 Scheduler 서비스 인스턴스를 생성합니다.
func NewService(schedulerConfig config.SchedulerConfig, batchRunner contract.BatchRunner, notificationSender contract.NotificationSender) *Scheduler {
	if batchRunner == nil {
		panic("BatchRunner는 필수입니다")
	}

	return &Scheduler{
		schedulerConfig: schedulerConfig,

		batchRunner: batchRunner,

		notificationSender: notificationSender,
	}
}

// Start 스케줄러를 시작하고 배치 수집 스케줄을 Cron 엔진에 등록합니다.
func (s *Scheduler) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(component).Info("서비스 시작 진입: Scheduler 서비스 초기화 프로세스를 시작합니다")

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent(component).Warn("Scheduler 서비스가 이미 실행 중입니다 (중복 호출)")
		return nil
	}

	// Cron 엔진 초기화
	// - StandardParser: 초 단위 스케줄링 지원 (6개 필드: 초 분 시 일 월 요일)
	// - Recover: Panic 발생 시 복구하여 다음 스케줄에 영향을 주지 않음
	// - SkipIfStillRunning: 이전 배치가 끝나지 않았으면 다음 실행을 건너뜀
	s.cron = cron.New(
		cron.WithParser(cronx.StandardParser()),
		cron.WithLogger(cron.VerbosePrintfLogger(applog.StandardLogger())),
		cron.WithChain(
			cron.Recover(cron.VerbosePrintfLogger(applog.StandardLogger())),
			cron.SkipIfStillRunning(cron.VerbosePrintfLogger(applog.StandardLogger())),
		),
	)

	if _, err := s.cron.AddFunc(s.schedulerConfig.Spec, func() {
		s.runBatch(serviceStopCtx)
	}); err != nil {
		serviceStopWG.Done()
		return apperrors.Wrapf(err, apperrors.InvalidInput, "잘못된 Cron 표현식입니다 (Spec: %s)", s.schedulerConfig.Spec)
	}

	s.cron.Start()
	s.running = true

	applog.WithComponentAndFields(component, applog.Fields{
		"spec": s.schedulerConfig.Spec,
	}).Info("서비스 시작 완료: Scheduler 서비스가 정상적으로 초기화되었습니다")

	// 종료 신호 대기 (고루틴)
	go func() {
		defer serviceStopWG.Done()

		<-serviceStopCtx.Done()

		s.Stop()
	}()

	return nil
}

// Stop 실행 중인 스케줄러를 안전하게 중지합니다.
// 진행 중인 배치 수집이 있으면 완료될 때까지 대기합니다.
func (s *Scheduler) Stop() {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if !s.running {
		return
	}

	applog.WithComponent(component).Info("종료 절차 진입: Scheduler 서비스 중지 시그널을 수신했습니다")

	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}

	s.cron = nil
	s.running = false

	applog.WithComponent(component).Info("Scheduler 서비스 종료 완료: 모든 리소스가 정리되었습니다")
}

// runBatch 스케줄에 의해 배치 수집을 실행합니다.
//
// 배치 자체의 생명주기는 서비스 종료 신호(serviceStopCtx)에 연결되어,
// Graceful Shutdown 시 기관 사이의 취소 지점에서 수집이 중단됩니다.
func (s *Scheduler) runBatch(serviceStopCtx context.Context) {
	applog.WithComponent(component).Info("스케줄에 의한 배치 수집을 시작합니다.")

	snapshot, err := s.batchRunner.RunBatch(serviceStopCtx)
	if err != nil {
		if apperrors.Is(err, apperrors.Conflict) {
			applog.WithComponent(component).Warn("이전 배치 수집이 아직 실행 중이어서 이번 스케줄을 건너뜁니다.")
			return
		}

		applog.WithComponent(component).WithError(err).Error("스케줄에 의한 배치 수집이 실패하였습니다.")
		s.notifyError(serviceStopCtx, "스케줄에 의한 배치 수집이 실패하였습니다.\r\n\r\n"+err.Error())
		return
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"total_orgs": snapshot.Summary.TotalOrgs,
		"error_orgs": snapshot.Summary.ErrorOrgs,
	}).Info("스케줄에 의한 배치 수집을 완료했습니다.")
}

// notifyError 장애 메시지를 알림 채널로 전송합니다.
func (s *Scheduler) notifyError(ctx context.Context, message string) {
	if s.notificationSender == nil {
		return
	}
	if err := s.notificationSender.Notify(ctx, message); err != nil {
		applog.WithComponent(component).WithError(err).Warn("장애 알림 전송이 실패하였습니다.")
	}
}
