// Package api 수집기 제어와 상태 조회를 위한 관리용 HTTP API 서버를 제공합니다.
//
// Echo 프레임워크 기반의 HTTP 서버로, 배치 수집 트리거, 최근 수집 결과 조회,
// 서비스 상태 확인 엔드포인트를 노출합니다.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/darkkaiser/bidnotice-collector/internal/config"
	"github.com/darkkaiser/bidnotice-collector/internal/pkg/version"
	"github.com/darkkaiser/bidnotice-collector/internal/service/contract"
	applog "github.com/darkkaiser/bidnotice-collector/pkg/log"
)

// component 로깅용 컴포넌트 이름
const component = "api.service"

// shutdownTimeout Graceful Shutdown 시 최대 대기 시간
const shutdownTimeout = 5 * time.Second

// Service 관리용 HTTP API 서버의 생명주기를 관리하는 서비스입니다.
type Service struct {
	apiConfig config.APIConfig

	debug bool

	batchRunner contract.BatchRunner

	// notificationSender 서버 장애 알림 (nil 허용)
	notificationSender contract.NotificationSender

	buildInfo version.Info

	running   bool
	runningMu sync.Mutex
}

var _ contract.Service = (*Service)(nil)

// NewService 새로운 Service 인스턴스를 생성합니다.
func NewService(apiConfig config.APIConfig, debug bool, batchRunner contract.BatchRunner, notificationSender contract.NotificationSender, buildInfo version.Info) *Service {
	if batchRunner == nil {
		panic("BatchRunner는 필수입니다")
	}

	return &Service{
		apiConfig: apiConfig,

		debug: debug,

		batchRunner: batchRunner,

		notificationSender: notificationSender,

		buildInfo: buildInfo,
	}
}

// Start API 서비스를 시작합니다.
//
// 이 함수는 즉시 반환되며, 실제 서버는 고루틴에서 실행됩니다.
// serviceStopCtx가 취소되면 Graceful Shutdown을 수행합니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(component).Info("서비스 시작 진입: API 서비스 초기화 프로세스를 시작합니다")

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent(component).Warn("API 서비스가 이미 실행 중입니다 (중복 호출)")
		return nil
	}

	s.running = true

	go s.runServiceLoop(serviceStopCtx, serviceStopWG)

	applog.WithComponentAndFields(component, applog.Fields{
		"port": s.apiConfig.ListenPort,
	}).Info("서비스 시작 완료: API 서비스가 정상적으로 초기화되었습니다")

	return nil
}

// runServiceLoop 서버 설정, HTTP 서버 시작, Shutdown 대기를 순차 수행합니다.
func (s *Service) runServiceLoop(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	e := s.setupServer()

	httpServerDone := make(chan struct{})
	go s.startHTTPServer(e, httpServerDone)

	s.waitForShutdown(serviceStopCtx, e, httpServerDone)
}

// setupServer Echo 서버 인스턴스를 생성하고 라우트를 등록합니다.
func (s *Service) setupServer() *echo.Echo {
	e := NewHTTPServer(HTTPServerConfig{
		Debug:        s.debug,
		AllowOrigins: s.apiConfig.AllowedOrigins,
	})

	handler := NewHandler(s.batchRunner, s.buildInfo)
	RegisterRoutes(e, handler, s.apiConfig.AppKey)

	return e
}

// startHTTPServer HTTP 서버를 시작합니다.
// 서버가 종료되면 done 채널을 닫아 대기 중인 고루틴에 신호를 보냅니다.
func (s *Service) startHTTPServer(e *echo.Echo, done chan struct{}) {
	defer close(done)

	s.handleServerError(e.Start(fmt.Sprintf(":%d", s.apiConfig.ListenPort)))
}

// handleServerError HTTP 서버 종료 시 발생한 에러를 처리합니다.
func (s *Service) handleServerError(err error) {
	if err == nil {
		return
	}

	// Graceful Shutdown에 의한 정상 종료
	if errors.Is(err, http.ErrServerClosed) {
		applog.WithComponent(component).Info("HTTP 서버가 정상 종료되었습니다.")
		return
	}

	message := "HTTP 서버가 비정상 종료되었습니다."
	applog.WithComponentAndFields(component, applog.Fields{
		"port":  s.apiConfig.ListenPort,
		"error": err,
	}).Error(message)

	if s.notificationSender != nil {
		if notifyErr := s.notificationSender.Notify(context.Background(), message+"\r\n\r\n"+err.Error()); notifyErr != nil {
			applog.WithComponent(component).WithError(notifyErr).Warn("장애 알림 전송이 실패하였습니다.")
		}
	}
}

// waitForShutdown 종료 신호를 대기하고 Graceful Shutdown을 수행합니다.
func (s *Service) waitForShutdown(serviceStopCtx context.Context, e *echo.Echo, httpServerDone chan struct{}) {
	select {
	case <-serviceStopCtx.Done():
		applog.WithComponent(component).Info("종료 절차 진입: API 서비스 중지 시그널을 수신했습니다")

	case <-httpServerDone:
		// 포트 바인딩 실패 등으로 서버가 예기치 않게 종료됨
		applog.WithComponent(component).Error("HTTP 서버가 예기치 않게 종료되어 API 서비스를 중지합니다")

		s.cleanup()

		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		applog.WithComponent(component).WithError(err).Error("HTTP 서버 Shutdown 중 에러가 발생하였습니다.")
	}

	<-httpServerDone

	s.cleanup()
}

// cleanup 서비스 종료 후 상태를 정리합니다.
func (s *Service) cleanup() {
	s.runningMu.Lock()
	s.running = false
	s.runningMu.Unlock()

	applog.WithComponent(component).Info("API 서비스 종료 완료: 모든 리소스가 정리되었습니다")
}
