package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/darkkaiser/bidnotice-collector/internal/collector"
	"github.com/darkkaiser/bidnotice-collector/internal/collector/extract"
	"github.com/darkkaiser/bidnotice-collector/internal/collector/fetcher"
	"github.com/darkkaiser/bidnotice-collector/internal/collector/g2b"
	"github.com/darkkaiser/bidnotice-collector/internal/collector/scraper"
	"github.com/darkkaiser/bidnotice-collector/internal/collector/store"
	"github.com/darkkaiser/bidnotice-collector/internal/config"
	"github.com/darkkaiser/bidnotice-collector/internal/pkg/version"
	"github.com/darkkaiser/bidnotice-collector/internal/service/api"
	"github.com/darkkaiser/bidnotice-collector/internal/service/collectsvc"
	"github.com/darkkaiser/bidnotice-collector/internal/service/contract"
	"github.com/darkkaiser/bidnotice-collector/internal/service/notification"
	"github.com/darkkaiser/bidnotice-collector/internal/service/scheduler"
	applog "github.com/darkkaiser/bidnotice-collector/pkg/log"
)

const appName = "bidnotice-collector"

const banner = `
  ____   _      _  _   _         _    _                ____         _  _               _
 | __ ) (_)  __| || \ | |  ___  | |_ (_)  ___  ___    / ___| ___   | || |  ___   ___ | |_  ___   _ __
 |  _ \ | | / _' ||  \| | / _ \ | __|| | / __|/ _ \  | |    / _ \  | || | / _ \ / __|| __|/ _ \ | '__|
 | |_) || || (_| || |\  || (_) || |_ | || (__|  __/  | |___| (_) | | || ||  __/| (__ | |_| (_) || |
 |____/ |_| \__,_||_| \_| \___/  \__||_| \___|\___|   \____|\___/  |_||_| \___| \___| \__|\___/ |_|
                                                                                            %s
----------------------------------------------------------------------------------------------------
`

// collectDateLayout 일회성 API 수집의 -begin/-end 날짜 형식
const collectDateLayout = "2006-01-02"

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	var (
		configPath  = flag.String("config", appName+".json", "설정 파일 경로")
		collectMode = flag.String("collect", "", "일회성 수집 모드 (all | g2b | <기관명>). 지정하지 않으면 서비스 모드로 실행됩니다.")
		beginDate   = flag.String("begin", "", "g2b 수집 시작일 (YYYY-MM-DD, 기본: 오늘)")
		endDate     = flag.String("end", "", "g2b 수집 종료일 (YYYY-MM-DD, 기본: 시작일)")
	)
	flag.Parse()

	os.Exit(run(*configPath, *collectMode, *beginDate, *endDate))
}

// run 애플리케이션 본체입니다. 종료 코드를 반환합니다.
//
// 종료 코드 계약: 설정 오류와 DB 접속 실패만 비정상 종료(1)이며,
// 일부 기관의 수집 실패는 결과에 보고될 뿐 정상 종료(0)입니다.
func run(configPath, collectMode, beginDate, endDate string) int {
	// 환경설정 정보를 읽어들인다.
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "설정 로드 실패: %v\n", err)
		return 1
	}

	// 로깅 시스템 초기화
	logLevel := applog.InfoLevel
	if cfg.Debug {
		logLevel = applog.TraceLevel
	}
	logCloser, err := applog.Setup(applog.Options{
		Name:  appName,
		Level: logLevel,

		MaxAge: 30,

		EnableConsoleLog: true,
		EnableFileLog:    collectMode == "", // 일회성 실행은 콘솔 출력만 사용

		ReportCaller:     cfg.Debug,
		CallerPathPrefix: "github.com/darkkaiser",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "로깅 시스템 초기화 실패: %v\n", err)
		return 1
	}
	defer logCloser.Close()

	buildInfo := version.Get()

	// 아스키아트 출력 (서비스 모드에서만)
	if collectMode == "" {
		fmt.Printf(banner, buildInfo.Version)
	}
	applog.WithComponent("main").Infof("빌드 정보: %s", buildInfo)

	// 저장소 연결
	dataStore, err := store.New(cfg.MySQL)
	if err != nil {
		applog.WithComponent("main").WithError(err).Error("데이터베이스 연결이 실패하였습니다.")
		return 1
	}
	defer dataStore.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 10*time.Second)
	err = dataStore.Ping(pingCtx)
	cancelPing()
	if err != nil {
		applog.WithComponent("main").WithError(err).Error("데이터베이스 응답이 없습니다.")
		return 1
	}

	if err := dataStore.Migrate(); err != nil {
		applog.WithComponent("main").WithError(err).Error("데이터베이스 마이그레이션이 실패하였습니다.")
		return 1
	}

	// 수집 파이프라인 조립
	httpFetcher := fetcher.New(fetcher.Config{
		Timeout:         config.ParseDuration(cfg.HTTP.Timeout, 30*time.Second),
		MaxRetries:      cfg.HTTP.MaxRetries,
		MinRetryDelay:   config.ParseDuration(cfg.HTTP.MinRetryDelay, 2*time.Second),
		MaxRetryDelay:   config.ParseDuration(cfg.HTTP.MaxRetryDelay, 30*time.Second),
		RequestInterval: config.ParseDuration(cfg.HTTP.RequestInterval, time.Second),
		UserAgent:       cfg.HTTP.UserAgent,
	})

	var g2bClient collector.BidNoticeFetcher
	if cfg.G2B.ServiceKey != "" {
		g2bClient = g2b.NewClient(g2b.Config{
			Endpoint:   cfg.G2B.Endpoint,
			ServiceKey: cfg.G2B.ServiceKey,
			InqryDiv:   cfg.G2B.InqryDiv,
			NumOfRows:  cfg.G2B.NumOfRows,
		}, httpFetcher)
	}

	bidCollector := collector.New(
		scraper.NewScraper(httpFetcher),
		extract.NewExtractor(),
		g2bClient,
		dataStore,
		dataStore,
		cfg.Collector.ErrorListCap,
	)

	// 일회성 수집 모드
	if collectMode != "" {
		return runOnce(bidCollector, collectMode, beginDate, endDate)
	}

	// 서비스 모드
	return runServices(cfg, bidCollector, buildInfo)
}

// runOnce 일회성 수집을 수행하고 결과를 표준 출력으로 내보냅니다.
func runOnce(bidCollector *collector.Collector, collectMode, beginDate, endDate string) int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch collectMode {
	case "all":
		summary, results, err := bidCollector.CollectAllActive(ctx)
		if err != nil {
			applog.WithComponent("main").WithError(err).Error("배치 수집이 실패하였습니다.")
			return 1
		}
		fmt.Print(collector.FormatSummary(summary, results))

	case "g2b":
		begin, end, err := parseDateRange(beginDate, endDate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "날짜 해석 실패: %v\n", err)
			return 1
		}

		result, err := bidCollector.CollectDateRange(ctx, g2b.Query{}, begin, end)
		if err != nil {
			applog.WithComponent("main").WithError(err).Error("API 수집이 실패하였습니다.")
			return 1
		}
		fmt.Printf("수집 %d건, 신규 %d건, 갱신 %d건, 에러 %d건\n",
			result.TotalCount, result.NewCount, result.UpdatedCount, result.ErrorCount)

	default:
		// 기관명 지정 수집
		orgResult, err := bidCollector.CollectOrganizationByName(ctx, collectMode)
		if err != nil {
			applog.WithComponent("main").WithError(err).Error("기관 수집이 실패하였습니다.")
			return 1
		}
		fmt.Println(collector.FormatOrgResult(orgResult))
	}

	return 0
}

// parseDateRange -begin/-end 플래그를 해석합니다. 생략 시 오늘 하루입니다.
func parseDateRange(beginDate, endDate string) (begin, end time.Time, err error) {
	now := time.Now()
	begin = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)

	if beginDate != "" {
		begin, err = time.ParseInLocation(collectDateLayout, beginDate, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("시작일(%s)이 올바른 형식(YYYY-MM-DD)이 아닙니다: %w", beginDate, err)
		}
	}

	end = begin
	if endDate != "" {
		end, err = time.ParseInLocation(collectDateLayout, endDate, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("종료일(%s)이 올바른 형식(YYYY-MM-DD)이 아닙니다: %w", endDate, err)
		}
	}

	return begin, end, nil
}

// runServices 상주 서비스들을 기동하고 종료 시그널을 대기합니다.
func runServices(cfg *config.AppConfig, bidCollector *collector.Collector, buildInfo version.Info) int {
	// 알림 채널 생성
	notificationSender, err := notification.NewSender(cfg.Notifier)
	if err != nil {
		applog.WithComponent("main").WithError(err).Error("알림 채널 초기화가 실패하였습니다.")
		return 1
	}

	// 서비스를 생성하고 초기화한다.
	collectService := collectsvc.NewService(bidCollector, notificationSender)

	services := []contract.Service{collectService}

	if cfg.Scheduler.Enabled {
		services = append(services, scheduler.NewService(cfg.Scheduler, collectService, notificationSender))
	}
	if cfg.API.Enabled {
		services = append(services, api.NewService(cfg.API, cfg.Debug, collectService, notificationSender, buildInfo))
	}

	serviceStopCtx, cancel := context.WithCancel(context.Background())
	serviceStopWaiter := &sync.WaitGroup{}

	// 서비스를 시작한다.
	for _, s := range services {
		serviceStopWaiter.Add(1)
		if err := s.Start(serviceStopCtx, serviceStopWaiter); err != nil {
			applog.WithComponent("main").WithError(err).Error("서비스 시작이 실패하였습니다.")

			cancel()
			serviceStopWaiter.Wait()

			return 1
		}
	}

	applog.WithComponent("main").Info("모든 서비스가 시작되었습니다. 종료하려면 Ctrl+C를 누르세요.")

	// 종료 시그널 대기
	termC := make(chan os.Signal, 1)
	signal.Notify(termC, syscall.SIGINT, syscall.SIGTERM)

	<-termC

	applog.WithComponent("main").Info("종료 시그널을 수신했습니다. 모든 서비스를 중지합니다.")
	cancel()
	serviceStopWaiter.Wait()

	applog.WithComponent("main").Info("모든 서비스가 정상 종료되었습니다.")

	return 0
}
