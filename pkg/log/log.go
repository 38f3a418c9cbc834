// Package log logrus 기반의 애플리케이션 전역 로깅 시스템을 제공합니다.
//
// lumberjack을 통한 로그 파일 로테이션, 컴포넌트 단위의 Entry 생성,
// 디버그 모드 전환 기능을 포함합니다.
package log

import (
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// defaultLogDirectoryName 로그 파일이 저장될 기본 디렉토리 이름
	defaultLogDirectoryName = "logs"

	// 기본 로그 로테이션 정책
	defaultMaxSizeMB  = 100 // 로그 파일 하나당 최대 크기 (단위: MB)
	defaultMaxBackups = 20  // 로테이션 된 로그 파일의 최대 보관 개수
)

var (
	// Setup() 함수의 중복 호출을 방지하기 위한 동기화 객체
	setupOnce sync.Once

	// 전역 로깅 리소스의 해제 객체(Closer)를 보관합니다.
	globalCloser io.Closer

	// 로깅 시스템 초기화 단계에서 발생한 에러를 보관합니다.
	globalSetupErr error
)

// nopCloser 파일 출력을 사용하지 않을 때 반환되는 no-op Closer입니다.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup 전역 로깅 시스템을 초기화하고 설정된 옵션에 따라 출력을 구성합니다.
//
// 애플리케이션 시작 시점(main 함수 도입부)에 호출하는 것을 권장하며,
// 반환된 Closer는 반드시 defer를 통해 리소스가 해제되도록 보장해야 합니다.
func Setup(opts Options) (io.Closer, error) {
	setupOnce.Do(func() {
		globalCloser, globalSetupErr = setupInternal(opts)
	})

	return globalCloser, globalSetupErr
}

// setupInternal 실제 로깅 시스템 초기화 로직을 수행합니다.
func setupInternal(opts Options) (io.Closer, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("유효하지 않은 로그 설정: %w", err)
	}

	logrus.SetLevel(opts.Level)
	logrus.SetReportCaller(opts.ReportCaller)
	logrus.SetFormatter(newTextFormatter(opts.CallerPathPrefix))

	if !opts.EnableFileLog {
		// 콘솔 전용: logrus 기본 출력(stderr)을 stdout 여부와 무관하게 그대로 사용합니다.
		return nopCloser{}, nil
	}

	dir := opts.Dir
	if dir == "" {
		dir = defaultLogDirectoryName
	}

	maxSize := opts.MaxSizeMB
	if maxSize <= 0 {
		maxSize = defaultMaxSizeMB
	}
	maxBackups := opts.MaxBackups
	if maxBackups <= 0 {
		maxBackups = defaultMaxBackups
	}

	// lumberjack을 통해 로그 파일 크기/보관기간 기반 로테이션을 수행합니다.
	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(dir, opts.Name+".log"),
		MaxSize:    maxSize,
		MaxAge:     opts.MaxAge,
		MaxBackups: maxBackups,
		LocalTime:  true,
		Compress:   true,
	}

	if opts.EnableConsoleLog {
		logrus.SetOutput(io.MultiWriter(logrus.StandardLogger().Out, fileWriter))
	} else {
		logrus.SetOutput(fileWriter)
	}

	return fileWriter, nil
}

// newTextFormatter 호출자 경로 축약이 적용된 TextFormatter를 생성합니다.
func newTextFormatter(callerPathPrefix string) *logrus.TextFormatter {
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
		CallerPrettyfier: func(frame *runtime.Frame) (function string, file string) {
			function = fmt.Sprintf("%s(line:%d)", frame.Function, frame.Line)
			if callerPathPrefix != "" && strings.HasPrefix(function, callerPathPrefix) {
				function = "..." + function[len(callerPathPrefix):]
			}
			return function, ""
		},
	}
}

// SetDebugMode 디버그 모드를 설정합니다.
// 디버그 모드에서는 Trace 레벨까지의 모든 로그가 출력됩니다.
func SetDebugMode(debug bool) {
	if debug {
		logrus.SetLevel(logrus.TraceLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// WithComponent 컴포넌트 이름이 바인딩된 로그 Entry를 반환합니다.
//
// 컴포넌트 이름은 로그 발생 주체(예: "collector", "collector.g2b")를 식별하는 데
// 사용되며, 전체 로그에서 특정 서브시스템의 로그만 필터링할 수 있게 합니다.
func WithComponent(component string) *Entry {
	return logrus.WithField("component", component)
}

// WithComponentAndFields 컴포넌트 이름과 고정 필드들이 바인딩된 로그 Entry를 반환합니다.
// 반복 로깅 시 매번 필드 맵을 구성하는 오버헤드를 줄이기 위해 생성 후 재사용합니다.
func WithComponentAndFields(component string, fields Fields) *Entry {
	return logrus.WithField("component", component).WithFields(fields)
}

// WithError 에러가 바인딩된 로그 Entry를 반환합니다.
func WithError(err error) *Entry {
	return logrus.WithError(err)
}

// StandardLogger logrus 표준 로거를 반환합니다.
// cron 등 Printf 스타일 로거를 요구하는 외부 라이브러리에 전달할 때 사용합니다.
func StandardLogger() *logrus.Logger {
	return logrus.StandardLogger()
}
