// Package config 애플리케이션의 환경설정 로딩과 검증을 담당합니다.
//
// 설정은 JSON 파일을 기본으로 하며, BNC_ 접두사의 환경변수로 개별 항목을
// 재정의할 수 있습니다. (예: BNC_MYSQL__PASSWORD -> mysql.password)
package config

import (
	"strings"
	"time"

	apperrors "github.com/darkkaiser/bidnotice-collector/internal/pkg/errors"
	"github.com/darkkaiser/bidnotice-collector/pkg/cronx"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// AppName 애플리케이션의 전역 고유 식별자입니다.
	AppName string = "bidnotice-collector"

	// DefaultFilename 애플리케이션 초기화 시 참조하는 기본 설정 파일명입니다.
	DefaultFilename = AppName + ".json"

	// envPrefix 환경변수 재정의에 사용되는 접두사입니다.
	envPrefix = "BNC_"
)

// AppConfig 애플리케이션의 모든 설정을 관장하는 최상위 루트 구조체
type AppConfig struct {
	Debug bool `json:"debug"`

	MySQL     MySQLConfig     `json:"mysql"`
	G2B       G2BConfig       `json:"g2b"`
	HTTP      HTTPConfig      `json:"http"`
	Collector CollectorConfig `json:"collector"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Notifier  NotifierConfig  `json:"notifier"`
	API       APIConfig       `json:"api"`
}

// MySQLConfig MySQL 접속 설정
type MySQLConfig struct {
	Host     string `json:"host" validate:"required"`
	Port     string `json:"port" validate:"required"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password"`
	Database string `json:"database" validate:"required"`

	MaxIdleConns    int    `json:"max_idle_conns" validate:"min=0"`
	MaxOpenConns    int    `json:"max_open_conns" validate:"min=0"`
	ConnMaxLifetime string `json:"conn_max_lifetime"`
}

// G2BConfig 나라장터(공공데이터포털) 입찰공고 API 설정
type G2BConfig struct {
	// Endpoint 입찰공고 조회 API의 기본 URL
	Endpoint string `json:"endpoint" validate:"omitempty,url"`

	// ServiceKey 공공데이터포털에서 발급받은 서비스 인증키
	ServiceKey string `json:"service_key"`

	// InqryDiv 조회구분 플래그 (1: 공고게시일시, 2: 개찰일시)
	InqryDiv string `json:"inqry_div"`

	// NumOfRows 한 페이지당 요청할 행 수
	NumOfRows int `json:"num_of_rows" validate:"min=0,max=999"`
}

// HTTPConfig HTTP 요청 정책 설정 (페이지 수집과 API 호출에 공통 적용)
type HTTPConfig struct {
	// Timeout 요청 1건에 대한 전체 타임아웃 (기본 30s)
	Timeout string `json:"timeout"`

	// MaxRetries 요청 실패 시 최대 재시도 횟수
	MaxRetries int `json:"max_retries" validate:"min=0,max=10"`

	// MinRetryDelay / MaxRetryDelay 지수 백오프의 시작/상한 대기 시간
	MinRetryDelay string `json:"min_retry_delay"`
	MaxRetryDelay string `json:"max_retry_delay"`

	// RequestInterval 동일 업스트림에 대한 최소 요청 간격 (레이트리밋)
	RequestInterval string `json:"request_interval"`

	// UserAgent 요청에 사용할 User-Agent 헤더 (빈 문자열: 기본값 사용)
	UserAgent string `json:"user_agent"`
}

// CollectorConfig 수집 오케스트레이터 동작 설정
type CollectorConfig struct {
	// ErrorListCap 수집 결과에 보관할 에러 메시지의 최대 개수
	ErrorListCap int `json:"error_list_cap" validate:"min=0"`
}

// SchedulerConfig 정기 수집 스케줄러 설정
type SchedulerConfig struct {
	Enabled bool `json:"enabled"`

	// Spec 6필드 Cron 표현식 (초 분 시 일 월 요일)
	Spec string `json:"spec"`
}

// NotifierConfig 수집 결과 알림 설정
type NotifierConfig struct {
	Telegram TelegramConfig `json:"telegram"`
}

// TelegramConfig 텔레그램 알림 채널 설정
type TelegramConfig struct {
	Enabled  bool   `json:"enabled"`
	BotToken string `json:"bot_token"`
	ChatID   int64  `json:"chat_id"`
}

// APIConfig 관리용 HTTP API 설정
type APIConfig struct {
	Enabled bool `json:"enabled"`

	ListenPort int `json:"listen_port" validate:"min=0,max=65535"`

	// AppKey API 호출 인증에 사용되는 키 (빈 문자열: 인증 비활성화)
	AppKey string `json:"app_key"`

	// AllowedOrigins CORS 허용 오리진 목록
	AllowedOrigins []string `json:"allowed_origins" validate:"dive,url"`
}

// defaults 설정 파일에 명시되지 않은 항목에 적용되는 기본값입니다.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"mysql.port":             "3306",
		"mysql.max_idle_conns":   5,
		"mysql.max_open_conns":   10,
		"mysql.conn_max_lifetime": "1h",
		"g2b.endpoint":           "http://apis.data.go.kr/1230000/BidPublicInfoService04/getBidPblancListInfoServcPPSSrch",
		"g2b.inqry_div":          "1",
		"g2b.num_of_rows":        100,
		"http.timeout":           "30s",
		"http.max_retries":       3,
		"http.min_retry_delay":   "2s",
		"http.max_retry_delay":   "30s",
		"http.request_interval":  "1s",
		"collector.error_list_cap": 20,
		"scheduler.spec":         "0 0 6 * * *",
		"api.listen_port":        8180,
	}
}

// Load 설정 파일을 읽어들이고 환경변수 재정의를 적용한 후 검증합니다.
//
// 우선순위(낮음 -> 높음): 기본값 < 설정 파일 < 환경변수
func Load(path string) (*AppConfig, error) {
	k := koanf.New(".")

	// 1. 기본값
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.Internal, "기본 설정값 로드가 실패하였습니다")
	}

	// 2. 설정 파일
	if err := k.Load(file.Provider(path), json.Parser()); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.System, "설정 파일(%s)을 읽을 수 없습니다", path)
	}

	// 3. 환경변수 재정의 (BNC_MYSQL__PASSWORD -> mysql.password)
	// 키 내부의 단일 밑줄(max_retries 등)과 구분하기 위해 계층 구분자는 이중 밑줄을 사용합니다.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "환경변수 설정 로드가 실패하였습니다")
	}

	var cfg AppConfig
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "json",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
		},
	}); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ParsingFailed, "설정 파일의 구조가 올바르지 않습니다")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate 설정 로드 직후, 각 설정 항목의 정합성과 필수 값의 유효성을 검증합니다.
func (c *AppConfig) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, "설정값 검증이 실패하였습니다")
	}

	// Duration 형식 검증
	for name, value := range map[string]string{
		"mysql.conn_max_lifetime": c.MySQL.ConnMaxLifetime,
		"http.timeout":            c.HTTP.Timeout,
		"http.min_retry_delay":    c.HTTP.MinRetryDelay,
		"http.max_retry_delay":    c.HTTP.MaxRetryDelay,
		"http.request_interval":   c.HTTP.RequestInterval,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return apperrors.Wrapf(err, apperrors.InvalidInput, "%s 설정값(%s)이 올바른 Duration 형식이 아닙니다", name, value)
		}
	}

	// 스케줄러 Cron 표현식 검증
	if c.Scheduler.Enabled {
		if _, err := cronx.StandardParser().Parse(c.Scheduler.Spec); err != nil {
			return apperrors.Wrapf(err, apperrors.InvalidInput, "스케줄러 Cron 표현식(%s)이 올바르지 않습니다", c.Scheduler.Spec)
		}
	}

	// 텔레그램 알림 설정 검증
	if c.Notifier.Telegram.Enabled {
		if c.Notifier.Telegram.BotToken == "" || c.Notifier.Telegram.ChatID == 0 {
			return apperrors.New(apperrors.InvalidInput, "텔레그램 알림이 활성화되었으나 bot_token 또는 chat_id가 설정되지 않았습니다")
		}
	}

	return nil
}

// ParseDuration 설정 문자열을 time.Duration으로 변환합니다.
// validate()를 통과한 설정값에 대해서만 호출되며, 빈 문자열은 fallback을 반환합니다.
func ParseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
