package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	applog "github.com/darkkaiser/bidnotice-collector/pkg/log"
)

// RequireAppKey app_key 쿼리 파라미터 인증 미들웨어를 생성합니다.
//
// 설정된 appKey가 빈 문자열이면 인증을 수행하지 않습니다.
// 키 비교는 타이밍 공격을 피하기 위해 상수 시간으로 수행합니다.
func RequireAppKey(appKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if appKey == "" {
				return next(c)
			}

			received := c.QueryParam("app_key")
			if subtle.ConstantTimeCompare([]byte(received), []byte(appKey)) != 1 {
				applog.WithComponentAndFields(component, applog.Fields{
					"remote_ip": c.RealIP(),
					"path":      c.Path(),
				}).Warn("APP_KEY 불일치: 인증되지 않은 API 호출이 거부되었습니다")

				return echo.NewHTTPError(http.StatusUnauthorized, "app_key가 유효하지 않습니다")
			}

			return next(c)
		}
	}
}
