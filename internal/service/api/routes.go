package api

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes API 서비스의 라우트를 등록합니다.
//
// 시스템 엔드포인트(/health, /version)는 인증 없이 접근 가능하며,
// /api/v1 하위의 수집 제어 엔드포인트는 app_key 인증을 요구합니다.
func RegisterRoutes(e *echo.Echo, h *Handler, appKey string) {
	e.GET("/health", h.HealthCheckHandler)
	e.GET("/version", h.VersionHandler)

	v1Group := e.Group("/api/v1", RequireAppKey(appKey))
	v1Group.POST("/collect", h.TriggerCollectHandler)
	v1Group.GET("/collect/last", h.LastRunHandler)
}
