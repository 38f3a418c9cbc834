package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/darkkaiser/bidnotice-collector/internal/pkg/version"
	"github.com/darkkaiser/bidnotice-collector/internal/service/contract"
	applog "github.com/darkkaiser/bidnotice-collector/pkg/log"
)

// Handler 관리용 HTTP API의 요청을 처리합니다.
type Handler struct {
	batchRunner contract.BatchRunner

	buildInfo version.Info
}

// NewHandler 새로운 Handler 인스턴스를 생성합니다.
func NewHandler(batchRunner contract.BatchRunner, buildInfo version.Info) *Handler {
	if batchRunner == nil {
		panic("BatchRunner는 필수입니다")
	}

	return &Handler{
		batchRunner: batchRunner,

		buildInfo: buildInfo,
	}
}

// messageResponse 단순 메시지 응답입니다.
type messageResponse struct {
	Message string `json:"message"`
}

// healthResponse 서비스 상태 응답입니다.
type healthResponse struct {
	Status        string `json:"status"`
	BatchRunning  bool   `json:"batch_running"`
	ServerTimeUTC string `json:"server_time_utc"`
}

// orgResultResponse 기관 1곳의 수집 결과 응답입니다.
type orgResultResponse struct {
	OrgName      string `json:"org_name"`
	Status       string `json:"status"`
	TotalCount   int    `json:"total_count"`
	NewCount     int    `json:"new_count"`
	UpdatedCount int    `json:"updated_count"`
	ErrorCount   int    `json:"error_count"`
	Error        string `json:"error,omitempty"`
}

// lastRunResponse 가장 최근 배치 수집 결과 응답입니다.
type lastRunResponse struct {
	TotalOrgs  int      `json:"total_orgs"`
	ErrorOrgs  int      `json:"error_orgs"`
	FailedOrgs []string `json:"failed_orgs,omitempty"`

	TotalCount   int `json:"total_count"`
	NewCount     int `json:"new_count"`
	UpdatedCount int `json:"updated_count"`
	ErrorCount   int `json:"error_count"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Orgs []orgResultResponse `json:"orgs"`

	Report string `json:"report"`
}

// HealthCheckHandler 서비스 생존 여부와 배치 실행 상태를 반환합니다.
//
// GET /health
func (h *Handler) HealthCheckHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status:        "ok",
		BatchRunning:  h.batchRunner.Running(),
		ServerTimeUTC: time.Now().UTC().Format(time.RFC3339),
	})
}

// VersionHandler 애플리케이션의 빌드 정보를 반환합니다.
//
// GET /version
func (h *Handler) VersionHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, h.buildInfo)
}

// TriggerCollectHandler 배치 수집을 비동기로 시작합니다.
//
// POST /api/v1/collect
//
// 수집은 수 분이 걸릴 수 있으므로 요청의 생명주기와 분리된 백그라운드에서
// 실행되며, 즉시 202 Accepted를 반환합니다. 이미 실행 중인 배치가 있으면
// 409 Conflict를 반환합니다.
func (h *Handler) TriggerCollectHandler(c echo.Context) error {
	if h.batchRunner.Running() {
		return c.JSON(http.StatusConflict, messageResponse{
			Message: "배치 수집이 이미 실행 중입니다",
		})
	}

	go func() {
		if _, err := h.batchRunner.RunBatch(context.Background()); err != nil {
			applog.WithComponent(component).WithError(err).Error("API 요청에 의한 배치 수집이 실패하였습니다.")
		}
	}()

	applog.WithComponentAndFields(component, applog.Fields{
		"remote_ip": c.RealIP(),
	}).Info("API 요청에 의해 배치 수집이 시작되었습니다.")

	return c.JSON(http.StatusAccepted, messageResponse{
		Message: "배치 수집이 시작되었습니다",
	})
}

// LastRunHandler 가장 최근에 완료된 배치 수집 결과를 반환합니다.
//
// GET /api/v1/collect/last
//
// 완료된 배치가 없으면 404를 반환합니다.
func (h *Handler) LastRunHandler(c echo.Context) error {
	snapshot, ok := h.batchRunner.LastRun()
	if !ok {
		return c.JSON(http.StatusNotFound, messageResponse{
			Message: "완료된 배치 수집이 없습니다",
		})
	}

	return c.JSON(http.StatusOK, buildLastRunResponse(snapshot))
}

func buildLastRunResponse(snapshot *contract.BatchRunSnapshot) lastRunResponse {
	resp := lastRunResponse{
		TotalOrgs:  snapshot.Summary.TotalOrgs,
		ErrorOrgs:  snapshot.Summary.ErrorOrgs,
		FailedOrgs: snapshot.Summary.FailedOrgs,

		TotalCount:   snapshot.Summary.Total.TotalCount,
		NewCount:     snapshot.Summary.Total.NewCount,
		UpdatedCount: snapshot.Summary.Total.UpdatedCount,
		ErrorCount:   snapshot.Summary.Total.ErrorCount,

		StartedAt:  snapshot.Summary.StartedAt,
		FinishedAt: snapshot.Summary.FinishedAt,

		Report: snapshot.Report,
	}

	for _, r := range snapshot.Results {
		org := orgResultResponse{
			OrgName: r.OrgName,
			Status:  string(r.Status),
		}
		if r.Result != nil {
			org.TotalCount = r.Result.TotalCount
			org.NewCount = r.Result.NewCount
			org.UpdatedCount = r.Result.UpdatedCount
			org.ErrorCount = r.Result.ErrorCount
		}
		if r.Err != nil {
			org.Error = r.Err.Error()
		}
		resp.Orgs = append(resp.Orgs, org)
	}

	return resp
}
