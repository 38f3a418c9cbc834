package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkkaiser/bidnotice-collector/internal/collector/model"
	"github.com/darkkaiser/bidnotice-collector/internal/pkg/version"
	"github.com/darkkaiser/bidnotice-collector/internal/service/contract"
)

// fakeBatchRunner 테스트용 BatchRunner 구현입니다.
type fakeBatchRunner struct {
	mu sync.Mutex

	running    bool
	lastRun    *contract.BatchRunSnapshot
	runBatchC  chan struct{}
	runBatches int
}

func (f *fakeBatchRunner) RunBatch(_ context.Context) (*contract.BatchRunSnapshot, error) {
	f.mu.Lock()
	f.runBatches++
	f.mu.Unlock()

	if f.runBatchC != nil {
		close(f.runBatchC)
	}
	return f.lastRun, nil
}

func (f *fakeBatchRunner) RunOrganization(_ context.Context, _ string) (*model.OrgResult, error) {
	return nil, nil
}

func (f *fakeBatchRunner) LastRun() (*contract.BatchRunSnapshot, bool) {
	if f.lastRun == nil {
		return nil, false
	}
	return f.lastRun, true
}

func (f *fakeBatchRunner) Running() bool {
	return f.running
}

func newTestServer(runner contract.BatchRunner, appKey string) *echo.Echo {
	e := NewHTTPServer(HTTPServerConfig{})
	RegisterRoutes(e, NewHandler(runner, version.Get()), appKey)
	return e
}

func TestHealthCheckHandler(t *testing.T) {
	t.Run("성공: 서비스 상태와 배치 실행 여부를 반환한다", func(t *testing.T) {
		e := newTestServer(&fakeBatchRunner{running: true}, "")

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp healthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.True(t, resp.BatchRunning)
	})
}

func TestVersionHandler(t *testing.T) {
	t.Run("성공: 빌드 정보를 반환한다", func(t *testing.T) {
		e := newTestServer(&fakeBatchRunner{}, "")

		req := httptest.NewRequest(http.MethodGet, "/version", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp version.Info
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.GoVersion)
	})
}

func TestTriggerCollectHandler(t *testing.T) {
	t.Run("성공: 배치 수집이 시작되고 202를 반환한다", func(t *testing.T) {
		runner := &fakeBatchRunner{runBatchC: make(chan struct{})}
		e := newTestServer(runner, "")

		req := httptest.NewRequest(http.MethodPost, "/api/v1/collect", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusAccepted, rec.Code)

		// 백그라운드 수집이 실제로 실행되는지 확인합니다.
		select {
		case <-runner.runBatchC:
		case <-time.After(time.Second):
			t.Fatal("배치 수집이 시작되지 않았습니다")
		}
	})

	t.Run("실패: 이미 실행 중인 배치가 있으면 409를 반환한다", func(t *testing.T) {
		e := newTestServer(&fakeBatchRunner{running: true}, "")

		req := httptest.NewRequest(http.MethodPost, "/api/v1/collect", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestLastRunHandler(t *testing.T) {
	t.Run("성공: 최근 배치 수집 결과를 반환한다", func(t *testing.T) {
		started := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
		finished := started.Add(3 * time.Minute)

		total := model.NewResult(0)
		total.TotalCount = 12
		total.NewCount = 7
		total.UpdatedCount = 5

		runner := &fakeBatchRunner{
			lastRun: &contract.BatchRunSnapshot{
				Summary: &model.BatchSummary{
					TotalOrgs:  2,
					ErrorOrgs:  1,
					FailedOrgs: []string{"실패기관"},
					Total:      total,
					StartedAt:  started,
					FinishedAt: finished,
				},
				Results: []*model.OrgResult{
					{OrgName: "정상기관", Status: model.StatusDone, Result: total},
					{OrgName: "실패기관", Status: model.StatusFailed, Result: model.NewResult(0)},
				},
				Report:     "== 수집 결과 요약 ==",
				FinishedAt: finished,
			},
		}
		e := newTestServer(runner, "")

		req := httptest.NewRequest(http.MethodGet, "/api/v1/collect/last", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp lastRunResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.TotalOrgs)
		assert.Equal(t, 1, resp.ErrorOrgs)
		assert.Equal(t, 12, resp.TotalCount)
		assert.Equal(t, 7, resp.NewCount)
		require.Len(t, resp.Orgs, 2)
		assert.Equal(t, "정상기관", resp.Orgs[0].OrgName)
		assert.Equal(t, string(model.StatusFailed), resp.Orgs[1].Status)
	})

	t.Run("실패: 완료된 배치가 없으면 404를 반환한다", func(t *testing.T) {
		e := newTestServer(&fakeBatchRunner{}, "")

		req := httptest.NewRequest(http.MethodGet, "/api/v1/collect/last", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRequireAppKey(t *testing.T) {
	t.Run("성공: 올바른 app_key로 인증된다", func(t *testing.T) {
		e := newTestServer(&fakeBatchRunner{}, "secret-key")

		req := httptest.NewRequest(http.MethodGet, "/api/v1/collect/last?app_key=secret-key", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		// 인증은 통과하고 데이터가 없어 404가 반환되어야 합니다.
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("실패: 잘못된 app_key는 401을 반환한다", func(t *testing.T) {
		e := newTestServer(&fakeBatchRunner{}, "secret-key")

		req := httptest.NewRequest(http.MethodGet, "/api/v1/collect/last?app_key=wrong-key", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("성공: app_key가 설정되지 않으면 인증을 수행하지 않는다", func(t *testing.T) {
		e := newTestServer(&fakeBatchRunner{}, "")

		req := httptest.NewRequest(http.MethodGet, "/api/v1/collect/last", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("성공: 시스템 엔드포인트는 인증 없이 접근 가능하다", func(t *testing.T) {
		e := newTestServer(&fakeBatchRunner{}, "secret-key")

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
