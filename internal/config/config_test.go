package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/darkkaiser/bidnotice-collector/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfigFile 테스트용 설정 파일을 생성하고 경로를 반환합니다.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), DefaultFilename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const minimalConfig = `{
	"mysql": {
		"host": "127.0.0.1",
		"username": "collector",
		"password": "secret",
		"database": "bidnotice"
	}
}`

func TestLoad(t *testing.T) {
	t.Run("성공: 최소 설정과 기본값 병합", func(t *testing.T) {
		cfg, err := Load(writeConfigFile(t, minimalConfig))

		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1", cfg.MySQL.Host)
		assert.Equal(t, "3306", cfg.MySQL.Port, "포트는 기본값이 적용되어야 합니다")
		assert.Equal(t, 3, cfg.HTTP.MaxRetries)
		assert.Equal(t, "1s", cfg.HTTP.RequestInterval)
		assert.Equal(t, 100, cfg.G2B.NumOfRows)
		assert.Equal(t, "0 0 6 * * *", cfg.Scheduler.Spec)
	})

	t.Run("성공: 환경변수 재정의", func(t *testing.T) {
		t.Setenv("BNC_MYSQL__PASSWORD", "override")

		cfg, err := Load(writeConfigFile(t, minimalConfig))

		require.NoError(t, err)
		assert.Equal(t, "override", cfg.MySQL.Password)
	})

	t.Run("실패: 설정 파일 없음", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "not-exists.json"))

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.System))
	})

	t.Run("실패: 필수 항목 누락", func(t *testing.T) {
		_, err := Load(writeConfigFile(t, `{"mysql": {"host": "127.0.0.1"}}`))

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
	})

	t.Run("실패: 잘못된 Duration 형식", func(t *testing.T) {
		_, err := Load(writeConfigFile(t, `{
			"mysql": {"host": "h", "username": "u", "database": "d"},
			"http": {"timeout": "삼십초"}
		}`))

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
	})

	t.Run("실패: 잘못된 Cron 표현식", func(t *testing.T) {
		_, err := Load(writeConfigFile(t, `{
			"mysql": {"host": "h", "username": "u", "database": "d"},
			"scheduler": {"enabled": true, "spec": "wrong"}
		}`))

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
	})

	t.Run("실패: 텔레그램 활성화 시 토큰 누락", func(t *testing.T) {
		_, err := Load(writeConfigFile(t, `{
			"mysql": {"host": "h", "username": "u", "database": "d"},
			"notifier": {"telegram": {"enabled": true}}
		}`))

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
	})
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 30*time.Second, ParseDuration("30s", time.Second))
	assert.Equal(t, time.Second, ParseDuration("", time.Second))
	assert.Equal(t, time.Second, ParseDuration("invalid", time.Second))
}
