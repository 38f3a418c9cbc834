package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEmptyFile(path string) error {
	return os.WriteFile(path, nil, 0644)
}

func TestOptionsValidate(t *testing.T) {
	t.Run("실패: 애플리케이션 식별자 누락", func(t *testing.T) {
		opts := Options{}
		assert.Error(t, opts.Validate())
	})

	t.Run("실패: 음수 보관 기간", func(t *testing.T) {
		opts := Options{Name: "test", MaxAge: -1}
		assert.Error(t, opts.Validate())
	})

	t.Run("실패: 로그 디렉토리 경로가 파일로 존재", func(t *testing.T) {
		dir := t.TempDir()
		filePath := filepath.Join(dir, "logs")
		require.NoError(t, writeEmptyFile(filePath))

		opts := Options{Name: "test", Dir: filePath}
		assert.Error(t, opts.Validate())
	})

	t.Run("성공: 기본 설정", func(t *testing.T) {
		opts := NewDevelopmentConfig("test")
		assert.NoError(t, opts.Validate())
	})
}

func TestProfiles(t *testing.T) {
	t.Run("운영 프로파일은 파일 출력 중심", func(t *testing.T) {
		opts := NewProductionConfig("app")
		assert.True(t, opts.EnableFileLog)
		assert.False(t, opts.EnableConsoleLog)
		assert.Equal(t, 30, opts.MaxAge)
	})

	t.Run("개발 프로파일은 콘솔 출력 중심", func(t *testing.T) {
		opts := NewDevelopmentConfig("app")
		assert.False(t, opts.EnableFileLog)
		assert.True(t, opts.EnableConsoleLog)
		assert.Equal(t, TraceLevel, opts.Level)
	})
}

func TestWithComponent(t *testing.T) {
	entry := WithComponent("collector")
	require.NotNil(t, entry)
	assert.Equal(t, "collector", entry.Data["component"])

	entry = WithComponentAndFields("collector.g2b", Fields{"page_no": 3})
	require.NotNil(t, entry)
	assert.Equal(t, "collector.g2b", entry.Data["component"])
	assert.Equal(t, 3, entry.Data["page_no"])
}
