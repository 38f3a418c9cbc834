package cronx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardParser(t *testing.T) {
	t.Parallel()

	parser := StandardParser()

	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{name: "확장 6필드 (초 단위 포함)", spec: "0 0 6 * * *"},
		{name: "확장 6필드 (Step)", spec: "0 */30 * * * *"},
		{name: "Descriptor (@daily)", spec: "@daily"},
		{name: "Descriptor (@every)", spec: "@every 6h"},
		{name: "표준 5필드는 미지원", spec: "0 6 * * *", wantErr: true},
		{name: "잘못된 형식", spec: "not-a-cron", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			schedule, err := parser.Parse(tc.spec)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.False(t, schedule.Next(time.Now()).IsZero())
		})
	}
}
