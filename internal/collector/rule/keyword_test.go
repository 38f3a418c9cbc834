package rule

import (
	"testing"

	apperrors "github.com/darkkaiser/bidnotice-collector/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeywords(t *testing.T) {
	t.Run("성공: 복수 키워드", func(t *testing.T) {
		keywords, err := ParseKeywords("안전:2.0,점검:1.5")

		require.NoError(t, err)
		assert.Equal(t, []WeightedKeyword{
			{Keyword: "안전", Weight: 2.0},
			{Keyword: "점검", Weight: 1.5},
		}, keywords)
	})

	t.Run("성공: 공백과 빈 항목 허용", func(t *testing.T) {
		keywords, err := ParseKeywords(" 안전 : 2 , ,점검:1")

		require.NoError(t, err)
		assert.Len(t, keywords, 2)
		assert.Equal(t, "안전", keywords[0].Keyword)
	})

	t.Run("실패: 가중치 구분자 누락", func(t *testing.T) {
		_, err := ParseKeywords("안전")

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
	})

	t.Run("실패: 숫자가 아닌 가중치", func(t *testing.T) {
		_, err := ParseKeywords("안전:높음")

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
	})

	t.Run("실패: 빈 규칙 문자열", func(t *testing.T) {
		_, err := ParseKeywords("")

		require.Error(t, err)
	})
}

func TestParseKeywordRule(t *testing.T) {
	t.Run("성공: 전체 필드 구성", func(t *testing.T) {
		r, err := ParseKeywordRule(1, "안전점검", "안전:2.0,점검:1.5", "취소,정정", 2.0)

		require.NoError(t, err)
		assert.Equal(t, 1, r.SN)
		assert.Equal(t, "안전점검", r.Category)
		assert.Len(t, r.Keywords, 2)
		assert.Equal(t, []string{"취소", "정정"}, r.Nots)
		assert.InDelta(t, 2.0, r.MinPoint, 0.0001)
	})

	t.Run("성공: 부정 키워드 없음", func(t *testing.T) {
		r, err := ParseKeywordRule(2, "성능평가", "성능평가:3", "", 3.0)

		require.NoError(t, err)
		assert.Empty(t, r.Nots)
	})

	t.Run("실패: 분류명 누락", func(t *testing.T) {
		_, err := ParseKeywordRule(3, "", "안전:1", "", 1.0)

		require.Error(t, err)
	})

	t.Run("실패: 잘못된 키워드 문자열은 규칙 전체가 거부됨", func(t *testing.T) {
		_, err := ParseKeywordRule(4, "안전점검", "안전:높음", "", 1.0)

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
	})
}
