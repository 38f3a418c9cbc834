package rule

import (
	"strconv"
	"strings"

	apperrors "github.com/darkkaiser/bidnotice-collector/internal/pkg/errors"
	"github.com/darkkaiser/bidnotice-collector/pkg/strutils"
)

// WeightedKeyword 가중치가 부여된 긍정 키워드입니다.
type WeightedKeyword struct {
	Keyword string
	Weight  float64
}

// KeywordRule 공고 1건을 특정 분류로 판정하기 위한 규칙입니다.
//
// 분류기는 공고 텍스트에 포함된 긍정 키워드들의 가중치 합이 MinPoint 이상이면
// 이 규칙을 후보로 판정합니다. 단, 부정 키워드가 하나라도 포함되어 있으면
// 가중치 합과 무관하게 해당 규칙은 탈락합니다(하드 거부).
type KeywordRule struct {
	// SN 규칙 일련번호. 평가 순서와 동점 시 우선순위를 결정합니다. (낮을수록 우선)
	SN int

	// Category 이 규칙이 판정하는 분류명 (예: "안전점검", "성능평가")
	Category string

	// Keywords 긍정 키워드와 가중치 목록
	Keywords []WeightedKeyword

	// Nots 부정(제외) 키워드 목록
	Nots []string

	// MinPoint 후보 판정을 위한 최소 점수
	MinPoint float64
}

// ParseKeywords "키워드:가중치,키워드:가중치,..." 형식의 문자열을 파싱합니다.
//
// 예: "안전:2.0,점검:1.5"
//
// 형식이 잘못된 항목은 조용히 버려지지 않고 구조화된 파싱 에러를 반환합니다.
// 설정 오류를 수집 시점이 아닌 규칙 로딩 시점에 드러내기 위함입니다.
func ParseKeywords(s string) ([]WeightedKeyword, error) {
	entries := strutils.SplitNonEmpty(s, ",")
	if len(entries) == 0 {
		return nil, apperrors.New(apperrors.InvalidInput, "키워드 규칙이 비어 있습니다")
	}

	keywords := make([]WeightedKeyword, 0, len(entries))
	for _, entry := range entries {
		keyword, weightStr, found := strings.Cut(entry, ":")
		if !found {
			return nil, apperrors.Newf(apperrors.InvalidInput, "키워드 항목(%s)에 가중치 구분자(:)가 없습니다", entry)
		}

		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			return nil, apperrors.Newf(apperrors.InvalidInput, "키워드 항목(%s)의 키워드가 비어 있습니다", entry)
		}

		weight, err := strconv.ParseFloat(strings.TrimSpace(weightStr), 64)
		if err != nil {
			return nil, apperrors.Wrapf(err, apperrors.InvalidInput, "키워드 항목(%s)의 가중치가 숫자가 아닙니다", entry)
		}

		keywords = append(keywords, WeightedKeyword{Keyword: keyword, Weight: weight})
	}

	return keywords, nil
}

// ParseKeywordRule 저장소의 원시 규칙 필드들로부터 KeywordRule을 구성합니다.
//
// keywords는 "키워드:가중치,..." 형식, nots는 쉼표로 구분된 부정 키워드 목록입니다.
func ParseKeywordRule(sn int, category, keywords, nots string, minPoint float64) (KeywordRule, error) {
	if category == "" {
		return KeywordRule{}, apperrors.Newf(apperrors.InvalidInput, "분류 규칙(sn=%d)의 분류명이 비어 있습니다", sn)
	}

	parsed, err := ParseKeywords(keywords)
	if err != nil {
		return KeywordRule{}, apperrors.Wrapf(err, apperrors.InvalidInput, "분류 규칙(sn=%d, 분류=%s)의 키워드 파싱이 실패하였습니다", sn, category)
	}

	return KeywordRule{
		SN:       sn,
		Category: category,
		Keywords: parsed,
		Nots:     strutils.SplitNonEmpty(nots, ","),
		MinPoint: minPoint,
	}, nil
}
