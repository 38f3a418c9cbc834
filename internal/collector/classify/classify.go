// Package classify 키워드 가중치 규칙으로 공고를 분류하는 기능을 제공합니다.
//
// 분류는 에러를 발생시키지 않습니다. 어떤 분류 기준도 충족하지 못한 공고는
// 빈 분류로 반환되며, 이는 정상적인 결과("무관")로 취급됩니다.
package classify

import (
	"sort"
	"strings"

	"github.com/darkkaiser/bidnotice-collector/internal/collector/rule"
)

// Classifier 분류 규칙 집합에 대해 공고 제목을 평가합니다.
type Classifier struct {
	rules []rule.KeywordRule
}

// NewClassifier 새로운 Classifier 인스턴스를 생성합니다.
//
// 동일 점수일 때 결과가 규칙 입력 순서에 좌우되지 않도록 규칙을 일련번호
// 순으로 정렬하여 보관합니다.
func NewClassifier(rules []rule.KeywordRule) *Classifier {
	sorted := make([]rule.KeywordRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SN < sorted[j].SN })

	return &Classifier{rules: sorted}
}

// Classify 텍스트에 가장 적합한 분류를 결정합니다.
//
// 규칙별로 포함된 키워드의 가중치를 합산하고, 부정 키워드가 하나라도
// 포함되면 해당 규칙은 즉시 탈락합니다. 합산 점수가 최소 점수 이상인 규칙
// 중 최고 점수의 분류를 반환하며, 동점이면 일련번호가 낮은 규칙이
// 우선합니다. 충족하는 규칙이 없으면 빈 문자열을 반환합니다.
func (c *Classifier) Classify(text string) string {
	bestCategory := ""
	bestScore := 0.0

	for _, r := range c.rules {
		score, ok := scoreRule(text, r)
		if !ok {
			continue
		}
		if score > bestScore {
			bestScore = score
			bestCategory = r.Category
		}
	}

	return bestCategory
}

// scoreRule 단일 규칙에 대한 점수를 계산합니다.
// 부정 키워드 포함 또는 최소 점수 미달이면 ok가 false입니다.
func scoreRule(text string, r rule.KeywordRule) (float64, bool) {
	for _, not := range r.Nots {
		if strings.Contains(text, not) {
			return 0, false
		}
	}

	score := 0.0
	for _, kw := range r.Keywords {
		if strings.Contains(text, kw.Keyword) {
			score += kw.Weight
		}
	}

	if score < r.MinPoint {
		return 0, false
	}
	return score, true
}
