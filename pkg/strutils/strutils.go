// Package strutils 스크래핑된 텍스트 정제에 사용되는 문자열 유틸리티를 제공합니다.
package strutils

import (
	"strings"
)

// Clean 스크래핑된 텍스트를 정제합니다.
//
// HTML에서 추출된 텍스트에 섞여 들어오는 NBSP( ), 탭, 개행을 일반 공백으로
// 치환한 뒤 앞뒤 공백을 제거하고 연속된 공백을 하나로 축약합니다.
// 예: " 정기  안전\n점검 " -> "정기 안전 점검"
func Clean(s string) string {
	s = strings.NewReplacer("\u00a0", " ", "\t", " ", "\r", " ", "\n", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// SplitNonEmpty 문자열을 분리하고 각 항목의 공백을 제거한 후 빈 항목을 제외합니다.
// 예: "a, , b,c" (구분자 ",") -> ["a", "b", "c"]
func SplitNonEmpty(s, sep string) []string {
	tokens := strings.Split(s, sep)

	var result []string
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token != "" {
			result = append(result, token)
		}
	}

	return result
}

// OnlyDigits 문자열에서 숫자만 추출합니다.
// 예: "조회수: 1,234회" -> "1234"
func OnlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
