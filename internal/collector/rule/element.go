// Package rule 기관 설정과 분류 설정에 포함된 규칙 문자열의 파싱을 담당합니다.
//
// 두 가지 내장 미니 언어를 다룹니다:
//   - 요소 규칙: "xpath[|-target[|-callback]]" (필드 추출 지시)
//   - 키워드 규칙: "키워드:가중치,키워드:가중치,..." (분류 가중치)
package rule

import (
	"strings"
)

// elementRuleSeparator 요소 규칙 문자열의 구분자입니다.
const elementRuleSeparator = "|-"

// ElementRule 단일 필드의 추출 지시입니다.
//
// XPath로 요소를 선택한 뒤, Target이 지정되어 있으면 해당 속성값을,
// 없으면 요소의 텍스트를 추출합니다. Callback은 추출된 값에 적용할
// 변환 함수의 이름이며, 실행은 행 추출기의 책임입니다.
type ElementRule struct {
	XPath    string // 요소 선택 XPath (빈 문자열: 규칙 비활성)
	Target   string // 추출할 속성명 (예: "href", 빈 문자열: 텍스트 추출)
	Callback string // 추출값에 적용할 변환 함수 이름 (예: "date", "digits")
}

// ParseElementRule 요소 규칙 문자열을 파싱합니다.
//
// 형식: "xpath[|-target[|-callback]]"
// 예: "td[2]/a|-href", "td[4]|-|-date"
//
// XPath 세그먼트가 비어 있으면 규칙은 비활성(Inert) 상태가 되며,
// 해당 필드는 추출되지 않습니다.
func ParseElementRule(s string) ElementRule {
	parts := strings.SplitN(s, elementRuleSeparator, 3)

	rule := ElementRule{XPath: strings.TrimSpace(parts[0])}
	if len(parts) >= 2 {
		rule.Target = strings.TrimSpace(parts[1])
	}
	if len(parts) >= 3 {
		rule.Callback = strings.TrimSpace(parts[2])
	}

	return rule
}

// Inert 이 규칙이 비활성 상태(필드 추출 안 함)인지 여부를 반환합니다.
func (r ElementRule) Inert() bool {
	return r.XPath == ""
}
