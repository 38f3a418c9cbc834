package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseElementRule(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected ElementRule
	}{
		{
			name:     "XPath만",
			input:    "td[2]/a",
			expected: ElementRule{XPath: "td[2]/a"},
		},
		{
			name:     "XPath와 대상 속성",
			input:    "td[2]/a|-href",
			expected: ElementRule{XPath: "td[2]/a", Target: "href"},
		},
		{
			name:     "XPath, 대상 속성, 콜백",
			input:    "td[2]/a|-href|-trim",
			expected: ElementRule{XPath: "td[2]/a", Target: "href", Callback: "trim"},
		},
		{
			name:     "대상 속성 생략 후 콜백",
			input:    "td[4]|-|-date",
			expected: ElementRule{XPath: "td[4]", Callback: "date"},
		},
		{
			name:     "빈 문자열은 비활성 규칙",
			input:    "",
			expected: ElementRule{},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.expected, ParseElementRule(c.input))
		})
	}
}

func TestElementRuleInert(t *testing.T) {
	assert.True(t, ParseElementRule("").Inert())
	assert.True(t, ParseElementRule("|-href").Inert(), "XPath 세그먼트가 비면 비활성입니다")
	assert.False(t, ParseElementRule("td[1]").Inert())
}
