package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXPathToCSS(t *testing.T) {
	cases := []struct {
		name     string
		xpath    string
		expected string
	}{
		{name: "자손 선택", xpath: "//table//tr", expected: "table tr"},
		{name: "자식 선택", xpath: "//tbody/tr", expected: "tbody > tr"},
		{name: "위치 술어", xpath: "td[2]/a", expected: "td:nth-child(2) > a"},
		{name: "id 속성", xpath: "//div[@id='board']//tr", expected: "div#board tr"},
		{name: "class 속성", xpath: "//ul[@class='list']/li", expected: "ul.list > li"},
		{name: "일반 속성", xpath: "//a[@data-role='link']", expected: `a[data-role="link"]`},
		{name: "와일드카드", xpath: "//*[@class='row']", expected: ".row"},
		{name: "상대 경로", xpath: "td[1]", expected: "td:nth-child(1)"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			css, err := XPathToCSS(c.xpath)

			require.NoError(t, err)
			assert.Equal(t, css, c.expected)
		})
	}
}

func TestXPathToCSSUnsupported(t *testing.T) {
	cases := []struct {
		name  string
		xpath string
	}{
		{name: "함수 호출", xpath: "//tr[contains(@class,'row')]"},
		{name: "축 표현", xpath: "//tr/following-sibling::td"},
		{name: "합집합", xpath: "//a|//b"},
		{name: "부모 참조", xpath: "../td"},
		{name: "텍스트 노드", xpath: "//td/text()"},
		{name: "빈 문자열", xpath: ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := XPathToCSS(c.xpath)
			assert.Error(t, err)
		})
	}
}
