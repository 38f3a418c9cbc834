package rule

import (
	"regexp"
	"strings"

	apperrors "github.com/darkkaiser/bidnotice-collector/internal/pkg/errors"
)

var (
	segmentRegexp   = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9_-]*|\*)((?:\[[^\]]+\])*)$`)
	predicateRegexp = regexp.MustCompile(`\[([^\]]+)\]`)
	positionRegexp  = regexp.MustCompile(`^\d+$`)
	attrEqRegexp    = regexp.MustCompile(`^@([a-zA-Z][a-zA-Z0-9_-]*)\s*=\s*['"]([^'"]*)['"]$`)
	classNameRegexp = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]*$`)
)

// XPathToCSS XPath 표현식을 CSS 선택자로 변환을 시도합니다 (최선 노력, 손실 변환).
//
// XPath를 지원하지 않는 추출 엔진을 위한 대체 경로입니다. 모든 XPath 구문이
// CSS 등가물을 갖는 것은 아니므로 이 변환은 참고용(advisory)이며, 변환할 수
// 없는 구문(함수 호출, 축(axis), 합집합 등)을 만나면 에러를 반환합니다.
//
// 지원하는 변환:
//   - "//" -> 자손 결합자, "/" -> 자식 결합자(>)
//   - [@id='x'] -> #x, [@class='x'] -> .x, [@attr='v'] -> [attr="v"]
//   - [n] (위치 술어) -> :nth-child(n)
func XPathToCSS(xpathExpr string) (string, error) {
	expr := strings.TrimSpace(xpathExpr)
	if expr == "" {
		return "", apperrors.New(apperrors.InvalidInput, "빈 XPath는 변환할 수 없습니다")
	}

	// CSS 등가물이 없는 구문은 조기에 거부한다.
	for _, unsupported := range []string{"::", "(", "|", ".."} {
		if strings.Contains(expr, unsupported) {
			return "", apperrors.Newf(apperrors.InvalidInput, "XPath 구문(%s)은 CSS 선택자로 변환할 수 없습니다", unsupported)
		}
	}

	var segments []string
	first := true
	combinator := "" // 다음 세그먼트 앞에 붙을 CSS 결합자

	s := expr
	for s != "" {
		switch {
		case strings.HasPrefix(s, "//"):
			combinator = " "
			s = s[2:]
		case strings.HasPrefix(s, "/"):
			combinator = " > "
			s = s[1:]
		default:
			// 상대 XPath의 첫 세그먼트
			combinator = ""
		}

		idx := strings.IndexByte(s, '/')
		var segment string
		if idx < 0 {
			segment, s = s, ""
		} else {
			segment, s = s[:idx], s[idx:]
		}

		css, err := segmentToCSS(segment)
		if err != nil {
			return "", err
		}

		if first {
			segments = append(segments, css)
			first = false
		} else {
			segments = append(segments, combinator+css)
		}
	}

	return strings.Join(segments, ""), nil
}

// segmentToCSS 단일 XPath 세그먼트("td[2]", "a[@class='title']")를 변환합니다.
func segmentToCSS(segment string) (string, error) {
	m := segmentRegexp.FindStringSubmatch(segment)
	if m == nil {
		return "", apperrors.Newf(apperrors.InvalidInput, "XPath 세그먼트(%s)를 해석할 수 없습니다", segment)
	}

	name := m[1]
	if name == "*" {
		name = ""
	}

	css := name
	for _, pm := range predicateRegexp.FindAllStringSubmatch(m[2], -1) {
		predicate := strings.TrimSpace(pm[1])

		switch {
		case positionRegexp.MatchString(predicate):
			// 위치 술어: XPath는 같은 이름의 형제 중 n번째, CSS :nth-child는
			// 모든 형제 중 n번째이므로 의미가 완전히 일치하지는 않는다. (손실 변환)
			css += ":nth-child(" + predicate + ")"

		default:
			am := attrEqRegexp.FindStringSubmatch(predicate)
			if am == nil {
				return "", apperrors.Newf(apperrors.InvalidInput, "XPath 술어(%s)는 CSS 선택자로 변환할 수 없습니다", predicate)
			}

			attr, value := am[1], am[2]
			switch {
			case attr == "id" && classNameRegexp.MatchString(value):
				css += "#" + value
			case attr == "class" && classNameRegexp.MatchString(value):
				css += "." + value
			default:
				css += `[` + attr + `="` + value + `"]`
			}
		}
	}

	if css == "" {
		css = "*"
	}

	return css, nil
}
