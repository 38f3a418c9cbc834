package extract

import (
	"strings"

	"github.com/darkkaiser/bidnotice-collector/pkg/strutils"
)

// CallbackFunc 추출된 필드값을 후처리하는 변환 함수입니다.
type CallbackFunc func(value string) string

// 기관 설정의 요소 규칙에서 이름으로 참조할 수 있는 변환 함수 목록입니다.
// 등록되지 않은 이름이 지정된 경우 해당 변환은 무시됩니다.
var callbacks = map[string]CallbackFunc{
	// trim 앞뒤 공백 및 특수 공백 문자를 제거합니다.
	"trim": strutils.Clean,

	// digits 숫자 이외의 문자를 모두 제거합니다.
	"digits": strutils.OnlyDigits,

	// date 날짜 문자열에서 시각 부분을 제거합니다. (예: "2024-01-05 14:30" -> "2024-01-05")
	"date": func(value string) string {
		value = strutils.Clean(value)
		if fields := strings.Fields(value); len(fields) > 0 {
			return fields[0]
		}
		return value
	},

	// nobracket 말머리 대괄호 표기를 제거합니다. (예: "[긴급] 공고" -> "공고")
	"nobracket": func(value string) string {
		for {
			start := strings.Index(value, "[")
			if start < 0 {
				break
			}
			end := strings.Index(value[start:], "]")
			if end < 0 {
				break
			}
			value = value[:start] + value[start+end+1:]
		}
		return strutils.Clean(value)
	},
}

// LookupCallback 이름에 해당하는 변환 함수를 반환합니다.
func LookupCallback(name string) (CallbackFunc, bool) {
	cb, ok := callbacks[name]
	return cb, ok
}
