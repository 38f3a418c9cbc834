// Package normalize 스크래핑된 이종(異種) 날짜 문자열을 표준 형식으로 변환합니다.
//
// 수집 대상 사이트들은 "2024.3.5", "2024/03/05", "20240305", "2024년 3월 5일",
// "2024-01-01~2024-01-10" 등 제각각의 날짜 표기를 사용하므로, 저장 전에
// 모두 "YYYY-MM-DD" 표준 형식으로 정규화합니다.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/darkkaiser/bidnotice-collector/pkg/strutils"
)

// DateLayout 표준 날짜 형식입니다.
const DateLayout = "2006-01-02"

var (
	// koreanDateRegexp "2024년 1월 1일" 형태의 한국어 날짜 표기
	koreanDateRegexp = regexp.MustCompile(`(\d{4})\s*년\s*(\d{1,2})\s*월\s*(\d{1,2})\s*일?`)

	// numericDateRegexp 구분자 없는 8자리 숫자 날짜 (예: "20240305")
	numericDateRegexp = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})$`)
)

// Today 기준 시각의 표준 날짜 문자열을 반환합니다.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// Date 원시 날짜 문자열을 "YYYY-MM-DD" 형식으로 정규화합니다.
//
// 변환 규칙 (순서대로 적용):
//  1. 5자 미만의 짧은 입력 -> 오늘 날짜
//  2. 기간 표기("2024-01-01~2024-01-05") -> 시작일만 사용
//  3. 한국어 표기("2024년 1월 1일") -> 패턴 추출 후 0 채움
//  4. 앞 10자로 절단 (시각 등 꼬리 제거)
//  5. 점/빗금 구분자 -> 하이픈. 연도가 뒤에 오는 표기("01/02/2024")는
//     월-일-년으로 해석하며, 2자리 연도는 "20"을 접두합니다.
//  6. 8자리 숫자("20240305") -> 연/월/일 분리
//
// 최종 검증에서 실제 달력 날짜로 파싱되지 않으면 입력을 그대로 반환하며
// (절대 에러를 던지지 않음), 파싱 결과가 기준 시각보다 미래이면 오늘 날짜로
// 보정합니다. 후자는 "D-3" 같은 상대 표기를 잘못 읽은 경우에 대한 방어입니다.
//
// 이 함수는 멱등합니다: Date(Date(x)) == Date(x)
func Date(raw string, now time.Time) string {
	s := strutils.Clean(raw)

	// 1. 빈 입력 또는 날짜로 볼 수 없는 짧은 입력 ("접수중", "상시" 등)
	if utf8.RuneCountInString(s) < 5 {
		return Today(now)
	}

	// 2. 기간 표기는 시작일만 취한다.
	if idx := strings.Index(s, "~"); idx >= 0 {
		s = strings.TrimSpace(s[:idx])
	}

	// 3. 한국어 표기 (절단 시 "일" 부분이 잘릴 수 있으므로 절단보다 먼저 처리)
	if m := koreanDateRegexp.FindStringSubmatch(s); m != nil {
		return finalize(raw, m[1], m[2], m[3], now)
	}

	// 4. "2024-03-05 14:00" 같은 시각 꼬리를 제거한다.
	s = truncateRunes(s, 10)

	// 5. 구분자 통일
	s = strings.NewReplacer(".", "-", "/", "-").Replace(s)
	s = strings.Trim(s, "-")

	// 6. 구분자 없는 8자리 숫자
	if m := numericDateRegexp.FindStringSubmatch(s); m != nil {
		return finalize(raw, m[1], m[2], m[3], now)
	}

	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return raw
	}

	var year, month, day string
	switch {
	case len(parts[0]) == 4:
		// YYYY-MM-DD
		year, month, day = parts[0], parts[1], parts[2]
	case len(parts[2]) == 4:
		// MM-DD-YYYY
		year, month, day = parts[2], parts[0], parts[1]
	default:
		// YY-MM-DD (2자리 연도)
		year, month, day = "20"+parts[0], parts[1], parts[2]
	}

	return finalize(raw, year, month, day, now)
}

// finalize 연/월/일 문자열을 0 채움 형식으로 조립하고 최종 검증합니다.
// 달력상 유효하지 않으면 원본 입력을, 미래 날짜이면 오늘 날짜를 반환합니다.
func finalize(raw, year, month, day string, now time.Time) string {
	y, err1 := strconv.Atoi(year)
	m, err2 := strconv.Atoi(month)
	d, err3 := strconv.Atoi(day)
	if err1 != nil || err2 != nil || err3 != nil {
		return raw
	}

	formatted := fmt.Sprintf("%04d-%02d-%02d", y, m, d)

	parsed, err := time.ParseInLocation(DateLayout, formatted, now.Location())
	if err != nil {
		return raw
	}

	// 미래 날짜는 오늘로 보정한다. (스크래퍼가 상대 날짜 표기를 잘못 읽은 경우)
	if parsed.After(now) {
		return Today(now)
	}

	return formatted
}

// truncateRunes 문자열을 앞에서부터 n개의 룬으로 절단합니다.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
