package extract

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkkaiser/bidnotice-collector/internal/collector/model"
	"github.com/darkkaiser/bidnotice-collector/internal/collector/scraper"
)

// 헤더 1행, 고정 공지 1행, 정상 5행, 제목 누락 1행으로 구성된 목록 페이지
const testBoardHTML = `
<html><body>
<table id="board">
<tr><th>번호</th><th>제목</th><th>게시일</th><th>담당부서</th></tr>
<tr><td class="notice">공지</td><td><a href="/board/view?id=0">이용 안내</a></td><td>2024-01-01</td><td>관리자</td></tr>
<tr><td>5</td><td><a href="/board/view?id=5">시설물 안전점검 용역</a></td><td>2024-06-10 14:30</td><td>시설과</td></tr>
<tr><td>4</td><td><a href="/board/view?id=4">청사 정밀점검 공고</a></td><td>2024-06-09 09:00</td><td>총무과</td></tr>
<tr><td>3</td><td><a href="http://other.example.com/view?id=3">교량 성능평가 입찰</a></td><td>2024-06-08 11:20</td><td>건설과</td></tr>
<tr><td>2</td><td><a href="/board/view?id=2">하수관로 조사 용역</a></td><td>2024-06-07 16:45</td><td>환경과</td></tr>
<tr><td>1</td><td><a href="/board/view?id=1">도로 유지보수 공사</a></td><td>2024-06-05 10:00</td><td>도로과</td></tr>
<tr><td>0</td><td></td><td>2024-06-01 08:00</td><td>미상</td></tr>
</table>
</body></html>`

func newTestSettings() *model.OrganizationSettings {
	return &model.OrganizationSettings{
		OID:      1,
		Name:     "테스트기관",
		URL:      "http://example.com/board?page=${i}",
		RowXPath: "//table[@id='board']//tr[position()>1]",
		Region:   "전남",
		Elements: map[string]string{
			model.FieldTitle:  "td[2]/a",
			model.FieldLink:   "td[2]/a|-href",
			model.FieldDate:   "td[3]|-|-date",
			model.FieldWriter: "td[4]",
		},
		ExceptionRow: "td[@class='notice']",
	}
}

func parseTestDocument(t *testing.T, html string) *goquery.Document {
	t.Helper()

	doc, err := scraper.ParseReader(strings.NewReader(html), "")
	require.NoError(t, err)
	doc.Url = &url.URL{Scheme: "http", Host: "example.com", Path: "/board"}
	return doc
}

func TestExtractRows(t *testing.T) {
	t.Run("성공: 정상 5건과 행 에러 1건이 함께 반환됨", func(t *testing.T) {
		doc := parseTestDocument(t, testBoardHTML)

		results, err := NewExtractor().ExtractRows(doc, newTestSettings())
		require.NoError(t, err)

		// 고정 공지행은 예외행 규칙으로 제외되고, 헤더행은 행 XPath로 제외됨
		require.Len(t, results, 6)

		var notices []*model.RawNotice
		var rowErrors []*model.RowError
		for _, r := range results {
			if r.IsError() {
				rowErrors = append(rowErrors, r.Err)
			} else {
				notices = append(notices, r.Notice)
			}
		}

		require.Len(t, notices, 5)
		require.Len(t, rowErrors, 1)
		assert.Equal(t, model.RowErrTitle, rowErrors[0].Code)
	})

	t.Run("성공: 필드값 추출과 변환 함수 적용", func(t *testing.T) {
		doc := parseTestDocument(t, testBoardHTML)

		results, err := NewExtractor().ExtractRows(doc, newTestSettings())
		require.NoError(t, err)

		first := results[0].Notice
		require.NotNil(t, first)
		assert.Equal(t, "시설물 안전점검 용역", first.Title)
		// date 콜백이 시각 부분을 제거
		assert.Equal(t, "2024-06-10", first.PostedDate)
		assert.Equal(t, "시설과", first.PostedBy)
		assert.Equal(t, "테스트기관", first.OrgName)
		assert.Equal(t, "전남", first.Region)
		assert.NotEmpty(t, first.Raw)
		assert.False(t, first.ScrapedAt.IsZero())
	})

	t.Run("성공: 상대 URL은 기준 URL에 대해 해석됨", func(t *testing.T) {
		doc := parseTestDocument(t, testBoardHTML)

		results, err := NewExtractor().ExtractRows(doc, newTestSettings())
		require.NoError(t, err)

		assert.Equal(t, "http://example.com/board/view?id=5", results[0].Notice.DetailURL)
		// 절대 URL은 그대로 유지
		assert.Equal(t, "http://other.example.com/view?id=3", results[2].Notice.DetailURL)
	})

	t.Run("성공: 비활성 규칙의 필드는 추출되지 않음", func(t *testing.T) {
		doc := parseTestDocument(t, testBoardHTML)

		settings := newTestSettings()
		settings.Elements[model.FieldWriter] = "" // inert

		results, err := NewExtractor().ExtractRows(doc, settings)
		require.NoError(t, err)
		assert.Empty(t, results[0].Notice.PostedBy)
	})

	t.Run("성공: 일치하는 행이 없으면 빈 목록 반환", func(t *testing.T) {
		doc := parseTestDocument(t, "<html><body><p>점검중입니다</p></body></html>")

		results, err := NewExtractor().ExtractRows(doc, newTestSettings())

		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("실패: 행 XPath 미설정은 설정 오류", func(t *testing.T) {
		doc := parseTestDocument(t, testBoardHTML)

		settings := newTestSettings()
		settings.RowXPath = ""

		_, err := NewExtractor().ExtractRows(doc, settings)
		assert.Error(t, err)
	})

	t.Run("실패: 해석 불가능한 요소 규칙은 설정 오류", func(t *testing.T) {
		doc := parseTestDocument(t, testBoardHTML)

		settings := newTestSettings()
		settings.Elements[model.FieldTitle] = "td[2]/a[@@]"

		_, err := NewExtractor().ExtractRows(doc, settings)
		assert.Error(t, err)
	})
}

func TestExtractRowsDeterministicTimestamp(t *testing.T) {
	doc := parseTestDocument(t, testBoardHTML)

	fixedNow := time.Date(2024, 6, 15, 6, 0, 0, 0, time.Local)
	e := NewExtractor()
	e.nowFunc = func() time.Time { return fixedNow }

	results, err := e.ExtractRows(doc, newTestSettings())
	require.NoError(t, err)
	assert.Equal(t, fixedNow, results[0].Notice.ScrapedAt)
}

func TestCallbacks(t *testing.T) {
	cases := []struct {
		callback string
		input    string
		expected string
	}{
		{callback: "trim", input: "  안전 점검  ", expected: "안전 점검"},
		{callback: "digits", input: "공고 제2024-15호", expected: "202415"},
		{callback: "date", input: "2024-06-10 14:30", expected: "2024-06-10"},
		{callback: "nobracket", input: "[긴급] [재공고] 안전점검 용역", expected: "안전점검 용역"},
	}

	for _, c := range cases {
		t.Run(c.callback, func(t *testing.T) {
			cb, ok := LookupCallback(c.callback)
			require.True(t, ok)
			assert.Equal(t, c.expected, cb(c.input))
		})
	}

	t.Run("등록되지 않은 이름", func(t *testing.T) {
		_, ok := LookupCallback("unknown")
		assert.False(t, ok)
	})
}
