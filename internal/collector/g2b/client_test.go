package g2b

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkkaiser/bidnotice-collector/internal/collector/fetcher"
	apperrors "github.com/darkkaiser/bidnotice-collector/internal/pkg/errors"
)

type apiItem struct {
	BidNtceNo      string `json:"bidNtceNo"`
	BidNtceNm      string `json:"bidNtceNm"`
	BidNtceDt      string `json:"bidNtceDt"`
	NtceInsttNm    string `json:"ntceInsttNm"`
	DminsttNm      string `json:"dminsttNm"`
	BidNtceDtlUrl  string `json:"bidNtceDtlUrl"`
	PrtcptLmtRgnNm string `json:"prtcptLmtRgnNm"`
}

// writeAPIResponse 정상 응답 봉투를 직렬화하여 기록합니다.
func writeAPIResponse(t *testing.T, w http.ResponseWriter, items []apiItem, totalCount int) {
	t.Helper()

	envelope := map[string]any{
		"response": map[string]any{
			"header": map[string]any{"resultCode": "00", "resultMsg": "정상"},
			"body": map[string]any{
				"items":      items,
				"totalCount": totalCount,
				"numOfRows":  len(items),
			},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(envelope))
}

func newTestClient(endpoint string, numOfRows int) *Client {
	return NewClient(Config{
		Endpoint:   endpoint,
		ServiceKey: "test-service-key",
		InqryDiv:   "1",
		NumOfRows:  numOfRows,
	}, fetcher.NewHTTPFetcher(0))
}

func testQuery() Query {
	return Query{
		Begin: time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local),
		End:   time.Date(2024, 6, 2, 23, 59, 0, 0, time.Local),
	}
}

func TestFetch(t *testing.T) {
	t.Run("성공: 질의 파라미터 직렬화", func(t *testing.T) {
		var gotQuery map[string][]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			writeAPIResponse(t, w, nil, 0)
		}))
		defer server.Close()

		query := testQuery()
		query.RegionCode = "15"
		query.RegionName = "전남"
		query.ServiceDivName = "일반용역"

		_, err := newTestClient(server.URL, 100).Fetch(context.Background(), query)
		require.NoError(t, err)

		assert.Equal(t, "test-service-key", gotQuery["serviceKey"][0])
		assert.Equal(t, "1", gotQuery["inqryDiv"][0])
		assert.Equal(t, "202406010000", gotQuery["inqryBgnDt"][0])
		assert.Equal(t, "202406022359", gotQuery["inqryEndDt"][0])
		assert.Equal(t, "json", gotQuery["type"][0])
		assert.Equal(t, "15", gotQuery["prtcptLmtRgnCd"][0])
		assert.Equal(t, "전남", gotQuery["prtcptLmtRgnNm"][0])
		assert.Equal(t, "일반용역", gotQuery["srvceDivNm"][0])
	})

	t.Run("성공: 짧은 페이지에서 페이지네이션 중단", func(t *testing.T) {
		var pages []int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pageNo, _ := strconv.Atoi(r.URL.Query().Get("pageNo"))
			pages = append(pages, pageNo)

			// 1페이지는 가득 찬 2건, 2페이지는 1건(짧은 페이지)
			count := 2
			if pageNo >= 2 {
				count = 1
			}
			items := make([]apiItem, 0, count)
			for i := 0; i < count; i++ {
				items = append(items, apiItem{
					BidNtceNo: fmt.Sprintf("2024-%d-%d", pageNo, i),
					BidNtceNm: "시설물 안전점검 용역",
					BidNtceDt: "2024-06-01 10:00",
				})
			}
			writeAPIResponse(t, w, items, 3)
		}))
		defer server.Close()

		notices, err := newTestClient(server.URL, 2).Fetch(context.Background(), testQuery())

		require.NoError(t, err)
		assert.Len(t, notices, 3)
		assert.Equal(t, []int{1, 2}, pages)
	})

	t.Run("성공: 아이템 필드 매핑과 누락 필드 기본값", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeAPIResponse(t, w, []apiItem{{
				BidNtceNo:     "20240601-00001",
				BidNtceNm:     "교량 정밀안전진단 용역",
				BidNtceDt:     "2024-06-01 09:30",
				NtceInsttNm:   "조달청",
				DminsttNm:     "전라남도청",
				BidNtceDtlUrl: "https://www.g2b.go.kr/view?no=20240601-00001",
			}}, 1)
		}))
		defer server.Close()

		notices, err := newTestClient(server.URL, 100).Fetch(context.Background(), testQuery())
		require.NoError(t, err)
		require.Len(t, notices, 1)

		n := notices[0]
		assert.Equal(t, "교량 정밀안전진단 용역", n.Title)
		assert.Equal(t, "20240601-00001", n.BidNoticeNo)
		assert.Equal(t, "2024-06-01 09:30", n.PostedDate)
		assert.Equal(t, "전라남도청", n.OrgName)
		assert.Equal(t, "조달청", n.PostedBy)
		assert.Equal(t, "https://www.g2b.go.kr/view?no=20240601-00001", n.DetailURL)
		assert.Empty(t, n.Region)
		assert.NotEmpty(t, n.Raw)
	})

	t.Run("성공: 수신측 지역 필터", func(t *testing.T) {
		var gotQuery map[string][]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query()
			writeAPIResponse(t, w, []apiItem{
				{BidNtceNo: "1", BidNtceNm: "전남 관내 공고", PrtcptLmtRgnNm: "전라남도"},
				{BidNtceNo: "2", BidNtceNm: "타지역 공고", PrtcptLmtRgnNm: "경기도"},
				{BidNtceNo: "3", BidNtceNm: "전국 공고"},
			}, 3)
		}))
		defer server.Close()

		query := testQuery()
		query.RegionName = "전라남도"
		query.LocalRegionFilter = true

		notices, err := newTestClient(server.URL, 100).Fetch(context.Background(), query)
		require.NoError(t, err)

		// 상위 API에는 지역 파라미터를 전달하지 않음
		assert.NotContains(t, gotQuery, "prtcptLmtRgnNm")
		assert.NotContains(t, gotQuery, "prtcptLmtRgnCd")

		// 타지역 공고만 제외되고 전국 공고는 유지됨
		require.Len(t, notices, 2)
		assert.Equal(t, "1", notices[0].BidNoticeNo)
		assert.Equal(t, "3", notices[1].BidNoticeNo)
	})

	t.Run("실패: 서비스키 미등록은 Unauthorized", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/xml")
			_, _ = w.Write([]byte(`<OpenAPI_ServiceResponse><cmmMsgHeader><errMsg>SERVICE ERROR</errMsg><returnAuthMsg>SERVICE_KEY_IS_NOT_REGISTERED_ERROR</returnAuthMsg><returnReasonCode>30</returnReasonCode></cmmMsgHeader></OpenAPI_ServiceResponse>`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL, 100).Fetch(context.Background(), testQuery())

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.Unauthorized))
	})

	t.Run("실패: 결과 코드가 정상이 아닌 JSON 응답", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"response":{"header":{"resultCode":"07","resultMsg":"입력범위값 초과 에러"}}}`))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL, 100).Fetch(context.Background(), testQuery())

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ExecutionFailed))
	})
}
