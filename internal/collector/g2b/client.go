// Package g2b 공공데이터포털(data.go.kr)의 나라장터 입찰공고정보 API
// 클라이언트를 제공합니다.
//
// 용역 입찰공고 목록을 날짜 범위로 조회하며, 행 수 기반으로 페이지를
// 넘기면서 JSON 응답 봉투를 해석하여 원시 공고 레코드로 변환합니다.
package g2b

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/darkkaiser/bidnotice-collector/internal/collector/fetcher"
	"github.com/darkkaiser/bidnotice-collector/internal/collector/model"
	apperrors "github.com/darkkaiser/bidnotice-collector/internal/pkg/errors"
	"github.com/darkkaiser/bidnotice-collector/pkg/log"
)

const component = "collector.g2b"

const (
	// inqryDtLayout 조회 시작/종료일시의 질의 파라미터 형식 (YYYYMMDDHHmm)
	inqryDtLayout = "200601021504"

	// resultCodeOK 정상 처리된 응답의 결과 코드
	resultCodeOK = "00"

	// defaultNumOfRows 페이지당 조회 행 수 기본값
	defaultNumOfRows = 100
)

// Config API 클라이언트 설정입니다.
type Config struct {
	// Endpoint 입찰공고정보 API의 전체 URL
	Endpoint string

	// ServiceKey 공공데이터포털에서 발급받은 서비스 인증키
	ServiceKey string

	// InqryDiv 조회 구분 (1: 공고게시일시 기준)
	InqryDiv string

	// NumOfRows 페이지당 조회 행 수
	NumOfRows int
}

// Query 입찰공고 조회 조건입니다.
type Query struct {
	// Begin, End 조회 대상 기간 (공고게시일시 기준)
	Begin time.Time
	End   time.Time

	// RegionCode, RegionName 참가제한지역 코드/이름
	RegionCode string
	RegionName string

	// ServiceDivName 용역 구분명 (예: "일반용역")
	ServiceDivName string

	// NoticeName 공고명 검색어
	NoticeName string

	// LocalRegionFilter 참가제한지역 필터를 API 파라미터 대신 수신측에서
	// 적용합니다. 상위 API가 지역 파라미터 조합을 거부하는 경우의 우회
	// 경로입니다.
	LocalRegionFilter bool
}

// Client 나라장터 입찰공고정보 API 클라이언트입니다.
type Client struct {
	fetcher    fetcher.Fetcher
	endpoint   string
	serviceKey string
	inqryDiv   string
	numOfRows  int
	nowFunc    func() time.Time
}

// NewClient 새로운 Client 인스턴스를 생성합니다.
func NewClient(config Config, f fetcher.Fetcher) *Client {
	numOfRows := config.NumOfRows
	if numOfRows <= 0 {
		numOfRows = defaultNumOfRows
	}
	inqryDiv := config.InqryDiv
	if inqryDiv == "" {
		inqryDiv = "1"
	}

	return &Client{
		fetcher:    f,
		endpoint:   config.Endpoint,
		serviceKey: config.ServiceKey,
		inqryDiv:   inqryDiv,
		numOfRows:  numOfRows,
		nowFunc:    time.Now,
	}
}

// Fetch 조회 조건에 해당하는 전체 입찰공고를 페이지를 넘기며 수집합니다.
//
// 페이지당 행 수보다 적은 행이 반환되면 마지막 페이지로 판단하고 중단합니다.
// 인증 실패는 전체 API 수집 경로에 대해 치명적이므로 즉시 반환됩니다.
func (c *Client) Fetch(ctx context.Context, query Query) ([]*model.RawNotice, error) {
	var notices []*model.RawNotice

	for pageNo := 1; ; pageNo++ {
		items, totalCount, err := c.fetchPage(ctx, query, pageNo)
		if err != nil {
			return nil, err
		}

		notices = append(notices, items...)

		log.WithComponentAndFields(component, log.Fields{
			"page":        pageNo,
			"page_count":  len(items),
			"total_count": totalCount,
		}).Debug("입찰공고 API 페이지 조회를 완료했습니다.")

		// 마지막 페이지 판단: 페이지당 행 수 미만이거나 전체 건수 도달
		if len(items) < c.numOfRows || len(notices) >= totalCount {
			break
		}
	}

	if query.LocalRegionFilter && query.RegionName != "" {
		notices = filterByRegion(notices, query.RegionName)
	}

	return notices, nil
}

// fetchPage 단일 페이지를 조회하여 원시 공고 레코드와 전체 건수를 반환합니다.
func (c *Client) fetchPage(ctx context.Context, query Query, pageNo int) ([]*model.RawNotice, int, error) {
	requestURL := c.buildRequestURL(query, pageNo)

	resp, err := fetcher.Get(ctx, c.fetcher, requestURL)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.Unavailable, "입찰공고 API 요청 중 네트워크 에러가 발생했습니다")
	}
	defer resp.Body.Close() // 응답을 받은 즉시 defer 설정하여 메모리 누수 방지

	if err := fetcher.CheckResponseStatus(resp); err != nil {
		return nil, 0, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.Unavailable, "입찰공고 API 응답 수신이 실패하였습니다")
	}

	if err := checkEnvelope(body); err != nil {
		return nil, 0, err
	}

	result := gjson.ParseBytes(body)
	totalCount := int(result.Get("response.body.totalCount").Int())

	items := result.Get("response.body.items").Array()
	notices := make([]*model.RawNotice, 0, len(items))
	for _, item := range items {
		notices = append(notices, c.parseItem(item))
	}

	return notices, totalCount, nil
}

// buildRequestURL 조회 조건을 질의 파라미터로 직렬화합니다.
func (c *Client) buildRequestURL(query Query, pageNo int) string {
	params := url.Values{}
	params.Set("serviceKey", c.serviceKey)
	params.Set("inqryDiv", c.inqryDiv)
	params.Set("inqryBgnDt", query.Begin.Format(inqryDtLayout))
	params.Set("inqryEndDt", query.End.Format(inqryDtLayout))
	params.Set("numOfRows", strconv.Itoa(c.numOfRows))
	params.Set("pageNo", strconv.Itoa(pageNo))
	params.Set("type", "json")

	// 수신측 필터 모드에서는 상위 API에 지역 파라미터를 전달하지 않습니다.
	if !query.LocalRegionFilter {
		if query.RegionCode != "" {
			params.Set("prtcptLmtRgnCd", query.RegionCode)
		}
		if query.RegionName != "" {
			params.Set("prtcptLmtRgnNm", query.RegionName)
		}
	}
	if query.ServiceDivName != "" {
		params.Set("srvceDivNm", query.ServiceDivName)
	}
	if query.NoticeName != "" {
		params.Set("bidNtceNm", query.NoticeName)
	}

	return c.endpoint + "?" + params.Encode()
}

// parseItem 응답 아이템 하나를 원시 공고 레코드로 변환합니다.
// 누락된 필드는 빈 문자열로 유지됩니다.
func (c *Client) parseItem(item gjson.Result) *model.RawNotice {
	detailURL := item.Get("bidNtceDtlUrl").String()
	if detailURL == "" {
		detailURL = item.Get("bidNtceUrl").String()
	}

	return &model.RawNotice{
		Title:       item.Get("bidNtceNm").String(),
		DetailURL:   detailURL,
		PostedDate:  item.Get("bidNtceDt").String(),
		PostedBy:    item.Get("ntceInsttNm").String(),
		OrgName:     item.Get("dminsttNm").String(),
		BidNoticeNo: item.Get("bidNtceNo").String(),
		Region:      item.Get("prtcptLmtRgnNm").String(),
		ScrapedAt:   c.nowFunc(),
		Raw:         item.Raw,
	}
}

// checkEnvelope 응답 봉투의 결과 코드를 검증합니다.
//
// 공공데이터포털은 인증 실패 등 게이트웨이 수준의 에러를 JSON 요청에도
// XML(OpenAPI_ServiceResponse)로 반환하므로 두 형식을 모두 검사합니다.
func checkEnvelope(body []byte) error {
	trimmed := strings.TrimSpace(string(body))

	// 게이트웨이 에러는 XML로 반환됩니다.
	if strings.HasPrefix(trimmed, "<") {
		if strings.Contains(trimmed, "SERVICE_KEY_IS_NOT_REGISTERED_ERROR") ||
			strings.Contains(trimmed, "SERVICE_ACCESS_DENIED_ERROR") ||
			strings.Contains(trimmed, "DEADLINE_HAS_EXPIRED_ERROR") {
			return apperrors.New(apperrors.Unauthorized, "입찰공고 API 서비스키 인증이 실패하였습니다")
		}
		if strings.Contains(trimmed, "LIMITED_NUMBER_OF_SERVICE_REQUESTS_EXCEEDS_ERROR") {
			return apperrors.New(apperrors.Unavailable, "입찰공고 API 일일 요청 한도를 초과하였습니다")
		}
		return apperrors.New(apperrors.ExecutionFailed, fmt.Sprintf("입찰공고 API가 예상하지 못한 XML 응답을 반환하였습니다: %.200s", trimmed))
	}

	resultCode := gjson.Get(trimmed, "response.header.resultCode").String()
	if resultCode != resultCodeOK {
		resultMsg := gjson.Get(trimmed, "response.header.resultMsg").String()
		return apperrors.New(apperrors.ExecutionFailed, fmt.Sprintf("입찰공고 API가 에러를 반환하였습니다 (resultCode: %s, resultMsg: %s)", resultCode, resultMsg))
	}
	return nil
}

// filterByRegion 참가제한지역 이름으로 수신측 필터를 적용합니다.
// 지역 제한이 명시되지 않은 공고(전국 공고)는 유지됩니다.
func filterByRegion(notices []*model.RawNotice, regionName string) []*model.RawNotice {
	filtered := make([]*model.RawNotice, 0, len(notices))
	for _, n := range notices {
		if n.Region == "" || strings.Contains(n.Region, regionName) {
			filtered = append(filtered, n)
		}
	}
	return filtered
}
