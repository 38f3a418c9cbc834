// Package scraper 기관 홈페이지의 입찰공고 목록 페이지를 가져와 DOM 문서로
// 파싱하는 기능을 제공합니다.
//
// 응답 헤더의 Content-Type을 분석하여 비 UTF-8 인코딩(예: EUC-KR) 페이지도
// 자동으로 UTF-8로 변환하여 처리합니다.
package scraper

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/darkkaiser/bidnotice-collector/internal/collector/fetcher"
	"github.com/darkkaiser/bidnotice-collector/internal/collector/model"
	apperrors "github.com/darkkaiser/bidnotice-collector/internal/pkg/errors"
)

// pageTemplate 목록 URL에 포함되는 페이지 번호 치환자입니다.
const pageTemplate = "${i}"

// Scraper 목록 페이지 수집기입니다.
type Scraper struct {
	fetcher fetcher.Fetcher
}

// NewScraper 새로운 Scraper 인스턴스를 생성합니다.
func NewScraper(f fetcher.Fetcher) *Scraper {
	return &Scraper{fetcher: f}
}

// PageURL 목록 URL의 페이지 번호 치환자를 실제 페이지 번호로 치환합니다.
// 치환자가 없는 URL은 그대로 반환됩니다.
func PageURL(baseURL string, page int) string {
	return strings.ReplaceAll(baseURL, pageTemplate, strconv.Itoa(page))
}

// FetchDocument 지정된 URL의 HTML 문서를 가져와 goquery.Document로 파싱합니다.
// 네트워크 오류 또는 2xx가 아닌 상태 코드는 PageAccessError로 반환됩니다.
func (s *Scraper) FetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	resp, err := fetcher.Get(ctx, s.fetcher, pageURL)
	if err != nil {
		return nil, apperrors.Wrap(&PageAccessError{URL: pageURL, Cause: err}, apperrors.Unavailable, "페이지 요청 중 네트워크 에러가 발생했습니다")
	}
	defer resp.Body.Close() // 응답을 받은 즉시 defer 설정하여 메모리 누수 방지

	if err := fetcher.CheckResponseStatus(resp); err != nil {
		return nil, apperrors.Wrap(&PageAccessError{URL: pageURL, Cause: err}, apperrors.Unavailable, "페이지 요청이 실패했습니다")
	}

	doc, err := parseHTML(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ParsingFailed, "불러온 페이지(%s)의 데이터 파싱이 실패하였습니다", pageURL)
	}

	// 상대 URL 해석을 위해 최종 요청 URL을 문서에 보관합니다.
	if resp.Request != nil {
		doc.Url = resp.Request.URL
	}
	return doc, nil
}

// FetchListPage 기관 설정에 따라 지정된 페이지 번호의 목록 문서를 가져옵니다.
//
// iframe URL이 설정된 기관은 외부 페이지 대신 iframe 대상 문서를 가져와
// 반환합니다. iframe 대상 접근 실패는 IframeError로 구분됩니다.
func (s *Scraper) FetchListPage(ctx context.Context, settings *model.OrganizationSettings, page int) (*goquery.Document, error) {
	if settings.IframeURL != "" {
		iframeURL := PageURL(settings.IframeURL, page)
		iframeURL, err := resolveURL(PageURL(settings.URL, page), iframeURL)
		if err != nil {
			return nil, apperrors.Wrap(&IframeError{URL: settings.IframeURL, Cause: err}, apperrors.InvalidInput, "iframe URL을 해석할 수 없습니다")
		}

		doc, err := s.FetchDocument(ctx, iframeURL)
		if err != nil {
			return nil, apperrors.Wrap(&IframeError{URL: iframeURL, Cause: err}, apperrors.Unavailable, "iframe 페이지 요청이 실패했습니다")
		}
		return doc, nil
	}

	return s.FetchDocument(ctx, PageURL(settings.URL, page))
}

// ParseReader HTML 스트림을 goquery.Document로 파싱합니다.
// contentType이 빈 문자열이면 문서 내용으로부터 인코딩을 추정합니다.
func ParseReader(r io.Reader, contentType string) (*goquery.Document, error) {
	doc, err := parseHTML(r, contentType)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ParsingFailed, "HTML 문서 파싱이 실패하였습니다")
	}
	return doc, nil
}

func parseHTML(r io.Reader, contentType string) (*goquery.Document, error) {
	// Content-Type 헤더를 기반으로 인코딩을 UTF-8로 변환
	utf8Reader, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(utf8Reader)
}

// resolveURL 상대 경로로 설정된 iframe URL을 기준 URL에 대해 해석합니다.
func resolveURL(baseURL, ref string) (string, error) {
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	if refURL.IsAbs() {
		return ref, nil
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(refURL).String(), nil
}
