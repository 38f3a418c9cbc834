// Package extract 목록 페이지의 DOM에서 기관별 요소 규칙에 따라 입찰공고
// 행을 추출하는 기능을 제공합니다.
//
// 행 선택과 필드 추출은 XPath를 기본으로 하며, XPath 엔진이 해석할 수 없는
// 식은 CSS 셀렉터로 강등하여 재시도합니다. 필수 필드가 누락된 행은 페이지
// 전체를 실패시키지 않고 행 단위 에러로 기록됩니다.
package extract

import (
	"encoding/json"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"

	"github.com/darkkaiser/bidnotice-collector/internal/collector/model"
	"github.com/darkkaiser/bidnotice-collector/internal/collector/rule"
	apperrors "github.com/darkkaiser/bidnotice-collector/internal/pkg/errors"
	"github.com/darkkaiser/bidnotice-collector/pkg/log"
	"github.com/darkkaiser/bidnotice-collector/pkg/strutils"
)

const component = "collector.extract"

// Extractor 기관별 요소 규칙을 DOM에 적용하여 공고 행을 추출합니다.
type Extractor struct {
	nowFunc func() time.Time
}

// NewExtractor 새로운 Extractor 인스턴스를 생성합니다.
func NewExtractor() *Extractor {
	return &Extractor{nowFunc: time.Now}
}

// fieldRule 파싱이 완료된 필드 추출 규칙입니다.
type fieldRule struct {
	name     string
	rule     rule.ElementRule
	expr     *xpath.Expr // XPath 컴파일 성공시에만 설정
	css      string      // XPath 강등 경로, expr이 nil일 때 사용
	callback CallbackFunc
}

// ExtractRows 목록 문서에서 기관 설정에 따라 공고 행을 추출합니다.
//
// 반환 목록은 정상 추출된 공고와 행 단위 에러가 섞인 형태이며, 두 경우
// 모두 수집 건수에 집계됩니다. 요소 규칙 자체가 잘못된 경우(설정 오류)에만
// 에러를 반환합니다.
func (e *Extractor) ExtractRows(doc *goquery.Document, settings *model.OrganizationSettings) ([]model.RowResult, error) {
	if len(doc.Nodes) == 0 {
		return nil, apperrors.New(apperrors.ParsingFailed, "추출할 문서 노드가 없습니다")
	}
	root := doc.Nodes[0]

	rows, err := e.selectRows(doc, root, settings.RowXPath)
	if err != nil {
		return nil, err
	}

	fieldRules, err := e.compileFieldRules(settings)
	if err != nil {
		return nil, err
	}

	exceptionExpr, exceptionCSS, err := e.compileSelector(settings.ExceptionRow)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.InvalidInput, "예외행 규칙(%s)을 해석할 수 없습니다", settings.ExceptionRow)
	}

	results := make([]model.RowResult, 0, len(rows))
	for i, row := range rows {
		if settings.ExceptionRow != "" && matchNode(row, exceptionExpr, exceptionCSS) {
			continue
		}

		result := e.extractRow(row, i, fieldRules, settings, doc.Url)
		results = append(results, result)
	}

	return results, nil
}

// selectRows 행 XPath로 반복되는 행 노드들을 선택합니다.
func (e *Extractor) selectRows(doc *goquery.Document, root *html.Node, rowXPath string) ([]*html.Node, error) {
	if rowXPath == "" {
		return nil, apperrors.New(apperrors.InvalidInput, "행 XPath가 설정되지 않았습니다")
	}

	expr, compileErr := xpath.Compile(rowXPath)
	if compileErr == nil {
		return htmlquery.QuerySelectorAll(root, expr), nil
	}

	// XPath 해석 실패시 CSS 셀렉터로 강등하여 재시도합니다.
	css, err := rule.XPathToCSS(rowXPath)
	if err != nil {
		return nil, apperrors.Wrapf(compileErr, apperrors.InvalidInput, "행 XPath(%s)를 해석할 수 없습니다", rowXPath)
	}

	log.WithComponentAndFields(component, log.Fields{
		"xpath": rowXPath,
		"css":   css,
	}).Debug("행 XPath를 CSS 셀렉터로 강등하여 적용합니다.")

	return doc.Find(css).Nodes, nil
}

// compileFieldRules 기관 설정의 요소 맵을 실행 가능한 필드 규칙으로 컴파일합니다.
// 비활성(inert) 규칙은 결과에서 제외됩니다.
func (e *Extractor) compileFieldRules(settings *model.OrganizationSettings) ([]fieldRule, error) {
	rules := make([]fieldRule, 0, len(settings.Elements))

	for _, name := range model.FieldNames {
		ruleStr, ok := settings.Elements[name]
		if !ok {
			continue
		}

		elementRule := rule.ParseElementRule(ruleStr)
		if elementRule.Inert() {
			continue
		}

		fr := fieldRule{name: name, rule: elementRule}

		expr, compileErr := xpath.Compile(elementRule.XPath)
		if compileErr == nil {
			fr.expr = expr
		} else {
			css, err := rule.XPathToCSS(elementRule.XPath)
			if err != nil {
				return nil, apperrors.Wrapf(compileErr, apperrors.InvalidInput, "요소 XPath(%s=%s)를 해석할 수 없습니다", name, elementRule.XPath)
			}
			fr.css = css
		}

		if elementRule.Callback != "" {
			cb, ok := LookupCallback(elementRule.Callback)
			if !ok {
				log.WithComponentAndFields(component, log.Fields{
					"field":    name,
					"callback": elementRule.Callback,
				}).Warn("등록되지 않은 변환 함수가 지정되어 무시합니다.")
			} else {
				fr.callback = cb
			}
		}

		rules = append(rules, fr)
	}

	return rules, nil
}

// compileSelector 선택적 XPath 식을 컴파일합니다. 빈 식은 허용됩니다.
func (e *Extractor) compileSelector(xpathExpr string) (*xpath.Expr, string, error) {
	if xpathExpr == "" {
		return nil, "", nil
	}

	expr, compileErr := xpath.Compile(xpathExpr)
	if compileErr == nil {
		return expr, "", nil
	}

	css, err := rule.XPathToCSS(xpathExpr)
	if err != nil {
		return nil, "", compileErr
	}
	return nil, css, nil
}

// extractRow 단일 행 노드에서 공고 레코드를 추출합니다.
func (e *Extractor) extractRow(row *html.Node, rowIndex int, fieldRules []fieldRule, settings *model.OrganizationSettings, baseURL *url.URL) model.RowResult {
	fields := make(map[string]string, len(fieldRules))

	for _, fr := range fieldRules {
		value := extractField(row, fr)
		fields[fr.name] = value
	}

	if rowErr := checkRequiredFields(fields, rowIndex); rowErr != nil {
		return model.RowResult{Err: rowErr}
	}

	detailURL := resolveDetailURL(fields[model.FieldLink], baseURL)

	// 감사용 원본 페이로드 (map[string]string은 마샬링이 실패하지 않음)
	rawPayload, _ := json.Marshal(fields)

	return model.RowResult{
		Notice: &model.RawNotice{
			Title:      fields[model.FieldTitle],
			DetailURL:  detailURL,
			PostedDate: fields[model.FieldDate],
			PostedBy:   fields[model.FieldWriter],
			OrgName:    settings.Name,
			Region:     settings.Region,
			ScrapedAt:  e.nowFunc(),
			Raw:        string(rawPayload),
		},
	}
}

// extractField 행 노드에 필드 규칙을 적용하여 값을 추출합니다.
// 대상 속성(target)이 지정된 경우 텍스트 대신 해당 속성값을 취합니다.
func extractField(row *html.Node, fr fieldRule) string {
	node := queryNode(row, fr.expr, fr.css)
	if node == nil {
		return ""
	}

	var value string
	if fr.rule.Target != "" {
		value = htmlquery.SelectAttr(node, fr.rule.Target)
	} else {
		value = htmlquery.InnerText(node)
	}

	value = strutils.Clean(value)
	if fr.callback != nil {
		value = fr.callback(value)
	}
	return value
}

// queryNode XPath 또는 강등된 CSS 셀렉터로 행 내부의 첫번째 노드를 찾습니다.
func queryNode(row *html.Node, expr *xpath.Expr, css string) *html.Node {
	if expr != nil {
		return htmlquery.QuerySelector(row, expr)
	}
	if css != "" {
		nodes := goquery.NewDocumentFromNode(row).Find(css).Nodes
		if len(nodes) > 0 {
			return nodes[0]
		}
	}
	return nil
}

// matchNode 행 노드가 선택식과 일치하는지 확인합니다.
func matchNode(row *html.Node, expr *xpath.Expr, css string) bool {
	return queryNode(row, expr, css) != nil
}

// checkRequiredFields 필수 필드(제목, 상세 URL, 게시일) 누락을 검사합니다.
func checkRequiredFields(fields map[string]string, rowIndex int) *model.RowError {
	if fields[model.FieldTitle] == "" {
		return model.NewRowError(model.RowErrTitle, rowIndex, "행에서 제목을 추출하지 못했습니다")
	}
	if fields[model.FieldLink] == "" {
		return model.NewRowError(model.RowErrURL, rowIndex, "행에서 상세 URL을 추출하지 못했습니다")
	}
	if fields[model.FieldDate] == "" {
		return model.NewRowError(model.RowErrDate, rowIndex, "행에서 게시일을 추출하지 못했습니다")
	}
	return nil
}

// resolveDetailURL 상대 경로로 추출된 상세 URL을 페이지 기준 URL에 대해 해석합니다.
func resolveDetailURL(detailURL string, baseURL *url.URL) string {
	if baseURL == nil || detailURL == "" {
		return detailURL
	}

	ref, err := url.Parse(detailURL)
	if err != nil {
		return detailURL
	}
	if ref.IsAbs() {
		return detailURL
	}
	return baseURL.ResolveReference(ref).String()
}
