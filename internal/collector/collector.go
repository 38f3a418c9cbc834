// Package collector 입찰공고 수집 파이프라인의 오케스트레이터입니다.
//
// 기관 설정 조회 -> 페이지 수집 -> 행 추출 -> 정규화 -> 분류 -> 업서트의
// 전체 흐름을 기관 단위로 수행하며, 한 기관의 실패가 배치 전체를 중단시키지
// 않도록 격리합니다.
package collector

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/darkkaiser/bidnotice-collector/internal/collector/classify"
	"github.com/darkkaiser/bidnotice-collector/internal/collector/g2b"
	"github.com/darkkaiser/bidnotice-collector/internal/collector/model"
	"github.com/darkkaiser/bidnotice-collector/internal/collector/normalize"
	"github.com/darkkaiser/bidnotice-collector/internal/collector/rule"
	apperrors "github.com/darkkaiser/bidnotice-collector/internal/pkg/errors"
	"github.com/darkkaiser/bidnotice-collector/pkg/log"
	"github.com/darkkaiser/bidnotice-collector/pkg/strutils"
)

const component = "collector"

// ListScraper 기관 목록 페이지를 DOM 문서로 가져옵니다.
type ListScraper interface {
	FetchListPage(ctx context.Context, settings *model.OrganizationSettings, page int) (*goquery.Document, error)
}

// RowExtractor 목록 문서에서 공고 행을 추출합니다.
type RowExtractor interface {
	ExtractRows(doc *goquery.Document, settings *model.OrganizationSettings) ([]model.RowResult, error)
}

// BidNoticeFetcher 나라장터 API에서 공고를 조회합니다.
type BidNoticeFetcher interface {
	Fetch(ctx context.Context, query g2b.Query) ([]*model.RawNotice, error)
}

// SettingsStore 기관 설정과 분류 규칙을 조회합니다.
type SettingsStore interface {
	ActiveOrganizations(ctx context.Context) ([]*model.OrganizationSettings, error)
	OrganizationByName(ctx context.Context, name string) (*model.OrganizationSettings, error)
	KeywordRules(ctx context.Context) ([]rule.KeywordRule, error)
}

// NoticeStore 정규화 공고를 업서트하고 실행 로그를 기록합니다.
type NoticeStore interface {
	UpsertNotice(ctx context.Context, notice *model.NormalizedNotice) (inserted bool, err error)
	AppendScrapeLog(ctx context.Context, entry *model.ScrapeLogEntry) error
}

// Collector 수집 오케스트레이터입니다.
type Collector struct {
	scraper   ListScraper
	extractor RowExtractor
	g2bClient BidNoticeFetcher
	settings  SettingsStore
	notices   NoticeStore

	errorListCap int
	nowFunc      func() time.Time
}

// New 새로운 Collector 인스턴스를 생성합니다.
// g2bClient는 API 수집 경로를 사용하지 않는 경우 nil일 수 있습니다.
func New(scraper ListScraper, extractor RowExtractor, g2bClient BidNoticeFetcher, settings SettingsStore, notices NoticeStore, errorListCap int) *Collector {
	if errorListCap <= 0 {
		errorListCap = model.DefaultErrorListCap
	}

	return &Collector{
		scraper:      scraper,
		extractor:    extractor,
		g2bClient:    g2bClient,
		settings:     settings,
		notices:      notices,
		errorListCap: errorListCap,
		nowFunc:      time.Now,
	}
}

// loadClassifier 저장소의 분류 규칙으로 분류기를 생성합니다.
func (c *Collector) loadClassifier(ctx context.Context) (*classify.Classifier, error) {
	rules, err := c.settings.KeywordRules(ctx)
	if err != nil {
		return nil, err
	}
	return classify.NewClassifier(rules), nil
}

// CollectAllActive 활성화된 전체 기관에 대해 배치 수집을 수행합니다.
//
// 개별 기관의 실패는 결과에 기록될 뿐 배치를 중단시키지 않습니다. 에러는
// 기관 설정 또는 분류 규칙을 조회할 수 없는 경우(전제 조건 실패)에만
// 반환됩니다. 배치 취소는 기관 사이에서만 확인되며 진행 중인 기관의 수집은
// 완료까지 수행됩니다.
func (c *Collector) CollectAllActive(ctx context.Context) (*model.BatchSummary, []*model.OrgResult, error) {
	startedAt := c.nowFunc()

	orgs, err := c.settings.ActiveOrganizations(ctx)
	if err != nil {
		return nil, nil, err
	}

	classifier, err := c.loadClassifier(ctx)
	if err != nil {
		return nil, nil, err
	}

	log.WithComponentAndFields(component, log.Fields{
		"org_count": len(orgs),
	}).Info("전체 기관 배치 수집을 시작합니다.")

	results := make([]*model.OrgResult, 0, len(orgs))
	for _, settings := range orgs {
		// 배치 취소는 기관 사이에서만 확인합니다.
		if ctx.Err() != nil {
			log.WithComponent(component).Warn("배치 수집이 취소되어 남은 기관을 건너뜁니다.")
			break
		}

		results = append(results, c.CollectOrganization(ctx, settings, classifier))
	}

	summary := BuildSummary(results, startedAt, c.nowFunc(), c.errorListCap)

	log.WithComponentAndFields(component, log.Fields{
		"total_orgs": summary.TotalOrgs,
		"error_orgs": summary.ErrorOrgs,
		"collected":  summary.Total.CollectedCount,
		"new":        summary.Total.NewCount,
	}).Info("전체 기관 배치 수집을 완료했습니다.")

	return summary, results, nil
}

// CollectOrganizationByName 기관명을 지정하여 단일 기관 수집을 수행합니다.
func (c *Collector) CollectOrganizationByName(ctx context.Context, name string) (*model.OrgResult, error) {
	settings, err := c.settings.OrganizationByName(ctx, name)
	if err != nil {
		return nil, err
	}

	classifier, err := c.loadClassifier(ctx)
	if err != nil {
		return nil, err
	}

	return c.CollectOrganization(ctx, settings, classifier), nil
}

// CollectOrganization 기관 1곳의 전체 페이지를 수집합니다.
//
// 페이지 접근 실패가 첫 페이지에서 발생하면 기관 실패로 처리하고, 이후
// 페이지에서 발생하면 그때까지 수집한 결과를 유지한 채 조기 종료합니다.
// 행 단위 추출 실패는 집계만 하며, 전체 페이지에서 행을 하나도 정상
// 추출하지 못한 경우에만 기관 실패입니다.
func (c *Collector) CollectOrganization(ctx context.Context, settings *model.OrganizationSettings, classifier *classify.Classifier) *model.OrgResult {
	orgResult := &model.OrgResult{
		OrgName: settings.Name,
		Status:  model.StatusPending,
		Result:  model.NewResult(c.errorListCap),
	}

	logger := log.WithComponentAndFields(component, log.Fields{"org": settings.Name})

	if err := settings.Validate(); err != nil {
		return c.failOrganization(ctx, orgResult, err)
	}
	if settings.Login {
		err := apperrors.Newf(apperrors.InvalidInput, "기관(%s)은 로그인이 필요하여 수집할 수 없습니다", settings.Name)
		return c.failOrganization(ctx, orgResult, err)
	}

	logger.Info("기관 수집을 시작합니다.")

	for page := settings.StartPage; page <= settings.EndPage; page++ {
		orgResult.Status = model.StatusFetching
		doc, err := c.scraper.FetchListPage(ctx, settings, page)
		if err != nil {
			if page == settings.StartPage {
				return c.failOrganization(ctx, orgResult, err)
			}

			// 이후 페이지의 실패는 부분 결과를 유지한 채 조기 종료합니다.
			logger.WithError(err).Warnf("%d페이지 수집이 실패하여 조기 종료합니다. (수집된 항목: %d건)", page, orgResult.Result.TotalCount)
			orgResult.Result.AddError(err.Error())
			break
		}

		orgResult.Status = model.StatusExtracting
		rows, err := c.extractor.ExtractRows(doc, settings)
		if err != nil {
			if page == settings.StartPage {
				return c.failOrganization(ctx, orgResult, err)
			}
			orgResult.Result.AddError(err.Error())
			break
		}

		// 마지막 페이지를 넘어간 요청은 빈 목록을 반환하는 사이트가 많습니다.
		if len(rows) == 0 {
			break
		}

		c.processRows(ctx, rows, settings, classifier, orgResult)
	}

	if orgResult.Result.CollectedCount == 0 {
		err := apperrors.Newf(apperrors.ParsingFailed, "기관(%s)에서 행을 하나도 정상 추출하지 못했습니다", settings.Name)
		return c.failOrganization(ctx, orgResult, err)
	}

	orgResult.Status = model.StatusDone
	c.appendScrapeLog(ctx, orgResult)

	logger.WithFields(log.Fields{
		"scraped": orgResult.Result.TotalCount,
		"new":     orgResult.Result.NewCount,
		"updated": orgResult.Result.UpdatedCount,
		"errors":  orgResult.Result.ErrorCount,
	}).Info("기관 수집을 완료했습니다.")

	return orgResult
}

// processRows 추출된 행들을 정규화/분류한 후 업서트합니다.
func (c *Collector) processRows(ctx context.Context, rows []model.RowResult, settings *model.OrganizationSettings, classifier *classify.Classifier, orgResult *model.OrgResult) {
	result := orgResult.Result

	orgResult.Status = model.StatusClassifying
	notices := make([]*model.NormalizedNotice, 0, len(rows))
	for _, row := range rows {
		result.TotalCount++

		if row.IsError() {
			result.AddError(row.Err.Error())
			continue
		}

		notices = append(notices, c.normalizeRecord(row.Notice, settings, classifier))
		result.CollectedCount++
	}

	orgResult.Status = model.StatusPersisting
	for _, notice := range notices {
		inserted, err := c.notices.UpsertNotice(ctx, notice)
		if err != nil {
			// 저장 실패는 레코드 단위로 기록하고 계속합니다.
			result.AddError(err.Error())
			continue
		}
		if inserted {
			result.NewCount++
		} else {
			result.UpdatedCount++
		}
	}
}

// normalizeRecord 원시 공고를 저장 가능한 정규화 공고로 변환합니다.
func (c *Collector) normalizeRecord(raw *model.RawNotice, settings *model.OrganizationSettings, classifier *classify.Classifier) *model.NormalizedNotice {
	title := strutils.Clean(raw.Title)
	postedDate := normalize.Date(raw.PostedDate, c.nowFunc())

	category := ""
	if classifier != nil {
		category = classifier.Classify(title)
	}
	if category == "" {
		category = model.CategoryIrrelevant
	}

	// API 수집 건은 입찰공고번호를, HTML 수집 건은 파생 식별자를 사용합니다.
	nid := raw.BidNoticeNo
	if nid == "" {
		nid = model.DeriveNID(raw.OrgName, title, postedDate)
	}

	registration := ""
	region := raw.Region
	if settings != nil {
		registration = settings.Registration
		if region == "" {
			region = settings.Region
		}
	}

	scrapedAt := raw.ScrapedAt
	if scrapedAt.IsZero() {
		scrapedAt = c.nowFunc()
	}

	return &model.NormalizedNotice{
		NID:          nid,
		Title:        title,
		OrgName:      raw.OrgName,
		PostedDate:   postedDate,
		DetailURL:    raw.DetailURL,
		Category:     category,
		Region:       region,
		Registration: registration,
		Raw:          raw.Raw,
		ScrapedAt:    scrapedAt,
	}
}

// failOrganization 기관 단위 실패를 기록합니다.
func (c *Collector) failOrganization(ctx context.Context, orgResult *model.OrgResult, err error) *model.OrgResult {
	orgResult.Status = model.StatusFailed
	orgResult.Err = err

	log.WithComponentAndFields(component, log.Fields{"org": orgResult.OrgName}).
		WithError(err).Error("기관 수집이 실패하였습니다.")

	c.appendScrapeLog(ctx, orgResult)
	return orgResult
}

// appendScrapeLog 기관 실행 결과를 감사 로그로 남깁니다.
// 로그 기록 실패는 수집 결과에 영향을 주지 않습니다.
func (c *Collector) appendScrapeLog(ctx context.Context, orgResult *model.OrgResult) {
	entry := &model.ScrapeLogEntry{
		OrgName:       orgResult.OrgName,
		ScrapedCount:  orgResult.Result.TotalCount,
		NewCount:      orgResult.Result.NewCount,
		InsertedCount: orgResult.Result.NewCount + orgResult.Result.UpdatedCount,
		CreatedAt:     c.nowFunc(),
	}
	if orgResult.Err != nil {
		entry.ErrorCode = string(apperrors.TypeOf(orgResult.Err))
		entry.ErrorMessage = orgResult.Err.Error()
	}

	if err := c.notices.AppendScrapeLog(ctx, entry); err != nil {
		log.WithComponentAndFields(component, log.Fields{"org": orgResult.OrgName}).
			WithError(err).Warn("실행 감사 로그 기록이 실패하였습니다.")
	}
}
