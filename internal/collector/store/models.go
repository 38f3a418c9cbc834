package store

import (
	"encoding/json"
	"time"

	"github.com/darkkaiser/bidnotice-collector/internal/collector/model"
	"github.com/darkkaiser/bidnotice-collector/internal/collector/rule"
	apperrors "github.com/darkkaiser/bidnotice-collector/internal/pkg/errors"
)

// 저장소 경계의 컬럼 매핑 규칙: 내부 표준은 Go CamelCase, 컬럼명은
// snake_case입니다. 모든 매핑은 gorm 태그로 이 파일에 명시합니다.

// Organization 기관별 스크래핑 설정 테이블(organizations)의 행입니다.
// 설정 UI(외부 시스템)가 소유하며 수집기는 읽기 전용으로 접근합니다.
type Organization struct {
	OID          int64  `gorm:"column:oid;primaryKey;autoIncrement"`
	Name         string `gorm:"column:org_name;size:128;uniqueIndex;not null"`
	URL          string `gorm:"column:url;size:512;not null"`
	IframeURL    string `gorm:"column:iframe_url;size:512"`
	RowXPath     string `gorm:"column:row_xpath;size:512"`
	Paging       string `gorm:"column:paging;size:32"`
	StartPage    int    `gorm:"column:start_page"`
	EndPage      int    `gorm:"column:end_page"`
	Login        bool   `gorm:"column:login"`
	Use          bool   `gorm:"column:use;index"`
	Region       string `gorm:"column:org_region;size:64"`
	Registration string `gorm:"column:registration;size:64"`

	// ElementsJSON 필드명 -> 요소 규칙 문자열 맵의 JSON 직렬화본
	ElementsJSON string `gorm:"column:elements;type:text"`

	ExceptionRow string `gorm:"column:exception_row;size:512"`
	Company      string `gorm:"column:company;size:128"`
	Manager      string `gorm:"column:manager;size:64"`
}

// TableName gorm 테이블명을 지정합니다.
func (Organization) TableName() string {
	return "organizations"
}

// ToSettings 테이블 행을 파이프라인 설정 타입으로 변환합니다.
func (o *Organization) ToSettings() (*model.OrganizationSettings, error) {
	elements := map[string]string{}
	if o.ElementsJSON != "" {
		if err := json.Unmarshal([]byte(o.ElementsJSON), &elements); err != nil {
			return nil, apperrors.Wrapf(err, apperrors.InvalidInput, "기관(%s)의 요소 규칙 JSON을 해석할 수 없습니다", o.Name)
		}
	}

	return &model.OrganizationSettings{
		OID:          o.OID,
		Name:         o.Name,
		URL:          o.URL,
		IframeURL:    o.IframeURL,
		RowXPath:     o.RowXPath,
		Paging:       o.Paging,
		StartPage:    o.StartPage,
		EndPage:      o.EndPage,
		Login:        o.Login,
		Use:          o.Use,
		Region:       o.Region,
		Registration: o.Registration,
		Elements:     elements,
		ExceptionRow: o.ExceptionRow,
		Company:      o.Company,
		Manager:      o.Manager,
	}, nil
}

// Notice 정규화 공고 테이블(notices)의 행입니다.
//
// (기관명, 제목, 게시일) 복합 유니크 키가 업서트 중복 제거의 기준입니다.
type Notice struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	NID          string    `gorm:"column:nid;size:64;index;not null"`
	Title        string    `gorm:"column:title;size:512;not null;uniqueIndex:uk_notice,priority:2"`
	OrgName      string    `gorm:"column:org_name;size:128;not null;uniqueIndex:uk_notice,priority:1"`
	PostedDate   string    `gorm:"column:posted_date;size:10;not null;uniqueIndex:uk_notice,priority:3"`
	DetailURL    string    `gorm:"column:detail_url;size:1024"`
	Category     string    `gorm:"column:category;size:64"`
	Region       string    `gorm:"column:org_region;size:64"`
	Registration string    `gorm:"column:registration;size:64"`
	Raw          string    `gorm:"column:raw;type:text"`
	ScrapedAt    time.Time `gorm:"column:scraped_at"`
}

// TableName gorm 테이블명을 지정합니다.
func (Notice) TableName() string {
	return "notices"
}

// newNoticeRow 정규화 공고를 테이블 행으로 변환합니다.
func newNoticeRow(n *model.NormalizedNotice) *Notice {
	return &Notice{
		NID:          n.NID,
		Title:        n.Title,
		OrgName:      n.OrgName,
		PostedDate:   n.PostedDate,
		DetailURL:    n.DetailURL,
		Category:     n.Category,
		Region:       n.Region,
		Registration: n.Registration,
		Raw:          n.Raw,
		ScrapedAt:    n.ScrapedAt,
	}
}

// ScrapeLog 실행 감사 로그 테이블(scrape_logs)의 행입니다. 추가 전용입니다.
type ScrapeLog struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement"`
	OrgName       string    `gorm:"column:org_name;size:128;index;not null"`
	ErrorCode     string    `gorm:"column:error_code;size:64"`
	ErrorMessage  string    `gorm:"column:error_message;size:1024"`
	ScrapedCount  int       `gorm:"column:scraped_count"`
	NewCount      int       `gorm:"column:new_count"`
	InsertedCount int       `gorm:"column:inserted_count"`
	CreatedAt     time.Time `gorm:"column:created_at;index"`
}

// TableName gorm 테이블명을 지정합니다.
func (ScrapeLog) TableName() string {
	return "scrape_logs"
}

// KeywordRuleRow 분류 규칙 테이블(keyword_rules)의 행입니다.
// 설정 UI(외부 시스템)가 소유하며 수집기는 읽기 전용으로 접근합니다.
type KeywordRuleRow struct {
	SN       int     `gorm:"column:sn;primaryKey;autoIncrement"`
	Category string  `gorm:"column:category;size:64;not null"`
	Keywords string  `gorm:"column:keywords;size:1024;not null"`
	Nots     string  `gorm:"column:nots;size:512"`
	MinPoint float64 `gorm:"column:min_point"`
}

// TableName gorm 테이블명을 지정합니다.
func (KeywordRuleRow) TableName() string {
	return "keyword_rules"
}

// ToRule 테이블 행을 분류 규칙으로 파싱합니다.
// 규칙 문자열이 잘못된 경우 구조화된 파싱 에러를 반환합니다(조용한 무시 금지).
func (r *KeywordRuleRow) ToRule() (rule.KeywordRule, error) {
	return rule.ParseKeywordRule(r.SN, r.Category, r.Keywords, r.Nots, r.MinPoint)
}
