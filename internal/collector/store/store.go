// Package store MySQL 영속 계층을 제공합니다.
//
// 공고 업서트, 기관 설정/분류 규칙 조회, 실행 감사 로그 기록을 담당합니다.
// 공고의 중복 제거는 (기관명, 제목, 게시일) 복합 유니크 키 기반의 업서트로
// 수행됩니다.
package store

import (
	"context"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/darkkaiser/bidnotice-collector/internal/collector/model"
	"github.com/darkkaiser/bidnotice-collector/internal/collector/rule"
	"github.com/darkkaiser/bidnotice-collector/internal/config"
	apperrors "github.com/darkkaiser/bidnotice-collector/internal/pkg/errors"
	"github.com/darkkaiser/bidnotice-collector/pkg/log"
)

const component = "collector.store"

// Store MySQL 기반 저장소입니다.
type Store struct {
	db *gorm.DB
}

// New MySQL에 접속하여 새로운 Store 인스턴스를 생성합니다.
// 연결 실패는 전체 실행의 전제 조건 실패이므로 호출측에서 치명적 에러로
// 처리해야 합니다.
func New(cfg config.MySQLConfig) (*Store, error) {
	db, err := gorm.Open(mysql.Open(buildDSN(cfg)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Unavailable, "MySQL 접속이 실패하였습니다")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Internal, "데이터베이스 핸들을 가져올 수 없습니다")
	}

	// 연결 풀 설정
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(config.ParseDuration(cfg.ConnMaxLifetime, time.Hour))

	return &Store{db: db}, nil
}

// buildDSN MySQL 접속 DSN을 생성합니다.
func buildDSN(cfg config.MySQLConfig) string {
	dsnConfig := mysqlDriver.Config{
		User:                 cfg.Username,
		Passwd:               cfg.Password,
		DBName:               cfg.Database,
		Addr:                 cfg.Host + ":" + cfg.Port,
		Net:                  "tcp",
		ParseTime:            true,
		AllowNativePasswords: true,
		Loc:                  time.Local,
	}
	return dsnConfig.FormatDSN()
}

// Ping 데이터베이스 연결 상태를 확인합니다.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return apperrors.Wrap(err, apperrors.Internal, "데이터베이스 핸들을 가져올 수 없습니다")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.Unavailable, "데이터베이스 연결 확인이 실패하였습니다")
	}
	return nil
}

// Close 데이터베이스 연결을 종료합니다.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate 수집기가 소유하는 테이블(notices, scrape_logs)의 스키마를
// 생성/갱신합니다. 설정 UI가 소유하는 테이블은 건드리지 않습니다.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&Notice{}, &ScrapeLog{}); err != nil {
		return apperrors.Wrap(err, apperrors.Internal, "테이블 스키마 마이그레이션이 실패하였습니다")
	}
	return nil
}

// ActiveOrganizations 수집이 활성화된 기관 설정 목록을 등록 번호 순으로
// 조회합니다.
func (s *Store) ActiveOrganizations(ctx context.Context) ([]*model.OrganizationSettings, error) {
	var orgs []Organization
	if err := s.db.WithContext(ctx).Where("`use` = ?", true).Order("registration, oid").Find(&orgs).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.Unavailable, "활성 기관 설정 조회가 실패하였습니다")
	}

	settings := make([]*model.OrganizationSettings, 0, len(orgs))
	for i := range orgs {
		converted, err := orgs[i].ToSettings()
		if err != nil {
			// 설정 오류는 해당 기관만 제외하고 나머지 수집은 계속합니다.
			log.WithComponent(component).WithError(err).Warnf("기관(%s)의 설정을 해석할 수 없어 수집 대상에서 제외합니다.", orgs[i].Name)
			continue
		}
		settings = append(settings, converted)
	}
	return settings, nil
}

// OrganizationByName 기관명으로 단일 기관 설정을 조회합니다.
func (s *Store) OrganizationByName(ctx context.Context, name string) (*model.OrganizationSettings, error) {
	var org Organization
	if err := s.db.WithContext(ctx).Where("org_name = ?", name).First(&org).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.Newf(apperrors.NotFound, "기관(%s)의 설정을 찾을 수 없습니다", name)
		}
		return nil, apperrors.Wrapf(err, apperrors.Unavailable, "기관(%s) 설정 조회가 실패하였습니다", name)
	}
	return org.ToSettings()
}

// KeywordRules 전체 분류 규칙을 일련번호 순으로 조회합니다.
// 잘못된 규칙 문자열은 조용히 무시되지 않고 에러로 반환됩니다.
func (s *Store) KeywordRules(ctx context.Context) ([]rule.KeywordRule, error) {
	var rows []KeywordRuleRow
	if err := s.db.WithContext(ctx).Order("sn").Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.Unavailable, "분류 규칙 조회가 실패하였습니다")
	}

	rules := make([]rule.KeywordRule, 0, len(rows))
	for i := range rows {
		r, err := rows[i].ToRule()
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// UpsertNotice 공고 1건을 업서트합니다.
//
// (기관명, 제목, 게시일) 유니크 키 충돌 시 비 키 컬럼을 새 값으로 갱신하며
// (last-write-wins), 신규 삽입 여부를 반환합니다. MySQL의
// INSERT ... ON DUPLICATE KEY UPDATE는 삽입 시 RowsAffected 1,
// 갱신 시 2를 반환하는 규약을 이용합니다.
func (s *Store) UpsertNotice(ctx context.Context, notice *model.NormalizedNotice) (inserted bool, err error) {
	row := newNoticeRow(notice)

	result := s.db.WithContext(ctx).
		Clauses(onConflictUpdateNotice()).
		Create(row)
	if result.Error != nil {
		return false, apperrors.Wrapf(result.Error, apperrors.Unavailable, "공고(%s) 업서트가 실패하였습니다", notice.NID)
	}

	return result.RowsAffected == 1, nil
}

// onConflictUpdateNotice 유니크 키 충돌 시 갱신할 비 키 컬럼을 지정합니다.
func onConflictUpdateNotice() clause.Expression {
	return clause.OnConflict{
		Columns: []clause.Column{
			{Name: "org_name"},
			{Name: "title"},
			{Name: "posted_date"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"nid", "detail_url", "category", "org_region", "registration", "raw", "scraped_at",
		}),
	}
}

// AppendScrapeLog 실행 감사 로그를 기록합니다.
func (s *Store) AppendScrapeLog(ctx context.Context, entry *model.ScrapeLogEntry) error {
	row := &ScrapeLog{
		OrgName:       entry.OrgName,
		ErrorCode:     entry.ErrorCode,
		ErrorMessage:  entry.ErrorMessage,
		ScrapedCount:  entry.ScrapedCount,
		NewCount:      entry.NewCount,
		InsertedCount: entry.InsertedCount,
		CreatedAt:     entry.CreatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}

	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return apperrors.Wrapf(err, apperrors.Unavailable, "기관(%s)의 실행 로그 기록이 실패하였습니다", entry.OrgName)
	}
	return nil
}

// RecentScrapeLogs 지정된 기간 내의 실행 감사 로그를 최신순으로 조회합니다.
func (s *Store) RecentScrapeLogs(ctx context.Context, since time.Time, limit int) ([]*model.ScrapeLogEntry, error) {
	var rows []ScrapeLog
	query := s.db.WithContext(ctx).Where("created_at >= ?", since).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(err, apperrors.Unavailable, "실행 로그 조회가 실패하였습니다")
	}

	entries := make([]*model.ScrapeLogEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, &model.ScrapeLogEntry{
			OrgName:       rows[i].OrgName,
			ErrorCode:     rows[i].ErrorCode,
			ErrorMessage:  rows[i].ErrorMessage,
			ScrapedCount:  rows[i].ScrapedCount,
			NewCount:      rows[i].NewCount,
			InsertedCount: rows[i].InsertedCount,
			CreatedAt:     rows[i].CreatedAt,
		})
	}
	return entries, nil
}
