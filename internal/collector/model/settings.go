// Package model 수집 파이프라인 전반에서 공유되는 도메인 타입들을 정의합니다.
//
// 필드 명명 규칙: 내부 표준은 Go CamelCase이며, 저장소/외부 API 경계에서의
// snake_case 컬럼명 매핑은 store 패키지에, 나라장터 API 필드명 매핑은
// g2b 패키지에 각각 명시적으로 정의되어 있습니다.
package model

import (
	apperrors "github.com/darkkaiser/bidnotice-collector/internal/pkg/errors"
)

// 수집 대상 필드의 표준 이름입니다.
// OrganizationSettings.Elements의 키로 사용됩니다.
const (
	FieldTitle  = "title"  // 공고 제목
	FieldLink   = "link"   // 상세 페이지 URL
	FieldDate   = "date"   // 게시일
	FieldWriter = "writer" // 게시자/담당부서
)

// RequiredFields 행 추출 시 반드시 존재해야 하는 필드 목록입니다.
// 이 중 하나라도 추출에 실패하면 해당 행은 행 단위 에러로 처리됩니다.
var RequiredFields = []string{FieldTitle, FieldLink, FieldDate}

// FieldNames 요소 맵에서 인식하는 전체 필드 목록입니다.
// 추출 순서를 결정적으로 만들기 위해 맵 순회 대신 이 목록을 사용합니다.
var FieldNames = []string{FieldTitle, FieldLink, FieldDate, FieldWriter}

// OrganizationSettings 기관별 스크래핑 설정입니다.
//
// 설정 UI(외부 시스템)에서 생성/수정되며, 수집 파이프라인은 읽기 전용으로
// 사용합니다.
type OrganizationSettings struct {
	// OID 기관의 고유 식별자
	OID int64

	// Name 기관명 (기관 단위 업서트/로그의 자연키)
	Name string

	// URL 목록 페이지 URL. "${i}" 페이지 번호 템플릿을 포함할 수 있습니다.
	URL string

	// IframeURL 목록이 iframe 내부에 렌더링되는 사이트의 iframe 대상 URL (선택)
	IframeURL string

	// RowXPath 반복되는 목록 행 요소를 선택하는 XPath
	RowXPath string

	// Paging 페이지네이션 방식 문자열 (예: "query", "path") - 정보성 메타데이터
	Paging string

	// StartPage / EndPage 수집할 페이지 범위 (StartPage <= EndPage)
	StartPage int
	EndPage   int

	// Login 로그인이 필요한 사이트 여부 (현재 수집기는 로그인 사이트를 건너뜁니다)
	Login bool

	// Use 수집 활성화 여부. 비활성(false) 기관은 배치 대상에서 제외됩니다.
	Use bool

	// Region 기관의 지역 라벨 (예: "전남", "서울특별시")
	Region string

	// Registration 등록/우선순위 번호
	Registration string

	// Elements 필드명 -> 요소 규칙 문자열("xpath[|-target[|-callback]]") 맵
	Elements map[string]string

	// ExceptionRow 행 내부에서 평가되는 XPath 술어.
	// 하나라도 일치하는 행(배너/고정 공지 등)은 목록에서 제외됩니다.
	ExceptionRow string

	// Company / Manager 담당 업체와 담당자 메타데이터
	Company string
	Manager string
}

// Validate 설정값의 정합성을 검증합니다.
func (s *OrganizationSettings) Validate() error {
	if s.Name == "" {
		return apperrors.New(apperrors.InvalidInput, "기관명이 설정되지 않았습니다")
	}
	if s.URL == "" {
		return apperrors.Newf(apperrors.InvalidInput, "기관(%s)의 목록 페이지 URL이 설정되지 않았습니다", s.Name)
	}
	if s.RowXPath == "" {
		return apperrors.Newf(apperrors.InvalidInput, "기관(%s)의 행 XPath가 설정되지 않았습니다", s.Name)
	}
	if s.StartPage > s.EndPage {
		return apperrors.Newf(apperrors.InvalidInput, "기관(%s)의 페이지 범위가 올바르지 않습니다 (시작: %d, 종료: %d)", s.Name, s.StartPage, s.EndPage)
	}
	return nil
}
