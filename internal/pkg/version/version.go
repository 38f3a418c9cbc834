// Package version 애플리케이션의 빌드 정보를 관리합니다.
//
// 빌드 시점에 링커 플래그(-ldflags)로 주입된 메타데이터와 실행 환경 정보를
// 통합하여 /version 엔드포인트와 시작 로그에 제공합니다.
package version

import (
	"fmt"
	"runtime"
	"strings"
)

const unknown = "unknown"

// 다음 변수들은 빌드 시점에 링커 플래그(ldflags)를 통해 주입됩니다.
//
//	go build -ldflags "-X .../internal/pkg/version.appVersion=v1.0.0 ..."
var (
	appVersion    = "" // 애플리케이션 버전 (예: v1.0.1-15-gf25b8bf)
	gitCommitHash = "" // Git 커밋 해시
	buildDate     = "" // 빌드 수행 시간
)

// Info 애플리케이션의 빌드 정보입니다.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// Get 애플리케이션의 빌드 정보를 반환합니다.
// 주입되지 않은 항목은 "unknown"으로 채워집니다.
func Get() Info {
	return Info{
		Version:   orUnknown(appVersion),
		Commit:    orUnknown(gitCommitHash),
		BuildDate: orUnknown(buildDate),
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// String 로그 출력용 한 줄 요약을 반환합니다.
func (i Info) String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, %s %s/%s)",
		i.Version, i.Commit, i.BuildDate, i.GoVersion, i.OS, i.Arch)
}

func orUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return unknown
	}
	return s
}
