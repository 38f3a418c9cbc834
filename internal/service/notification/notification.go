// Package notification 수집 결과와 장애 상황을 운영자에게 전달하는
// 알림 채널을 제공합니다.
//
// 현재 지원 채널은 텔레그램이며, 설정에서 비활성화된 경우 아무 동작도
// 하지 않는 NoopSender가 사용됩니다.
package notification

import (
	"context"

	"github.com/darkkaiser/bidnotice-collector/internal/config"
	"github.com/darkkaiser/bidnotice-collector/internal/service/contract"
	applog "github.com/darkkaiser/bidnotice-collector/pkg/log"
)

// component 로깅용 컴포넌트 이름
const component = "notification"

// NoopSender 알림 채널이 비활성화되었을 때 사용되는 Sender입니다.
type NoopSender struct{}

var _ contract.NotificationSender = (*NoopSender)(nil)

// Notify 메시지를 버립니다. 항상 성공을 반환합니다.
func (NoopSender) Notify(_ context.Context, _ string) error {
	return nil
}

// NewSender 설정에 따라 알림 Sender를 생성합니다.
//
// 텔레그램 알림이 비활성화된 경우 NoopSender를 반환하며,
// 활성화되었지만 봇 초기화에 실패한 경우 에러를 반환합니다.
func NewSender(notifierConfig config.NotifierConfig) (contract.NotificationSender, error) {
	if !notifierConfig.Telegram.Enabled {
		applog.WithComponent(component).Info("텔레그램 알림이 비활성화되어 있습니다. 알림은 전송되지 않습니다.")
		return NoopSender{}, nil
	}

	return NewTelegramSender(notifierConfig.Telegram)
}
