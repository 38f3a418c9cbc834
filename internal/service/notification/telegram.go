package notification

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/darkkaiser/bidnotice-collector/internal/config"
	apperrors "github.com/darkkaiser/bidnotice-collector/internal/pkg/errors"
	"github.com/darkkaiser/bidnotice-collector/internal/service/contract"
	applog "github.com/darkkaiser/bidnotice-collector/pkg/log"
)

const (
	// messageMaxLength 텔레그램 메시지 1건의 최대 바이트 길이입니다.
	//
	// 텔레그램 Bot API 공식 제한은 4096자이지만 안전 마진을 두고
	// 3900자로 설정하며, 이를 초과하는 메시지는 자동으로 분할 전송됩니다.
	messageMaxLength = 3900

	// maxSendRetries 메시지 전송 실패 시 최대 재시도 횟수
	maxSendRetries = 3

	// defaultRetryDelay 재시도 전 기본 대기 시간
	defaultRetryDelay = 3 * time.Second
)

// telegramClient 텔레그램 봇 API와의 통신을 추상화한 인터페이스입니다.
// 테스트에서 실제 API 호출 없이 전송 로직을 검증하기 위해 사용합니다.
type telegramClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSender 텔레그램 봇을 통해 알림 메시지를 발송하는 Sender입니다.
//
// 수집 결과 보고서처럼 긴 메시지는 줄바꿈 단위로 분할하여 순차 전송하며,
// 텔레그램 API 정책(채팅방당 초당 1회)을 준수하도록 전송 속도를 제한합니다.
type TelegramSender struct {
	chatID int64

	client telegramClient

	// rateLimiter 텔레그램 API 호출 속도를 제어합니다.
	rateLimiter *rate.Limiter

	// retryDelay 전송 실패 시 재시도 전 대기 시간
	retryDelay time.Duration
}

var _ contract.NotificationSender = (*TelegramSender)(nil)

// NewTelegramSender 새로운 TelegramSender 인스턴스를 생성합니다.
func NewTelegramSender(telegramConfig config.TelegramConfig) (*TelegramSender, error) {
	bot, err := tgbotapi.NewBotAPI(telegramConfig.BotToken)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Unauthorized, "텔레그램 봇 초기화가 실패하였습니다")
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"bot": bot.Self.UserName,
	}).Info("텔레그램 봇이 연결되었습니다.")

	return &TelegramSender{
		chatID: telegramConfig.ChatID,

		client: bot,

		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 1),

		retryDelay: defaultRetryDelay,
	}, nil
}

// Notify 메시지를 텔레그램으로 전송합니다.
//
// 최대 길이를 초과하는 메시지는 줄바꿈 단위로 분할하여 순차 전송하며,
// 중간 청크 전송이 실패하면 남은 청크 전송을 중단하고 에러를 반환합니다.
func (s *TelegramSender) Notify(ctx context.Context, message string) error {
	if len(message) <= messageMaxLength {
		return s.sendChunk(ctx, message)
	}

	for _, chunk := range splitMessage(message, messageMaxLength) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.sendChunk(ctx, chunk); err != nil {
			return err
		}
	}

	return nil
}

// sendChunk 단일 메시지 청크를 전송합니다. 일시적 오류는 재시도합니다.
func (s *TelegramSender) sendChunk(ctx context.Context, message string) error {
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	messageConfig := tgbotapi.NewMessage(s.chatID, message)

	var lastErr error
	for attempt := 1; attempt <= maxSendRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, err := s.client.Send(messageConfig)
		if err == nil {
			return nil
		}
		lastErr = err

		errCode, retryAfter := parseTelegramError(err)

		applog.WithComponentAndFields(component, applog.Fields{
			"chat_id": s.chatID,
			"attempt": attempt,
			"code":    errCode,
			"error":   err,
		}).Warn("텔레그램 메시지 전송이 실패하였습니다.")

		// 4xx 클라이언트 에러는 재시도해도 결과가 같습니다. (429 제외)
		if errCode >= 400 && errCode < 500 && errCode != 429 {
			return apperrors.Wrap(err, apperrors.ExecutionFailed, "텔레그램 메시지 전송이 실패하였습니다")
		}

		if attempt >= maxSendRetries {
			break
		}

		delay := s.retryDelay
		if retryAfter > 0 {
			delay = time.Duration(retryAfter) * time.Second
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return apperrors.Wrapf(lastErr, apperrors.Unavailable, "텔레그램 메시지 전송이 %d회 모두 실패하였습니다", maxSendRetries)
}

// parseTelegramError 텔레그램 API 에러에서 HTTP 상태 코드와
// Retry-After 값(초)을 추출합니다. 텔레그램 에러가 아니면 0을 반환합니다.
func parseTelegramError(err error) (code int, retryAfter int) {
	if apiErr, ok := err.(tgbotapi.Error); ok {
		return apiErr.Code, apiErr.ResponseParameters.RetryAfter
	}
	if apiErr, ok := err.(*tgbotapi.Error); ok {
		return apiErr.Code, apiErr.ResponseParameters.RetryAfter
	}
	return 0, 0
}

// splitMessage 메시지를 최대 길이 이하의 청크들로 분할합니다.
//
// 가능한 한 줄바꿈 단위로 분할하여 보고서의 행이 중간에 잘리지 않도록 하고,
// 한 줄 자체가 최대 길이를 초과하는 경우에만 UTF-8 문자 경계를 존중하며
// 강제로 자릅니다.
func splitMessage(message string, limit int) []string {
	var chunks []string
	var sb strings.Builder
	sb.Grow(limit)

	for _, line := range strings.Split(message, "\n") {
		neededSpace := len(line)
		if sb.Len() > 0 {
			neededSpace++
		}

		if sb.Len()+neededSpace > limit {
			if sb.Len() > 0 {
				chunks = append(chunks, sb.String())
				sb.Reset()
			}

			// 한 줄이 제한을 초과하면 문자 경계에서 강제 분할합니다.
			for len(line) > limit {
				var chunk string
				chunk, line = safeSplit(line, limit)
				chunks = append(chunks, chunk)
			}
		}

		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)
	}

	if sb.Len() > 0 {
		chunks = append(chunks, sb.String())
	}

	return chunks
}

// safeSplit UTF-8 문자열을 limit 바이트 이내에서 문자가 깨지지 않도록 분할합니다.
func safeSplit(s string, limit int) (chunk, remainder string) {
	if len(s) <= limit {
		return s, ""
	}

	splitIndex := limit
	for splitIndex > 0 && !utf8.RuneStart(s[splitIndex]) {
		splitIndex--
	}
	if splitIndex == 0 {
		return s[:limit], s[limit:]
	}

	return s[:splitIndex], s[splitIndex:]
}
