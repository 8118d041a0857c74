package telegram

import (
	"context"

	"github.com/sandevgo/mnemo/pkg/conv"
	"github.com/sandevgo/mnemo/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const maxTelegramMsgLen = 4000 // below the 4096 hard limit

type messageSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

type sender struct {
	bot messageSender
}

func newSender(bot messageSender) *sender {
	return &sender{bot: bot}
}

// sendMarkdown converts md to Telegram HTML and sends it in chunks. A chunk
// Telegram rejects is resent as plain text.
func (s *sender) sendMarkdown(ctx context.Context, to tele.Recipient, md string) error {
	logger := log.FromCtx(ctx)

	html := conv.MarkdownToTelegramHTML(md)
	if html == "" {
		return nil
	}

	for i, chunk := range conv.Split(html, maxTelegramMsgLen) {
		_, err := s.bot.Send(to, chunk, tele.ModeHTML)
		if err == nil {
			continue
		}
		logger.Warn().Err(err).Int("chunk", i).Msg("html rejected, falling back to plain text")

		for _, plain := range conv.Split(conv.HTMLToPlain(chunk), maxTelegramMsgLen) {
			if _, err := s.bot.Send(to, plain); err != nil {
				logger.Error().Err(err).Int("chunk", i).Int("len", len(plain)).Msg("failed to send telegram chunk")
				return err
			}
		}
	}
	return nil
}
