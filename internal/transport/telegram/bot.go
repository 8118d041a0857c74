package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sandevgo/mnemo/internal/config"
	"github.com/sandevgo/mnemo/internal/core"
	"github.com/sandevgo/mnemo/internal/service/assistant"
	"github.com/sandevgo/mnemo/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

type Assistant interface {
	Respond(ctx context.Context, text string) (*assistant.Reply, error)
}

type Bot struct {
	bot       *tele.Bot
	sender    *sender
	assistant Assistant
	router    core.CmdRouter
	ownerID   int64
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	assistant Assistant,
	router core.CmdRouter,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: cfg.PollTimeout},
		OnError: func(err error, c tele.Context) {
			log.FromCtx(ctx).Error().Err(err).Msg("telegram handler failed")
		},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:       b,
		sender:    newSender(b),
		assistant: assistant,
		router:    router,
		ownerID:   cfg.OwnerID,
	}

	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// Only the owner talks to the bot
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender() == nil || c.Sender().ID != bot.ownerID {
				return nil
			}
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx, ok := c.Get(baseContextKey).(context.Context)
	if !ok {
		ctx = context.Background()
	}
	ctx = log.WithComponent(ctx, "telegram")

	_ = c.Notify(tele.Typing)

	text, err := b.answer(ctx, c.Text())
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("chat turn failed")
		text = fmt.Sprintf("error: %v", err)
	}
	return b.sender.sendMarkdown(ctx, c.Recipient(), text)
}

// answer routes slash commands to the command router and everything else to
// the assistant.
func (b *Bot) answer(ctx context.Context, text string) (string, error) {
	if out, handled := b.router.Execute(ctx, text); handled {
		return out, nil
	}

	reply, err := b.assistant.Respond(ctx, text)
	if err != nil {
		if errors.Is(err, core.ErrEmptyMessage) {
			return "No message provided", nil
		}
		return "", err
	}
	return FormatReply(reply), nil
}

// FormatReply renders the response followed by the memories that shaped it.
func FormatReply(reply *assistant.Reply) string {
	var sb strings.Builder
	sb.WriteString(reply.Response)

	if len(reply.MemoriesUsed) == 0 {
		return sb.String()
	}

	sb.WriteString("\n\n**Memories used**\n")
	for i, m := range reply.MemoriesUsed {
		fmt.Fprintf(&sb, "%d. %s _(relevance %.3f, recalled %d times)_\n",
			i+1, m.Content, m.Relevance, m.RecallCount)
	}
	return strings.TrimRight(sb.String(), "\n")
}
