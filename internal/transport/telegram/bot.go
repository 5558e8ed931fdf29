package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/mnemo/internal/config"
	"github.com/sandevgo/mnemo/internal/core"
	"github.com/sandevgo/mnemo/internal/service/assistant"
	"github.com/sandevgo/mnemo/pkg/conv"
	"github.com/sandevgo/mnemo/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

type Bot struct {
	bot       *tele.Bot
	cfg       *config.TelegramConfig
	assistant *assistant.Assistant
	router    core.CmdRouter
	ownerID   int64
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	a *assistant.Assistant,
	router core.CmdRouter,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:       b,
		cfg:       cfg,
		assistant: a,
		router:    router,
		ownerID:   cfg.OwnerID,
	}

	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// Only the owner talks to this bot. Everyone else is ignored.
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender().ID != bot.ownerID {
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
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)
	sessionID := fmt.Sprintf("telegram-%d", c.Chat().ID)

	_ = c.Notify(tele.Typing)

	if out, handled := b.router.Execute(ctx, sessionID, c.Text()); handled {
		return b.send(c, out)
	}

	reply, err := b.assistant.Respond(ctx, sessionID, c.Text())
	if err != nil {
		logger.Error().Err(err).Msg("turn failed")
		return c.Send(fmt.Sprintf("error: %v", err))
	}

	return b.send(c, reply)
}

func (b *Bot) send(c tele.Context, md string) error {
	html := conv.TelegramHTML(md)
	if html == "" {
		return nil
	}
	if err := c.Send(html, tele.ModeHTML); err != nil {
		ctx := c.Get(baseContextKey).(context.Context)
		log.FromCtx(ctx).Error().Err(err).Msg("failed to send telegram message")
		return err
	}
	return nil
}
