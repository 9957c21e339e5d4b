package telegram

import (
	"context"
	"fmt"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/sandevgo/ctxbroker/internal/config"
	"github.com/sandevgo/ctxbroker/internal/core"
	"github.com/sandevgo/ctxbroker/internal/service/facade"
	"github.com/sandevgo/ctxbroker/pkg/log"
)

const baseContextKey = "base_context"

type Dispatcher interface {
	Dispatch(ctx context.Context, req facade.Request) (facade.Result, error)
}

type Bot struct {
	bot        *tele.Bot
	sender     *sender
	router     core.CmdRouter
	dispatcher Dispatcher
	enhance    bool
	ownerID    int64
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	router core.CmdRouter,
	dispatcher Dispatcher,
	enhance bool,
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
		bot:        b,
		sender:     newSender(b),
		router:     router,
		dispatcher: dispatcher,
		enhance:    enhance,
		ownerID:    cfg.OwnerID,
	}

	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// owner only, everyone else is ignored
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

func (b *Bot) Shutdown(context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	userID := fmt.Sprintf("telegram-%d", c.Chat().ID)
	logger := log.FromCtx(ctx).With().Str("user_id", userID).Logger()
	ctx = logger.WithContext(ctx)

	if reply, ok := b.router.Execute(ctx, userID, c.Text()); ok {
		return b.sender.sendMarkdown(ctx, c.Chat(), reply)
	}

	_ = c.Notify(tele.Typing)

	res, err := b.dispatcher.Dispatch(ctx, facade.Request{
		UserID:  userID,
		Message: c.Text(),
		Enhance: b.enhance,
	})
	if err != nil {
		logger.Error().Err(err).Msg("dispatch failed")
		return c.Send(fmt.Sprintf("error: %v", err))
	}

	return b.sender.sendMarkdown(ctx, c.Chat(), res.Response)
}
