package telegram

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/quickgram/quickgram/internal/membership"
	"github.com/quickgram/quickgram/internal/relay"
)

const refreshJoinGateCallback = "refresh_join_gate"

// ChatSender is the slice of the transport the chat surface uses.
type ChatSender interface {
	SendText(ctx context.Context, chatID int64, text string) (relay.MessageRef, error)
	SendGatePrompt(ctx context.Context, chatID int64, text, channelURL string) error
	DeleteMessage(ctx context.Context, ref relay.MessageRef) error
	AnswerCallback(ctx context.Context, callbackID, text string, showAlert bool) error
}

// Gate decides whether a user may use the bot.
type Gate interface {
	Check(ctx context.Context, userID int64) membership.Verdict
}

// Deliverer runs the media delivery pipeline for one link.
type Deliverer interface {
	Deliver(ctx context.Context, chatID int64, shortcode string) error
}

// Bot is the chat-message surface: commands, link handling, the join gate
// prompt, and the gate refresh callback.
type Bot struct {
	sender     ChatSender
	gate       Gate
	pipeline   Deliverer
	channelURL string
	router     *Router
	logger     *slog.Logger
}

// NewBot wires the chat surface routes.
func NewBot(log *slog.Logger, sender ChatSender, gate Gate, pipeline Deliverer, channelURL string) *Bot {
	if log == nil {
		log = slog.Default()
	}
	b := &Bot{
		sender:     sender,
		gate:       gate,
		pipeline:   pipeline,
		channelURL: channelURL,
		router:     NewRouter(),
		logger:     log.With(slog.String("component", "bot")),
	}

	b.router.Handle(command("start"), b.handleStart)
	b.router.Handle(command("help"), func(ctx context.Context, msg *tgbotapi.Message) {
		b.reply(ctx, msg.Chat.ID, relay.HelpMessage)
	})
	b.router.Handle(command("privacy"), func(ctx context.Context, msg *tgbotapi.Message) {
		b.reply(ctx, msg.Chat.ID, relay.PrivacyMessage)
	})
	b.router.Handle(func(msg *tgbotapi.Message) bool {
		return relay.IsSpotifyLink(msg.Text)
	}, func(ctx context.Context, msg *tgbotapi.Message) {
		b.reply(ctx, msg.Chat.ID, relay.SpotifyMessage)
	})
	b.router.Handle(func(msg *tgbotapi.Message) bool {
		return relay.IsInstagramLink(msg.Text)
	}, b.handleInstagramLink)
	b.router.Fallback(b.handleWrongPattern)

	b.router.HandleCallback(func(data string) bool {
		return data == refreshJoinGateCallback
	}, b.handleRefreshJoinGate)

	return b
}

// HandleUpdate dispatches one update through the route list.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	b.router.Dispatch(ctx, update)
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	if !b.requireJoined(ctx, msg) {
		b.logger.Info("start blocked", slog.Int64("chat_id", msg.Chat.ID))
		return
	}
	b.reply(ctx, msg.Chat.ID, relay.StartMessage)
}

func (b *Bot) handleInstagramLink(ctx context.Context, msg *tgbotapi.Message) {
	// Gate check must run before any other bot interaction.
	if !b.requireJoined(ctx, msg) {
		b.logger.Info("link blocked", slog.Int64("chat_id", msg.Chat.ID))
		return
	}
	shortcode, ok := relay.ExtractShortcode(msg.Text)
	if !ok {
		b.handleWrongPattern(ctx, msg)
		return
	}
	if err := b.pipeline.Deliver(ctx, msg.Chat.ID, shortcode); err != nil {
		// Detail has already been logged by the pipeline; the user only
		// sees the generic failure text.
		b.reply(ctx, msg.Chat.ID, relay.FailMessage)
	}
}

func (b *Bot) handleWrongPattern(ctx context.Context, msg *tgbotapi.Message) {
	b.logger.Info("wrong pattern",
		slog.Int64("chat_id", msg.Chat.ID),
		slog.String("text", msg.Text),
	)
	b.reply(ctx, msg.Chat.ID, relay.WrongPatternMessage)
}

func (b *Bot) handleRefreshJoinGate(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if err := b.sender.AnswerCallback(ctx, query.ID, "", false); err != nil {
		b.logger.Warn("answer callback failed", slog.Any("error", err))
	}
	if query.From == nil || query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID
	if b.gate.Check(ctx, query.From.ID).Allowed() {
		// Remove the gate prompt to reduce clutter; best effort.
		ref := relay.MessageRef{ChatID: chatID, MessageID: query.Message.MessageID}
		if err := b.sender.DeleteMessage(ctx, ref); err != nil {
			b.logger.Warn("delete gate prompt failed", slog.Any("error", err))
		}
		b.reply(ctx, chatID, relay.StartMessage)
		b.logger.Info("refresh success", slog.Int64("chat_id", chatID))
		return
	}
	if err := b.sender.AnswerCallback(ctx, query.ID, relay.StillNotJoinedMessage, true); err != nil {
		b.logger.Warn("answer callback failed", slog.Any("error", err))
	}
	b.logger.Info("refresh denied", slog.Int64("chat_id", chatID))
}

// requireJoined reports whether the sender may proceed; when not, it sends
// the join-gate prompt.
func (b *Bot) requireJoined(ctx context.Context, msg *tgbotapi.Message) bool {
	if msg.From == nil {
		return false
	}
	if b.gate.Check(ctx, msg.From.ID).Allowed() {
		return true
	}
	if err := b.sender.SendGatePrompt(ctx, msg.Chat.ID, relay.JoinGateMessage, b.channelURL); err != nil {
		b.logger.Warn("send gate prompt failed", slog.Any("error", err))
	}
	return false
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if _, err := b.sender.SendText(ctx, chatID, text); err != nil {
		b.logger.Warn("send reply failed",
			slog.Int64("chat_id", chatID),
			slog.Any("error", err),
		)
	}
}
