// Package telegram implements the chat transport and the chat-facing bot
// surface on top of the Bot API.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/quickgram/quickgram/internal/relay"
)

// Transport wraps a bot API client with the send, delete, and lookup
// primitives the pipeline and gate need. It also carries the log-channel
// diagnostics sink.
type Transport struct {
	bot          *tgbotapi.BotAPI
	logChannelID int64
	logger       *slog.Logger
}

// NewTransport creates a Transport. logChannelID may be zero to disable the
// diagnostics channel.
func NewTransport(log *slog.Logger, bot *tgbotapi.BotAPI, logChannelID int64) *Transport {
	if log == nil {
		log = slog.Default()
	}
	return &Transport{
		bot:          bot,
		logChannelID: logChannelID,
		logger:       log.With(slog.String("component", "telegram")),
	}
}

// SendText sends an HTML text message and returns its ref for later
// deletion.
func (t *Transport) SendText(ctx context.Context, chatID int64, text string) (relay.MessageRef, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	sent, err := t.bot.Send(msg)
	if err != nil {
		return relay.MessageRef{}, err
	}
	return relay.MessageRef{ChatID: chatID, MessageID: sent.MessageID}, nil
}

// SendSingle delivers one media item with the photo or video primitive.
func (t *Transport) SendSingle(ctx context.Context, chatID int64, item relay.BatchItem) error {
	file := tgbotapi.FileURL(item.SourceURL)
	switch item.Kind {
	case relay.MediaVideo:
		video := tgbotapi.NewVideo(chatID, file)
		video.Caption = item.Caption
		_, err := t.bot.Send(video)
		return err
	default:
		photo := tgbotapi.NewPhoto(chatID, file)
		photo.Caption = item.Caption
		_, err := t.bot.Send(photo)
		return err
	}
}

// SendGroup delivers one batch with the media-group primitive.
func (t *Transport) SendGroup(ctx context.Context, chatID int64, batch relay.Batch) error {
	group := tgbotapi.NewMediaGroup(chatID, buildInputMedia(batch))
	_, err := t.bot.SendMediaGroup(group)
	return err
}

// buildInputMedia maps a batch to the wire representation, keeping order and
// caption placement.
func buildInputMedia(batch relay.Batch) []interface{} {
	media := make([]interface{}, 0, len(batch))
	for _, item := range batch {
		file := tgbotapi.FileURL(item.SourceURL)
		if item.Kind == relay.MediaVideo {
			video := tgbotapi.NewInputMediaVideo(file)
			video.Caption = item.Caption
			media = append(media, video)
			continue
		}
		photo := tgbotapi.NewInputMediaPhoto(file)
		photo.Caption = item.Caption
		media = append(media, photo)
	}
	return media
}

// DeleteMessage removes a previously sent message.
func (t *Transport) DeleteMessage(ctx context.Context, ref relay.MessageRef) error {
	_, err := t.bot.Request(tgbotapi.NewDeleteMessage(ref.ChatID, ref.MessageID))
	return err
}

// MemberStatus returns the raw membership status of a user in a channel.
// The bot should be an admin in the channel for reliable results.
func (t *Transport) MemberStatus(ctx context.Context, channel string, userID int64) (string, error) {
	member, err := t.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			SuperGroupUsername: channel,
			UserID:             userID,
		},
	})
	if err != nil {
		return "", err
	}
	return member.Status, nil
}

// SendGatePrompt sends the join-gate message with the channel link and a
// refresh button.
func (t *Transport) SendGatePrompt(ctx context.Context, chatID int64, text, channelURL string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("Join updates channel", channelURL),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Refresh", refreshJoinGateCallback),
		),
	)
	_, err := t.bot.Send(msg)
	return err
}

// AnswerCallback acknowledges a callback query so the client stops showing a
// spinner; with showAlert it raises a popup instead.
func (t *Transport) AnswerCallback(ctx context.Context, callbackID, text string, showAlert bool) error {
	callback := tgbotapi.NewCallback(callbackID, text)
	callback.ShowAlert = showAlert
	_, err := t.bot.Request(callback)
	return err
}

// Notify writes a diagnostic record to the log channel. It is best effort:
// failures land in the process log and go no further.
func (t *Transport) Notify(ctx context.Context, text string) {
	if t.logChannelID == 0 {
		return
	}
	msg := tgbotapi.NewMessage(t.logChannelID, relay.BotUsername+" log:\n\n"+text)
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Warn("log channel notify failed", slog.Any("error", err))
	}
}

// RegisterWebhook points Telegram at publicURL/webhook/<token>, replacing
// any previous webhook. secret, when set, is echoed back by Telegram in the
// X-Telegram-Bot-Api-Secret-Token header of every delivery.
func (t *Transport) RegisterWebhook(publicURL, secret string) error {
	if _, err := t.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	params := tgbotapi.Params{}
	params.AddNonEmpty("url", publicURL+"/webhook/"+t.bot.Token)
	params.AddNonEmpty("secret_token", secret)
	if _, err := t.bot.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	t.logger.Info("webhook registered", slog.String("public_url", publicURL))
	return nil
}

// Token returns the bot token, used as the hard-to-guess webhook path
// segment.
func (t *Transport) Token() string {
	return t.bot.Token
}
