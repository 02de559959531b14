package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
)

// secretTokenHeader is the header Telegram echoes back when a secret token
// was supplied to setWebhook.
const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

const webhookMaxBodyBytes int64 = 1 << 20 // 1 MiB

type updateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

// WebhookHandler is the Telegram ingress. The bot token doubles as the
// hard-to-guess path segment. Malformed bodies are acknowledged with 200 so
// Telegram does not retry them forever.
type WebhookHandler struct {
	token    string
	secret   string
	bot      updateHandler
	logger   *slog.Logger
	dispatch func(fn func())
}

func NewWebhookHandler(log *slog.Logger, token, secret string, bot updateHandler) *WebhookHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WebhookHandler{
		token:    token,
		secret:   secret,
		bot:      bot,
		logger:   log.With(slog.String("handler", "webhook")),
		dispatch: func(fn func()) { go fn() },
	}
}

func (h *WebhookHandler) Register(e *echo.Echo) {
	e.POST("/webhook/:token", h.Handle)
}

func (h *WebhookHandler) Handle(c echo.Context) error {
	if subtle.ConstantTimeCompare([]byte(c.Param("token")), []byte(h.token)) != 1 {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	if h.secret != "" {
		incoming := c.Request().Header.Get(secretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(incoming), []byte(h.secret)) != 1 {
			return echo.NewHTTPError(http.StatusForbidden, "invalid webhook secret")
		}
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, webhookMaxBodyBytes))
	if err != nil || len(payload) == 0 {
		return c.String(http.StatusOK, "no update")
	}
	var update tgbotapi.Update
	if err := json.Unmarshal(payload, &update); err != nil {
		h.logger.Warn("malformed webhook payload", slog.Any("error", err))
		return c.String(http.StatusOK, "no update")
	}

	// Chat-originated work runs to completion even if Telegram drops the
	// webhook connection.
	ctx := context.WithoutCancel(c.Request().Context())
	h.dispatch(func() { h.bot.HandleUpdate(ctx, update) })
	return c.String(http.StatusOK, "ok")
}
