package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
)

type fakeBot struct {
	updates []tgbotapi.Update
}

func (b *fakeBot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	b.updates = append(b.updates, update)
}

func webhookContext(token, secret, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhook/"+token, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if secret != "" {
		req.Header.Set(secretTokenHeader, secret)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("token")
	c.SetParamValues(token)
	return c, rec
}

func newTestWebhookHandler(bot *fakeBot) *WebhookHandler {
	h := NewWebhookHandler(nil, "123:abc", "hook-secret", bot)
	// run dispatched work inline so assertions see it
	h.dispatch = func(fn func()) { fn() }
	return h
}

func TestWebhook_TokenMismatch(t *testing.T) {
	t.Parallel()

	bot := &fakeBot{}
	h := newTestWebhookHandler(bot)

	c, _ := webhookContext("wrong-token", "hook-secret", `{"update_id":1}`)
	err := h.Handle(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 error, got %v", err)
	}
	if len(bot.updates) != 0 {
		t.Fatal("update must not be dispatched")
	}
}

func TestWebhook_SecretMismatch(t *testing.T) {
	t.Parallel()

	bot := &fakeBot{}
	h := newTestWebhookHandler(bot)

	c, _ := webhookContext("123:abc", "not-the-secret", `{"update_id":1}`)
	err := h.Handle(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 error, got %v", err)
	}
	if len(bot.updates) != 0 {
		t.Fatal("update must not be dispatched")
	}
}

func TestWebhook_MalformedBodyAcknowledged(t *testing.T) {
	t.Parallel()

	for _, body := range []string{"", "not json at all"} {
		bot := &fakeBot{}
		h := newTestWebhookHandler(bot)

		c, rec := webhookContext("123:abc", "hook-secret", body)
		if err := h.Handle(c); err != nil {
			t.Fatalf("body %q: unexpected error: %v", body, err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("body %q: expected 200, got %d", body, rec.Code)
		}
		if rec.Body.String() != "no update" {
			t.Fatalf("body %q: unexpected response %q", body, rec.Body.String())
		}
		if len(bot.updates) != 0 {
			t.Fatalf("body %q: update must not be dispatched", body)
		}
	}
}

func TestWebhook_DispatchesUpdate(t *testing.T) {
	t.Parallel()

	bot := &fakeBot{}
	h := newTestWebhookHandler(bot)

	c, rec := webhookContext("123:abc", "hook-secret", `{"update_id":77,"message":{"message_id":5,"chat":{"id":42},"text":"hi"}}`)
	if err := h.Handle(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
	if len(bot.updates) != 1 || bot.updates[0].UpdateID != 77 {
		t.Fatalf("unexpected dispatched updates: %v", bot.updates)
	}
	if bot.updates[0].Message == nil || bot.updates[0].Message.Chat.ID != 42 {
		t.Fatal("message payload not carried through")
	}
}

func TestWebhook_NoSecretConfigured(t *testing.T) {
	t.Parallel()

	bot := &fakeBot{}
	h := NewWebhookHandler(nil, "123:abc", "", bot)
	h.dispatch = func(fn func()) { fn() }

	c, rec := webhookContext("123:abc", "", `{"update_id":9}`)
	if err := h.Handle(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(bot.updates) != 1 {
		t.Fatal("update should be dispatched when no secret is configured")
	}
}
