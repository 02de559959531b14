package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/quickgram/quickgram/internal/membership"
	"github.com/quickgram/quickgram/internal/relay"
)

// initDataVerifier authenticates a mini-app payload and yields the user id.
type initDataVerifier interface {
	Verify(initData string) (int64, error)
}

type membershipGate interface {
	Check(ctx context.Context, userID int64) membership.Verdict
}

type deliverer interface {
	Deliver(ctx context.Context, chatID int64, shortcode string) error
}

type textSender interface {
	SendText(ctx context.Context, chatID int64, text string) (relay.MessageRef, error)
}

// SubmitRequest is the mini-app submission body.
type SubmitRequest struct {
	Link     string `json:"link" validate:"required"`
	InitData string `json:"initData"`
}

// SubmitHandler is the HTTP submission surface: it authenticates the caller,
// enforces the membership gate, and hands the link to the delivery pipeline.
type SubmitHandler struct {
	verifier initDataVerifier
	gate     membershipGate
	pipeline deliverer
	sender   textSender
	logger   *slog.Logger
}

func NewSubmitHandler(log *slog.Logger, verifier initDataVerifier, gate membershipGate, pipeline deliverer, sender textSender) *SubmitHandler {
	if log == nil {
		log = slog.Default()
	}
	return &SubmitHandler{
		verifier: verifier,
		gate:     gate,
		pipeline: pipeline,
		sender:   sender,
		logger:   log.With(slog.String("handler", "submit")),
	}
}

func (h *SubmitHandler) Register(e *echo.Echo) {
	e.POST("/api/submit", h.Submit)
}

func (h *SubmitHandler) Submit(c echo.Context) error {
	var req SubmitRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "Missing link"})
	}
	req.Link = strings.TrimSpace(req.Link)
	req.InitData = strings.TrimSpace(req.InitData)
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "Missing link"})
	}

	// Authentication and the gate both run before any resolver work.
	userID, err := h.verifier.Verify(req.InitData)
	if err != nil {
		h.logger.Warn("mini-app auth failed", slog.Any("error", err))
		return c.JSON(http.StatusForbidden, map[string]any{"error": "Authorization failed"})
	}
	if !h.gate.Check(c.Request().Context(), userID).Allowed() {
		return c.JSON(http.StatusForbidden, map[string]any{
			"error":         relay.JoinRequiredMessage,
			"join_required": true,
		})
	}

	shortcode, ok := relay.ExtractShortcode(req.Link)
	if !ok {
		// The caller is authenticated; tell them in chat like the bot
		// surface would and report success to the mini app.
		if _, err := h.sender.SendText(c.Request().Context(), userID, relay.WrongPatternMessage); err != nil {
			h.logger.Warn("send wrong-pattern reply failed", slog.Any("error", err))
		}
		return c.JSON(http.StatusOK, map[string]any{"ok": true})
	}

	if err := h.pipeline.Deliver(c.Request().Context(), userID, shortcode); err != nil {
		h.logger.Error("mini-app delivery failed",
			slog.Int64("user_id", userID),
			slog.Any("error", err),
		)
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": relay.FailMessage})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}
