package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Route pairs a message matcher with its handler. Routes are evaluated in
// registration order and the first match wins.
type Route struct {
	Match  func(msg *tgbotapi.Message) bool
	Handle func(ctx context.Context, msg *tgbotapi.Message)
}

// CallbackRoute pairs a callback-data matcher with its handler.
type CallbackRoute struct {
	Match  func(data string) bool
	Handle func(ctx context.Context, query *tgbotapi.CallbackQuery)
}

// Router dispatches incoming updates to an ordered route list with a
// catch-all fallback for unrecognized messages.
type Router struct {
	routes    []Route
	callbacks []CallbackRoute
	fallback  func(ctx context.Context, msg *tgbotapi.Message)
}

func NewRouter() *Router {
	return &Router{}
}

// Handle appends a message route.
func (r *Router) Handle(match func(*tgbotapi.Message) bool, handle func(context.Context, *tgbotapi.Message)) {
	r.routes = append(r.routes, Route{Match: match, Handle: handle})
}

// HandleCallback appends a callback-query route.
func (r *Router) HandleCallback(match func(string) bool, handle func(context.Context, *tgbotapi.CallbackQuery)) {
	r.callbacks = append(r.callbacks, CallbackRoute{Match: match, Handle: handle})
}

// Fallback sets the handler for messages no route matched.
func (r *Router) Fallback(handle func(context.Context, *tgbotapi.Message)) {
	r.fallback = handle
}

// Dispatch routes one update. Updates that are neither text messages nor
// callback queries are ignored.
func (r *Router) Dispatch(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		for _, route := range r.callbacks {
			if route.Match(update.CallbackQuery.Data) {
				route.Handle(ctx, update.CallbackQuery)
				return
			}
		}
		return
	}
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}
	for _, route := range r.routes {
		if route.Match(msg) {
			route.Handle(ctx, msg)
			return
		}
	}
	if r.fallback != nil {
		r.fallback(ctx, msg)
	}
}

// command matches an exact bot command, with or without a @botname suffix.
func command(name string) func(*tgbotapi.Message) bool {
	return func(msg *tgbotapi.Message) bool {
		return msg.IsCommand() && msg.Command() == name
	}
}
