package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// ErrResolutionFailed means the resolver produced nothing usable for the
// link: an error, or a result with neither media nor caption.
var ErrResolutionFailed = errors.New("link resolution failed")

// MessageRef identifies a sent message so it can be deleted later.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Post is a resolved link: an ordered media list and an optional caption.
type Post struct {
	Items   []MediaItem
	Caption string
}

// Resolver turns a post/reel shortcode into media items plus caption.
type Resolver interface {
	Resolve(ctx context.Context, shortcode string) (Post, error)
}

// Transport is the chat-send capability the pipeline drives. Implementations
// are expected to impose their own per-call rate limits.
type Transport interface {
	SendText(ctx context.Context, chatID int64, text string) (MessageRef, error)
	SendSingle(ctx context.Context, chatID int64, item BatchItem) error
	SendGroup(ctx context.Context, chatID int64, batch Batch) error
	DeleteMessage(ctx context.Context, ref MessageRef) error
}

// Reporter receives diagnostic records; failures are swallowed by the
// implementation.
type Reporter interface {
	Notify(ctx context.Context, text string)
}

// Pipeline owns the notify → resolve → compose → plan → send → close
// sequence for one delivery. Authentication and the membership gate run
// before Deliver is called; no pipeline work happens for rejected requests.
type Pipeline struct {
	transport Transport
	resolver  Resolver
	trail     string
	maxBatch  int
	logger    *slog.Logger
	reporter  Reporter
}

// NewPipeline creates a delivery pipeline. reporter may be nil.
func NewPipeline(log *slog.Logger, transport Transport, resolver Resolver, reporter Reporter) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		transport: transport,
		resolver:  resolver,
		trail:     CaptionTrail,
		maxBatch:  MaxGroupSize,
		logger:    log.With(slog.String("component", "pipeline")),
		reporter:  reporter,
	}
}

// Deliver resolves shortcode and redelivers its media to chatID. The
// transient working notice is retracted on every exit path, success or
// failure, even if ctx was cancelled mid-flight. Everything is
// request-scoped; Deliver never retries, since a duplicate delivery is worse
// than a failed one.
func (p *Pipeline) Deliver(ctx context.Context, chatID int64, shortcode string) error {
	log := p.logger.With(
		slog.String("delivery_id", uuid.NewString()),
		slog.Int64("chat_id", chatID),
		slog.String("shortcode", shortcode),
	)

	notice, err := p.transport.SendText(ctx, chatID, WorkingMessage)
	if err != nil {
		return fmt.Errorf("send working notice: %w", err)
	}
	defer func() {
		// The notice may already be gone; deletion is best effort and must
		// run even when the inbound request was aborted.
		retractCtx := context.WithoutCancel(ctx)
		if err := p.transport.DeleteMessage(retractCtx, notice); err != nil {
			log.Warn("retract working notice failed", slog.Any("error", err))
		}
	}()

	post, err := p.resolver.Resolve(ctx, shortcode)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrResolutionFailed, err)
		p.report(ctx, log, err)
		return err
	}
	if len(post.Items) == 0 && post.Caption == "" {
		err := fmt.Errorf("%w: resolver returned nothing", ErrResolutionFailed)
		p.report(ctx, log, err)
		return err
	}

	caption := ComposeCaption(post.Caption, p.trail, MaxCaptionLength)
	batches, err := PlanBatches(post.Items, caption, p.maxBatch)
	if err != nil {
		p.report(ctx, log, err)
		return err
	}

	if item, ok := Single(batches); ok {
		if err := p.transport.SendSingle(ctx, chatID, item); err != nil {
			err = fmt.Errorf("send single item: %w", err)
			p.report(ctx, log, err)
			return err
		}
	} else {
		// Strictly sequential; ordering and caption placement depend on
		// per-batch completion.
		for i, batch := range batches {
			if err := p.transport.SendGroup(ctx, chatID, batch); err != nil {
				err = fmt.Errorf("send batch %d/%d: %w", i+1, len(batches), err)
				p.report(ctx, log, err)
				return err
			}
		}
	}

	if _, err := p.transport.SendText(ctx, chatID, EndMessage); err != nil {
		err = fmt.Errorf("send closing message: %w", err)
		p.report(ctx, log, err)
		return err
	}

	log.Info("delivery complete",
		slog.Int("items", len(post.Items)),
		slog.Int("batches", len(batches)),
	)
	return nil
}

func (p *Pipeline) report(ctx context.Context, log *slog.Logger, err error) {
	log.Error("delivery failed", slog.Any("error", err))
	if p.reporter != nil {
		p.reporter.Notify(context.WithoutCancel(ctx), fmt.Sprintf("delivery error: %v", err))
	}
}
