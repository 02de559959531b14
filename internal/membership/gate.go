// Package membership gates bot features behind updates-channel membership.
package membership

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Verdict is the tri-state outcome of a membership check. Unknown is what
// every oracle failure collapses into, and consumers treat it exactly like
// NotMember: the gate fails closed.
type Verdict int

const (
	VerdictUnknown Verdict = iota
	VerdictNotMember
	VerdictMember
)

func (v Verdict) String() string {
	switch v {
	case VerdictMember:
		return "member"
	case VerdictNotMember:
		return "not_member"
	default:
		return "unknown"
	}
}

// Allowed reports whether the verdict unlocks the bot.
func (v Verdict) Allowed() bool {
	return v == VerdictMember
}

// MemberOracle is one getChatMember round trip: it returns the raw
// membership status string for a user in a channel.
type MemberOracle interface {
	MemberStatus(ctx context.Context, channel string, userID int64) (string, error)
}

// Reporter receives best-effort diagnostic records. Implementations must not
// block the gate; failures are swallowed here.
type Reporter interface {
	Notify(ctx context.Context, text string)
}

// Gate checks whether a user has joined the updates channel. It is queried
// fresh on every request; verdicts are never cached.
type Gate struct {
	oracle   MemberOracle
	channel  string
	timeout  time.Duration
	reporter Reporter
	logger   *slog.Logger
}

// NewGate creates a Gate for the given updates channel. reporter may be nil.
func NewGate(log *slog.Logger, oracle MemberOracle, channel string, timeout time.Duration, reporter Reporter) *Gate {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Gate{
		oracle:   oracle,
		channel:  channel,
		timeout:  timeout,
		reporter: reporter,
		logger:   log.With(slog.String("component", "membership")),
	}
}

// Channel returns the gated updates channel (for the join prompt).
func (g *Gate) Channel() string {
	return g.channel
}

// Check queries the membership oracle for userID. Only the member,
// administrator, and creator statuses count as joined; any oracle error or
// unexpected status fails closed.
func (g *Gate) Check(ctx context.Context, userID int64) Verdict {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	status, err := g.oracle.MemberStatus(ctx, g.channel, userID)
	if err != nil {
		g.logger.Warn("membership check failed",
			slog.Int64("user_id", userID),
			slog.String("channel", g.channel),
			slog.Any("error", err),
		)
		if g.reporter != nil {
			// Best effort; the reporter swallows its own failures.
			g.reporter.Notify(ctx, fmt.Sprintf("join-check error: %v\nuser: %d", err, userID))
		}
		return VerdictUnknown
	}
	switch status {
	case "member", "administrator", "creator":
		return VerdictMember
	default:
		return VerdictNotMember
	}
}
