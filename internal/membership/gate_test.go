package membership

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeOracle struct {
	status string
	err    error
}

func (o *fakeOracle) MemberStatus(ctx context.Context, channel string, userID int64) (string, error) {
	if o.err != nil {
		return "", o.err
	}
	return o.status, nil
}

type fakeReporter struct {
	notes []string
}

func (r *fakeReporter) Notify(ctx context.Context, text string) {
	r.notes = append(r.notes, text)
}

func TestCheck_AllowedStatuses(t *testing.T) {
	t.Parallel()

	for _, status := range []string{"member", "administrator", "creator"} {
		gate := NewGate(nil, &fakeOracle{status: status}, "@updates", time.Second, nil)
		verdict := gate.Check(context.Background(), 42)
		if verdict != VerdictMember {
			t.Fatalf("status %q: expected member verdict, got %v", status, verdict)
		}
		if !verdict.Allowed() {
			t.Fatalf("status %q: expected allowed", status)
		}
	}
}

func TestCheck_DeniedStatuses(t *testing.T) {
	t.Parallel()

	for _, status := range []string{"left", "kicked", "restricted", ""} {
		gate := NewGate(nil, &fakeOracle{status: status}, "@updates", time.Second, nil)
		verdict := gate.Check(context.Background(), 42)
		if verdict != VerdictNotMember {
			t.Fatalf("status %q: expected not-member verdict, got %v", status, verdict)
		}
		if verdict.Allowed() {
			t.Fatalf("status %q: expected denied", status)
		}
	}
}

func TestCheck_OracleErrorFailsClosed(t *testing.T) {
	t.Parallel()

	reporter := &fakeReporter{}
	gate := NewGate(nil, &fakeOracle{err: errors.New("timeout")}, "@updates", time.Second, reporter)
	verdict := gate.Check(context.Background(), 42)
	if verdict != VerdictUnknown {
		t.Fatalf("expected unknown verdict, got %v", verdict)
	}
	if verdict.Allowed() {
		t.Fatal("unknown verdict must be treated as denied")
	}
	if len(reporter.notes) != 1 {
		t.Fatalf("expected one diagnostic record, got %d", len(reporter.notes))
	}
}

func TestCheck_NilReporterDoesNotPanic(t *testing.T) {
	t.Parallel()

	gate := NewGate(nil, &fakeOracle{err: errors.New("boom")}, "@updates", time.Second, nil)
	if got := gate.Check(context.Background(), 42); got != VerdictUnknown {
		t.Fatalf("expected unknown verdict, got %v", got)
	}
}
