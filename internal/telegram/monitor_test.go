package telegram

import (
	"context"
	"fmt"
	"testing"

	"lunchcheck_bot/internal/lunchcheck"
	"lunchcheck_bot/internal/store"
)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	st := store.New()
	st.EnsureChat(1, store.ChatMeta{})
	if !st.AddCardIfAbsent(1, store.Card{CardNumber: "1111111111111111", LastBalance: okStatus("10.00", true).Saldo, IsActive: true}) {
		t.Fatal("seed card A")
	}
	if !st.AddCardIfAbsent(1, store.Card{CardNumber: "2222222222222222", LastBalance: okStatus("20.00", true).Saldo, IsActive: true}) {
		t.Fatal("seed card B")
	}
	return st
}

func TestRunCheckNoChangeSendsNothing(t *testing.T) {
	st := seededStore(t)
	rec := &messageRecorder{}

	m := NewCardMonitor(st, fetchFunc(func(ctx context.Context, card string) (lunchcheck.Status, error) {
		switch card {
		case "1111111111111111":
			return okStatus("10.00", true), nil
		case "2222222222222222":
			return okStatus("20.00", true), nil
		}
		return lunchcheck.Status{}, fmt.Errorf("unknown card %s", card)
	}), rec.send, 2)

	m.RunCheck(context.Background())

	if got := len(rec.sent()); got != 0 {
		t.Fatalf("expected no notifications, got %d", got)
	}
	card, _ := st.GetCard(1, "1111111111111111")
	if card.LastBalance.StringFixed(2) != "10.00" {
		t.Fatalf("stored card must be unchanged, got %s", card.LastBalance)
	}
}

func TestRunCheckNotifiesOnChange(t *testing.T) {
	st := seededStore(t)
	rec := &messageRecorder{}

	m := NewCardMonitor(st, fetchFunc(func(ctx context.Context, card string) (lunchcheck.Status, error) {
		if card == "1111111111111111" {
			return okStatus("12.50", true), nil
		}
		return okStatus("20.00", true), nil
	}), rec.send, 2)

	m.RunCheck(context.Background())

	msgs := rec.sent()
	if len(msgs) != 1 {
		t.Fatalf("expected exactly one notification, got %d: %v", len(msgs), msgs)
	}
	if msgs[0].chatID != 1 || msgs[0].text != "Saldo: 12.50 CHF\nActive: true" {
		t.Fatalf("unexpected notification: %+v", msgs[0])
	}

	card, _ := st.GetCard(1, "1111111111111111")
	if card.LastBalance.StringFixed(2) != "12.50" || !card.IsActive {
		t.Fatalf("stored card not updated: %+v", card)
	}

	// second run with the same values: change already absorbed
	m.RunCheck(context.Background())
	if got := len(rec.sent()); got != 1 {
		t.Fatalf("change must be detected exactly once, got %d notifications", got)
	}
}

func TestRunCheckScanIsolation(t *testing.T) {
	st := seededStore(t)
	rec := &messageRecorder{}

	m := NewCardMonitor(st, fetchFunc(func(ctx context.Context, card string) (lunchcheck.Status, error) {
		if card == "1111111111111111" {
			return lunchcheck.Status{}, lunchcheck.ErrSourceUnavailable
		}
		return okStatus("25.00", false), nil
	}), rec.send, 2)

	m.RunCheck(context.Background())

	msgs := rec.sent()
	if len(msgs) != 1 {
		t.Fatalf("failing card must not suppress the other: got %d notifications", len(msgs))
	}
	if msgs[0].text != "Saldo: 25.00 CHF\nActive: false" {
		t.Fatalf("unexpected notification: %q", msgs[0].text)
	}

	// the failed card keeps its last observation
	card, _ := st.GetCard(1, "1111111111111111")
	if card.LastBalance.StringFixed(2) != "10.00" || !card.IsActive {
		t.Fatalf("failed card must be untouched: %+v", card)
	}
}

func TestRunCheckSendFailureStillUpdatesStore(t *testing.T) {
	st := seededStore(t)
	rec := &messageRecorder{err: fmt.Errorf("gateway down")}

	m := NewCardMonitor(st, fetchFunc(func(ctx context.Context, card string) (lunchcheck.Status, error) {
		if card == "1111111111111111" {
			return okStatus("1.00", true), nil
		}
		return okStatus("20.00", true), nil
	}), rec.send, 1)

	m.RunCheck(context.Background())

	card, _ := st.GetCard(1, "1111111111111111")
	if card.LastBalance.StringFixed(2) != "1.00" {
		t.Fatalf("store must be updated even when the send fails: %+v", card)
	}

	// next tick must not re-detect the same change
	rec.err = nil
	m.RunCheck(context.Background())
	msgs := rec.sent()
	if len(msgs) != 1 {
		t.Fatalf("expected no second notification, got %d", len(msgs))
	}
}

func TestRunCheckEmptyStore(t *testing.T) {
	rec := &messageRecorder{}
	m := NewCardMonitor(store.New(), fetchFunc(func(ctx context.Context, card string) (lunchcheck.Status, error) {
		t.Fatal("fetch should not be called")
		return lunchcheck.Status{}, nil
	}), rec.send, 4)

	m.RunCheck(context.Background())

	if got := len(rec.sent()); got != 0 {
		t.Fatalf("expected nothing sent, got %d", got)
	}
}
