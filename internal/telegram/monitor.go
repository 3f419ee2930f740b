package telegram

import (
	"context"
	"sync"

	"lunchcheck_bot/internal/logger"
	"lunchcheck_bot/internal/store"
)

// CardMonitor re-checks every registered card against the balance source and
// notifies the owning chat when the balance or active status changed since
// the last observation.
type CardMonitor struct {
	store       *store.Store
	fetcher     balanceFetcher
	send        sendFunc
	concurrency int
}

// NewCardMonitor returns a monitor scanning st with up to concurrency
// fetches in flight. send delivers notifications to chats.
func NewCardMonitor(st *store.Store, fetcher balanceFetcher, send sendFunc, concurrency int) *CardMonitor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &CardMonitor{
		store:       st,
		fetcher:     fetcher,
		send:        send,
		concurrency: concurrency,
	}
}

// RunCheck performs one scan over all chats and cards. Per-card failures are
// logged and skipped; the next scheduled run retries them naturally. The
// fan-out is joined before RunCheck returns, so a tick is complete when it
// finishes.
func (m *CardMonitor) RunCheck(ctx context.Context) {
	targets := m.store.CheckTargets()
	if len(targets) == 0 {
		logger.L().Debug("Balance scan skipped: no registered cards")
		return
	}

	logger.L().Infof("Balance scan started: %d cards", len(targets))

	jobs := make(chan store.CheckTarget)
	var wg sync.WaitGroup

	for i := 0; i < m.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for target := range jobs {
				m.checkCard(ctx, target)
			}
		}()
	}

	for _, target := range targets {
		if ctx.Err() != nil {
			break
		}
		jobs <- target
	}
	close(jobs)
	wg.Wait()

	logger.L().Info("Balance scan completed")
}

// checkCard fetches one card and applies the compare-and-update. The store
// update happens before the notification is sent: a failed send is logged
// but not retried, and the stored state already reflects the new values so
// the next tick does not re-detect the same change.
func (m *CardMonitor) checkCard(ctx context.Context, target store.CheckTarget) {
	status, err := m.fetcher.Fetch(ctx, target.CardNumber)
	if err != nil {
		logger.L().Warnf("Balance check failed: chat_id=%d card=%s err=%v",
			target.ChatID, target.CardNumber, err)
		return
	}

	changed := m.store.ApplyCheck(target.ChatID, target.CardNumber, status.Saldo, status.Active)
	if !changed {
		return
	}

	logger.L().Infof("Balance changed: chat_id=%d card=%s saldo=%s active=%t",
		target.ChatID, target.CardNumber, status.Saldo.StringFixed(2), status.Active)

	if err := m.send(ctx, target.ChatID, formatStatus(status)); err != nil {
		logger.L().Errorf("Balance notification failed: chat_id=%d err=%v", target.ChatID, err)
	}
}
