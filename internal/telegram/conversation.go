package telegram

import (
	"context"
	"fmt"
	"sync"

	"lunchcheck_bot/internal/logger"
	"lunchcheck_bot/internal/lunchcheck"
	"lunchcheck_bot/internal/store"
)

// pendingAction is the per-chat conversation state. It lives only in memory;
// a pending prompt does not survive a restart.
type pendingAction int

const (
	pendingNone pendingAction = iota
	pendingCardNumber
)

type conversationState struct {
	mu      sync.Mutex
	pending map[int64]pendingAction
}

func newConversationState() *conversationState {
	return &conversationState{pending: make(map[int64]pendingAction)}
}

func (c *conversationState) get(chatID int64) pendingAction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[chatID]
}

func (c *conversationState) set(chatID int64, action pendingAction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[chatID] = action
}

func (c *conversationState) clear(chatID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, chatID)
}

const (
	startText   = "This bot checks your Lunch Check saldo once per day, and sends you a message if it changed. Press /newcard to register a card."
	aboutText   = "This bot was programmed by a swiss guy."
	promptText  = "Please send me your Lunch Check card number or link scanned from QR code. Or /cancel"
	invalidText = "Invalid Lunch Check card number. /cancel"
	cancelText  = "Current operation canceled."
	alreadyText = "This card is already registered."
)

// handleTextMessage routes one inbound text message. Commands are matched
// exactly and take priority over a pending action; unrecognized text with no
// pending action is ignored without a reply.
func (b *Bot) handleTextMessage(ctx context.Context, chatID int64, meta store.ChatMeta, text string) {
	switch text {
	case "/start":
		b.reply(ctx, chatID, startText)

	case "/about":
		b.reply(ctx, chatID, aboutText)

	case "/newcard":
		b.conv.set(chatID, pendingCardNumber)
		b.reply(ctx, chatID, promptText)

	case "/cancel":
		b.conv.clear(chatID)
		b.reply(ctx, chatID, cancelText)

	default:
		if b.conv.get(chatID) != pendingCardNumber {
			return
		}
		if b.registerCard(ctx, chatID, meta, text) {
			b.conv.clear(chatID)
		} else {
			b.reply(ctx, chatID, invalidText)
		}
	}
}

// registerCard attempts to register the card described by text. It reports
// false when the text does not parse or the initial fetch fails; the caller
// keeps the chat in the awaiting state for another attempt. Parse and fetch
// failures are deliberately not distinguished to the user.
func (b *Bot) registerCard(ctx context.Context, chatID int64, meta store.ChatMeta, text string) bool {
	cardNumber, ok := b.parser.Parse(text)
	if !ok {
		return false
	}

	status, err := b.fetcher.Fetch(ctx, cardNumber)
	if err != nil {
		logger.L().Warnf("Registration fetch failed: chat_id=%d card=%s err=%v", chatID, cardNumber, err)
		return false
	}

	b.store.EnsureChat(chatID, meta)
	added := b.store.AddCardIfAbsent(chatID, store.Card{
		CardNumber:  cardNumber,
		LastBalance: status.Saldo,
		IsActive:    status.Active,
	})

	if added {
		logger.L().Infof("Card registered: chat_id=%d card=%s", chatID, cardNumber)
		b.reply(ctx, chatID, formatStatus(status))
	} else {
		b.reply(ctx, chatID, alreadyText)
	}
	return true
}

// reply sends a conversational response; delivery failures are logged, the
// conversation state is not rolled back.
func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.send(ctx, chatID, text); err != nil {
		logger.L().Errorf("Failed to reply to chat %d: %v", chatID, err)
	}
}

// formatStatus renders a fetched status the way both the registration reply
// and the change notification present it.
func formatStatus(status lunchcheck.Status) string {
	return fmt.Sprintf("Saldo: %s CHF\nActive: %t", status.Saldo.StringFixed(2), status.Active)
}
