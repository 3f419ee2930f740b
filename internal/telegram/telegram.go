package telegram

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	botModels "github.com/go-telegram/bot/models"

	"lunchcheck_bot/internal/logger"
	"lunchcheck_bot/internal/lunchcheck"
	"lunchcheck_bot/internal/store"
)

// balanceFetcher is the slice of the lunchcheck client the bot needs.
type balanceFetcher interface {
	Fetch(ctx context.Context, cardNumber string) (lunchcheck.Status, error)
}

// sendFunc delivers one text message to a chat.
type sendFunc func(ctx context.Context, chatID int64, text string) error

// Config holds Telegram bot settings.
type Config struct {
	Token string
	Debug bool
}

// Bot wires the Telegram gateway to the store, the balance client and the
// per-chat conversation state.
type Bot struct {
	bot     *bot.Bot
	store   *store.Store
	fetcher balanceFetcher
	parser  *lunchcheck.CardParser
	conv    *conversationState
	send    sendFunc
}

// New creates the bot and registers the inbound message handler. Every text
// message is routed through the conversation router; non-text updates are
// dropped.
func New(cfg Config, st *store.Store, fetcher balanceFetcher, parser *lunchcheck.CardParser) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram token cannot be empty")
	}

	b := &Bot{
		store:   st,
		fetcher: fetcher,
		parser:  parser,
		conv:    newConversationState(),
	}
	b.send = b.sendMessage

	opts := []bot.Option{
		bot.WithDefaultHandler(b.onUpdate),
	}
	if cfg.Debug {
		opts = append(opts, bot.WithDebug())
	}

	tg, err := bot.New(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	b.bot = tg

	logger.L().Info("Telegram bot initialized")
	return b, nil
}

// Start begins long polling. Blocking; run in a goroutine and cancel the
// context to stop.
func (b *Bot) Start(ctx context.Context) {
	logger.L().Info("Telegram bot started")
	b.bot.Start(ctx)
	logger.L().Info("Telegram bot stopped")
}

// SendMessage delivers a text message to a chat through the gateway.
func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string) error {
	return b.send(ctx, chatID, text)
}

func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := b.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}
	return nil
}

func (b *Bot) onUpdate(ctx context.Context, _ *bot.Bot, update *botModels.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	chat := update.Message.Chat
	meta := store.ChatMeta{
		Title:     chat.Title,
		Username:  chat.Username,
		FirstName: chat.FirstName,
		LastName:  chat.LastName,
	}

	b.handleTextMessage(ctx, chat.ID, meta, update.Message.Text)
}
