package store

import "github.com/shopspring/decimal"

// Card is one registered Lunch Check card with its last observed state.
// CardNumber is the canonical 16-digit form without separators and is the
// card's identity within its chat.
type Card struct {
	CardNumber  string          `json:"card_number"`
	LastBalance decimal.Decimal `json:"last_balance"`
	IsActive    bool            `json:"is_active"`
}

// ChatMeta carries display information captured from the gateway when the
// chat record is first created. Opaque to the monitoring logic.
type ChatMeta struct {
	Title     string `json:"title,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// ChatRecord holds all cards registered by one chat. Card numbers are
// unique within a record; order is not significant.
type ChatRecord struct {
	ChatID int64    `json:"chat_id"`
	Meta   ChatMeta `json:"meta"`
	Cards  []Card   `json:"cards"`
}

// CheckTarget identifies one card of one chat for a scan pass.
type CheckTarget struct {
	ChatID     int64
	CardNumber string
}
