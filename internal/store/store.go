package store

import (
	"encoding/json"
	"sync"

	"github.com/shopspring/decimal"

	"lunchcheck_bot/internal/logger"
)

// Store is the in-memory mapping of chat ID to ChatRecord. It is the single
// owner of all chat/card state; the scheduled scan and the inbound message
// path both go through its methods, serialized by one store-wide mutex.
// Record pointers never escape the lock.
type Store struct {
	mu    sync.RWMutex
	chats map[int64]*ChatRecord
}

// New returns an empty store.
func New() *Store {
	return &Store{chats: make(map[int64]*ChatRecord)}
}

// Load deserializes a snapshot. Any failure (empty or malformed data) yields
// an empty store: startup must never fail because of a bad snapshot.
func Load(data []byte) *Store {
	s := New()
	if len(data) == 0 {
		return s
	}

	var chats map[int64]*ChatRecord
	if err := json.Unmarshal(data, &chats); err != nil {
		logger.L().Warnf("Snapshot unreadable, starting with empty store: %v", err)
		return s
	}
	for chatID, rec := range chats {
		if rec == nil {
			continue
		}
		rec.ChatID = chatID
		s.chats[chatID] = rec
	}
	return s
}

// Snapshot serializes the full mapping. Load(Snapshot(s)) round-trips all
// chat IDs and card sets.
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(s.chats)
}

// EnsureChat creates the chat record if it does not exist yet. This is the
// only creation path; meta is only applied to a newly created record.
func (s *Store) EnsureChat(chatID int64, meta ChatMeta) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chats[chatID]; !ok {
		s.chats[chatID] = &ChatRecord{ChatID: chatID, Meta: meta}
	}
}

// AddCardIfAbsent registers a card for the chat. It reports false when a
// card with the same number is already present, making registration
// idempotent. The chat record must exist (see EnsureChat).
func (s *Store) AddCardIfAbsent(chatID int64, card Card) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.chats[chatID]
	if !ok {
		return false
	}
	for _, c := range rec.Cards {
		if c.CardNumber == card.CardNumber {
			return false
		}
	}
	rec.Cards = append(rec.Cards, card)
	return true
}

// ApplyCheck compares a fetched (balance, active) pair against the stored
// card and updates it in place when they differ. It reports whether an
// update happened. Compare and update run under the write lock, so exactly
// one caller observes any given change.
func (s *Store) ApplyCheck(chatID int64, cardNumber string, balance decimal.Decimal, active bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.chats[chatID]
	if !ok {
		return false
	}
	for i := range rec.Cards {
		c := &rec.Cards[i]
		if c.CardNumber != cardNumber {
			continue
		}
		if c.LastBalance.Equal(balance) && c.IsActive == active {
			return false
		}
		c.LastBalance = balance
		c.IsActive = active
		return true
	}
	return false
}

// CheckTargets returns a flattened copy of every (chat, card) pair. The scan
// iterates this copy, never live map state.
func (s *Store) CheckTargets() []CheckTarget {
	s.mu.RLock()
	defer s.mu.RUnlock()

	targets := make([]CheckTarget, 0, len(s.chats))
	for chatID, rec := range s.chats {
		for _, c := range rec.Cards {
			targets = append(targets, CheckTarget{ChatID: chatID, CardNumber: c.CardNumber})
		}
	}
	return targets
}

// GetCard returns a copy of the stored card, if present.
func (s *Store) GetCard(chatID int64, cardNumber string) (Card, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.chats[chatID]
	if !ok {
		return Card{}, false
	}
	for _, c := range rec.Cards {
		if c.CardNumber == cardNumber {
			return c, true
		}
	}
	return Card{}, false
}

// ChatIDs returns all known chat IDs.
func (s *Store) ChatIDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.chats))
	for id := range s.chats {
		ids = append(ids, id)
	}
	return ids
}
