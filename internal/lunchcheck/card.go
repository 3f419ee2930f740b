package lunchcheck

import (
	"fmt"
	"regexp"
)

// CardParser extracts a canonical 16-digit card number from user text. It
// accepts the four 4-digit groups bare, single-space separated, or prefixed
// by the saldo URL (as scanned from the QR code on the card).
type CardParser struct {
	re *regexp.Regexp
}

// NewCardParser builds a parser for cards of the given saldo endpoint.
func NewCardParser(saldoBaseURL string) *CardParser {
	pattern := fmt.Sprintf("(?:%s)?([0-9]{4}) ?([0-9]{4}) ?([0-9]{4}) ?([0-9]{4})",
		regexp.QuoteMeta(saldoBaseURL))
	return &CardParser{re: regexp.MustCompile(pattern)}
}

// Parse returns the canonical card number, concatenating the four groups
// without separators. ok is false when text contains no card number.
func (p *CardParser) Parse(text string) (cardNumber string, ok bool) {
	m := p.re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1] + m[2] + m[3] + m[4], true
}
