package domain

import (
	"fmt"
	"strings"

	"github.com/dranzd/storebunk-accounting/internal/apperrors"
)

// Side indicates whether a journal line is a debit or a credit.
type Side string

const (
	Debit  Side = "debit"
	Credit Side = "credit"
)

// ParseSide accepts "debit"/"credit" in any case.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case Debit:
		return Debit, nil
	case Credit:
		return Credit, nil
	default:
		return "", fmt.Errorf("%w: invalid side %q", apperrors.ErrValidation, s)
	}
}

// Opposite maps Debit to Credit and Credit to Debit.
func (s Side) Opposite() Side {
	switch s {
	case Debit:
		return Credit
	case Credit:
		return Debit
	default:
		return s
	}
}

func (s Side) IsValid() bool {
	return s == Debit || s == Credit
}

// Line is a single posting within a journal entry. It is immutable and owned by its Entry.
type Line struct {
	accountID string
	amount    Money
	side      Side
}

// NewLine validates and builds a journal line.
func NewLine(accountID string, amount Money, side Side) (Line, error) {
	l := Line{accountID: strings.TrimSpace(accountID), amount: amount, side: side}
	if err := l.validate(); err != nil {
		return Line{}, err
	}
	return l, nil
}

// LineFromData rebuilds a line from its serialized form, re-running every check.
func LineFromData(data LineData) (Line, error) {
	amount, err := ParseMoney(data.Amount)
	if err != nil {
		return Line{}, err
	}
	side, err := ParseSide(data.Side)
	if err != nil {
		return Line{}, err
	}
	return NewLine(data.AccountID, amount, side)
}

func (l Line) validate() error {
	if l.accountID == "" {
		return fmt.Errorf("%w: account ID cannot be empty", apperrors.ErrValidation)
	}
	if !l.amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive for account %s, got %s", apperrors.ErrValidation, l.accountID, l.amount)
	}
	if !l.side.IsValid() {
		return fmt.Errorf("%w: invalid side %q for account %s", apperrors.ErrValidation, l.side, l.accountID)
	}
	return nil
}

func (l Line) AccountID() string { return l.accountID }
func (l Line) Amount() Money      { return l.amount }
func (l Line) Side() Side         { return l.side }

// Equal compares lines structurally.
func (l Line) Equal(o Line) bool {
	return l.accountID == o.accountID && l.amount.Equal(o.amount) && l.side == o.side
}

// Data returns the serialized form carried by events.
func (l Line) Data() LineData {
	return LineData{AccountID: l.accountID, Amount: l.amount.String(), Side: string(l.side)}
}

func (l Line) String() string {
	return fmt.Sprintf("%s %s %s", strings.ToUpper(string(l.side)), l.accountID, l.amount)
}

// LineData is the untrusted wire form of a line.
type LineData struct {
	AccountID string `json:"accountId"`
	Amount    string `json:"amount"`
	Side      string `json:"side"`
}
