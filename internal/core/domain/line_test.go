package domain

import (
	"testing"

	"github.com/dranzd/storebunk-accounting/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSideOpposite(t *testing.T) {
	assert.Equal(t, Credit, Debit.Opposite())
	assert.Equal(t, Debit, Credit.Opposite())
	assert.Equal(t, Debit, Debit.Opposite().Opposite())
}

func TestParseSide(t *testing.T) {
	s, err := ParseSide(" DEBIT ")
	require.NoError(t, err)
	assert.Equal(t, Debit, s)

	s, err = ParseSide("credit")
	require.NoError(t, err)
	assert.Equal(t, Credit, s)

	_, err = ParseSide("sideways")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestNewLine(t *testing.T) {
	l, err := NewLine("  1000 ", MoneyFromCents(100), Debit)
	require.NoError(t, err)
	assert.Equal(t, "1000", l.AccountID())
	assert.Equal(t, MoneyFromCents(100), l.Amount())
	assert.Equal(t, Debit, l.Side())

	tests := []struct {
		name    string
		account string
		amount  Money
		side    Side
	}{
		{"empty account", " ", MoneyFromCents(100), Debit},
		{"zero amount", "1000", ZeroMoney, Debit},
		{"negative amount", "1000", MoneyFromCents(-1), Credit},
		{"bad side", "1000", MoneyFromCents(100), Side("both")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLine(tt.account, tt.amount, tt.side)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestLineFromDataRejectsThreeDecimals(t *testing.T) {
	_, err := LineFromData(LineData{AccountID: "1000", Amount: "1.005", Side: "debit"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestLineEqualityAndData(t *testing.T) {
	a, err := NewLine("1000", MoneyFromCents(2500), Credit)
	require.NoError(t, err)
	b, err := LineFromData(a.Data())
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, LineData{AccountID: "1000", Amount: "25.00", Side: "credit"}, a.Data())
	assert.Equal(t, "CREDIT 1000 25.00", a.String())

	c, err := NewLine("1000", MoneyFromCents(2500), Debit)
	require.NoError(t, err)
	assert.False(t, a.Equal(c))
}
