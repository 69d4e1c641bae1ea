package core

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"1.234,56", 123456, true},
		{"R$ 1.500,00", 150000, true},
		{"0.01", 1, true},
		{"1,005", 101, true}, // half-up rounding
		{"0.125", 13, true},
		{"1234.567", 123457, true},
		{"1.234", 0, false}, // thousands or decimal, can't tell
		{"12.345", 0, false},
		{"1.234.567", 0, false},
		{"12,345", 1235, true},
		{" 2.50 ", 250, true},
		{"0", 0, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"R$", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			require.NoError(t, err, tc.in)
			require.Equal(t, tc.out, got.Cents, tc.in)
		} else {
			require.ErrorIs(t, err, ErrInvalidAmount, tc.in)
		}
	}
}

func TestParseOptionalMoney(t *testing.T) {
	m, err := ParseOptionalMoney("  ")
	require.NoError(t, err)
	require.Nil(t, m)

	m, err = ParseOptionalMoney("150,5")
	require.NoError(t, err)
	require.Equal(t, int64(15050), m.Cents)

	_, err = ParseOptionalMoney("x")
	require.Error(t, err)
}

func TestMoneyValidate(t *testing.T) {
	require.NoError(t, Money{Cents: 1}.Validate())
	require.ErrorIs(t, Money{Cents: 0}.Validate(), ErrInvalidAmount)
}

func TestMoneyJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		Amount Money  `json:"amount"`
		Value  *Money `json:"value"`
	}{Amount: Money{Cents: 123456}})
	require.NoError(t, err)
	require.JSONEq(t, `{"amount":1234.56,"value":null}`, string(out))
}

func TestCentsOrZero(t *testing.T) {
	require.Equal(t, int64(0), CentsOrZero(nil))
	require.Equal(t, int64(42), CentsOrZero(&Money{Cents: 42}))
}
