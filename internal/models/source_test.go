package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFundingSource(t *testing.T) {
	accountID := uuid.New()
	cardID := uuid.New()

	source, err := NewFundingSource(&accountID, nil)
	require.NoError(t, err)
	got, ok := SourceAccount(source)
	assert.True(t, ok)
	assert.Equal(t, accountID, got)

	source, err = NewFundingSource(nil, &cardID)
	require.NoError(t, err)
	got, ok = SourceCard(source)
	assert.True(t, ok)
	assert.Equal(t, cardID, got)
	_, ok = SourceAccount(source)
	assert.False(t, ok)

	_, err = NewFundingSource(&accountID, &cardID)
	assert.ErrorIs(t, err, ErrSourceBoth)

	_, err = NewFundingSource(nil, nil)
	assert.ErrorIs(t, err, ErrSourceMissing)
}

func TestTransactionJSONCarriesSourceColumns(t *testing.T) {
	cardID := uuid.New()
	tx := Transaction{
		ID:          uuid.New(),
		Source:      CardSource{CardID: cardID},
		Type:        TypeExpense,
		Description: "Mercado",
		Amount:      decimal.RequireFromString("150.00"),
		Date:        NewDate(2024, 1, 15),
		Status:      StatusPending,
	}

	raw, err := json.Marshal(tx)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Nil(t, body["account_id"])
	assert.Equal(t, cardID.String(), body["credit_card_id"])
	assert.Equal(t, "2024-01-15", body["date"])
	assert.Equal(t, "150", body["amount"])
	assert.NotContains(t, body, "external_ref")
}

func TestWindowContains(t *testing.T) {
	w := NewWindow(NewDate(2024, 1, 1), NewDate(2024, 1, 31))
	assert.True(t, w.Contains(NewDate(2024, 1, 1)))
	assert.True(t, w.Contains(NewDate(2024, 1, 31)))
	assert.False(t, w.Contains(NewDate(2024, 2, 1)))

	open := Window{}
	assert.True(t, open.Contains(NewDate(1999, 12, 31)))
}

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-02-29"`), &d))
	assert.Equal(t, "2024-02-29", d.String())
	assert.Equal(t, NewDate(2024, 3, 1), d.AddDays(1))

	assert.Error(t, json.Unmarshal([]byte(`"29/02/2024"`), &d))
}
