package models

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrSourceMissing = errors.New("transaction must reference an account or a credit card")
	ErrSourceBoth    = errors.New("transaction cannot reference both an account and a credit card")
)

// FundingSource is where a transaction's money moves: exactly one account or
// exactly one credit card.
type FundingSource interface {
	// Columns returns the (account_id, credit_card_id) pair, exactly one non-nil.
	Columns() (accountID, cardID *uuid.UUID)
}

// AccountSource funds a transaction from an account.
type AccountSource struct {
	AccountID uuid.UUID
}

func (s AccountSource) Columns() (*uuid.UUID, *uuid.UUID) {
	id := s.AccountID
	return &id, nil
}

// CardSource funds a transaction with a credit card.
type CardSource struct {
	CardID uuid.UUID
}

func (s CardSource) Columns() (*uuid.UUID, *uuid.UUID) {
	id := s.CardID
	return nil, &id
}

// NewFundingSource builds a source from the nullable column pair.
func NewFundingSource(accountID, cardID *uuid.UUID) (FundingSource, error) {
	switch {
	case accountID != nil && cardID != nil:
		return nil, ErrSourceBoth
	case accountID != nil:
		return AccountSource{AccountID: *accountID}, nil
	case cardID != nil:
		return CardSource{CardID: *cardID}, nil
	default:
		return nil, ErrSourceMissing
	}
}

// SourceAccount returns the account id when s is an account source.
func SourceAccount(s FundingSource) (uuid.UUID, bool) {
	if a, ok := s.(AccountSource); ok {
		return a.AccountID, true
	}
	return uuid.Nil, false
}

// SourceCard returns the card id when s is a card source.
func SourceCard(s FundingSource) (uuid.UUID, bool) {
	if c, ok := s.(CardSource); ok {
		return c.CardID, true
	}
	return uuid.Nil, false
}
