package email

import (
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/finance-service/internal/config"
	"github.com/Dan9191/finance-service/internal/models"
)

type plainFormatter struct{}

func (plainFormatter) Currency(d decimal.Decimal) string { return "$" + d.StringFixed(2) }
func (plainFormatter) Percent(d decimal.Decimal) string  { return d.StringFixed(1) + "%" }

func testDigest() models.PeriodDigest {
	return models.PeriodDigest{
		Subscriber: models.SummarySubscriber{UserID: uuid.New(), Email: "ana@example.com", Name: "Ana"},
		Period:     models.NewWindow(models.NewDate(2024, 1, 1), models.NewDate(2024, 1, 7)),
		Totals: models.TypeTotals{
			Income:  decimal.NewFromInt(1000),
			Expense: decimal.NewFromInt(400),
		},
		TransactionCount: 5,
		TopExpenses: []models.CategoryBreakdown{
			{CategoryName: "Food", Total: decimal.NewFromInt(300), Percentage: decimal.NewFromInt(75)},
		},
	}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestSendDigest(t *testing.T) {
	s := NewSender(&config.Config{SenderEmail: "noreply@example.com"}, quietLogger())
	var sent *email.Email
	s.send = func(e *email.Email) error {
		sent = e
		return nil
	}

	require.NoError(t, s.SendDigest(testDigest(), "Weekly", plainFormatter{}))
	require.NotNil(t, sent)
	assert.Equal(t, []string{"ana@example.com"}, sent.To)
	assert.Equal(t, "Weekly summary: 2024-01-01 to 2024-01-07", sent.Subject)

	body := string(sent.Text)
	assert.Contains(t, body, "Hello Ana")
	assert.Contains(t, body, "Balance:      $600.00")
	assert.Contains(t, body, "Food: $300.00 (75.0%)")
}

func TestSendDigestError(t *testing.T) {
	s := NewSender(&config.Config{}, quietLogger())
	s.send = func(*email.Email) error { return errors.New("smtp down") }

	err := s.SendDigest(testDigest(), "Daily", plainFormatter{})
	assert.ErrorContains(t, err, "smtp down")
}
