package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/finance-service/internal/config"
	"github.com/Dan9191/finance-service/internal/models"
)

// Formatter renders amounts for humans.
type Formatter interface {
	Currency(decimal.Decimal) string
	Percent(decimal.Decimal) string
}

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(*email.Email) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	s := &Sender{cfg: cfg, logger: logger}
	s.send = s.smtpSend
	return s
}

func (s *Sender) smtpSend(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	return e.Send(addr, auth)
}

// SendDigest mails a period summary. label names the period, e.g. "Daily".
func (s *Sender) SendDigest(d models.PeriodDigest, label string, f Formatter) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{d.Subscriber.Email}
	e.Subject = fmt.Sprintf("%s summary: %s to %s", label, d.Period.Start, d.Period.End)
	e.Text = []byte(digestBody(d, f))

	if err := s.send(e); err != nil {
		s.logger.WithFields(logrus.Fields{
			"to":     d.Subscriber.Email,
			"period": label,
		}).Errorf("Failed to send digest: %v", err)
		return fmt.Errorf("failed to send digest: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", d.Subscriber.Email, e.Subject)
	return nil
}

func digestBody(d models.PeriodDigest, f Formatter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", d.Subscriber.Name)
	fmt.Fprintf(&b, "Here is your summary from %s to %s.\n\n", d.Period.Start, d.Period.End)
	fmt.Fprintf(&b, "Income:       %s\n", f.Currency(d.Totals.Income))
	fmt.Fprintf(&b, "Expenses:     %s\n", f.Currency(d.Totals.Expense))
	fmt.Fprintf(&b, "Balance:      %s\n", f.Currency(d.Totals.Net()))
	fmt.Fprintf(&b, "Transactions: %d\n", d.TransactionCount)

	if len(d.TopExpenses) > 0 {
		b.WriteString("\nWhere the money went:\n")
		for _, c := range d.TopExpenses {
			fmt.Fprintf(&b, "  - %s: %s (%s)\n", c.CategoryName, f.Currency(c.Total), f.Percent(c.Percentage))
		}
	}
	b.WriteString("\nBest regards,\nFinance Service")
	return b.String()
}
