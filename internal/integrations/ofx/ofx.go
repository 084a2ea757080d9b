// Package ofx reads bank statements in OFX 2.x (XML) format.
package ofx

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/Dan9191/finance-service/internal/models"
)

// Statement is the parsed content of an OFX document.
type Statement struct {
	Currency string
	Lines    []Line
}

// Line is a single STMTTRN entry.
type Line struct {
	FITID  string
	Kind   string // TRNTYPE as sent by the bank, e.g. DEBIT
	Posted models.Date
	Amount decimal.Decimal // signed; negative is money out
	Name   string
	Memo   string
}

// Type maps the amount sign to a transaction type.
func (l Line) Type() models.TransactionType {
	if l.Amount.IsNegative() {
		return models.TypeExpense
	}
	return models.TypeIncome
}

// fallbackDescription names lines that carry no NAME, MEMO or TRNTYPE.
const fallbackDescription = "Statement entry"

// Description prefers the payee name over the memo. It is never empty.
func (l Line) Description() string {
	desc := l.Name
	if desc == "" {
		desc = l.Memo
	}
	if desc == "" {
		desc = l.Kind
	}
	if desc == "" {
		desc = fallbackDescription
	}
	if r := []rune(desc); len(r) > 255 {
		desc = string(r[:255])
	}
	return desc
}

// Parse reads a bank or credit card statement.
func Parse(r io.Reader) (*Statement, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("failed to parse OFX: %w", err)
	}
	if doc.FindElement("//OFX") == nil {
		return nil, fmt.Errorf("failed to parse OFX: missing OFX root element")
	}

	st := &Statement{}
	if cur := doc.FindElement("//CURDEF"); cur != nil {
		st.Currency = strings.TrimSpace(cur.Text())
	}

	for i, el := range doc.FindElements("//BANKTRANLIST/STMTTRN") {
		line, err := parseLine(el)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i+1, err)
		}
		st.Lines = append(st.Lines, line)
	}
	return st, nil
}

func parseLine(el *etree.Element) (Line, error) {
	line := Line{
		FITID: childText(el, "FITID"),
		Kind:  childText(el, "TRNTYPE"),
		Name:  childText(el, "NAME"),
		Memo:  childText(el, "MEMO"),
	}
	if line.FITID == "" {
		return line, fmt.Errorf("missing FITID")
	}

	posted, err := parseOFXDate(childText(el, "DTPOSTED"))
	if err != nil {
		return line, err
	}
	line.Posted = posted

	amount, err := decimal.NewFromString(strings.ReplaceAll(childText(el, "TRNAMT"), ",", "."))
	if err != nil {
		return line, fmt.Errorf("invalid TRNAMT: %w", err)
	}
	if amount.IsZero() {
		return line, fmt.Errorf("TRNAMT must not be zero")
	}
	// Amounts are booked in cents.
	if amount.Round(2).IsZero() {
		return line, fmt.Errorf("TRNAMT %s is below one cent", amount)
	}
	line.Amount = amount
	return line, nil
}

func childText(el *etree.Element, tag string) string {
	child := el.SelectElement(tag)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Text())
}

// parseOFXDate reads the leading YYYYMMDD of an OFX datetime such as
// 20240105120000[-3:BRT].
func parseOFXDate(s string) (models.Date, error) {
	if len(s) < 8 {
		return models.Date{}, fmt.Errorf("invalid DTPOSTED %q", s)
	}
	d, err := models.ParseDate(s[0:4] + "-" + s[4:6] + "-" + s[6:8])
	if err != nil {
		return models.Date{}, fmt.Errorf("invalid DTPOSTED %q", s)
	}
	return d, nil
}
