package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/Dan9191/finance-service/internal/models"
)

const (
	transactionsSheet = "Transactions"
	summarySheet      = "Summary"
)

var transactionHeadings = []string{"Date", "Description", "Type", "Status", "Amount", "Category", "Source"}

// ExportTransactions renders every transaction matching the filter into an
// XLSX workbook with a Transactions and a Summary sheet.
func (s *Service) ExportTransactions(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) (*bytes.Buffer, error) {
	if err := checkWindow(filter.Window, false); err != nil {
		return nil, err
	}
	filter = filter.Unpaged()
	txs, err := s.store.ListTransactions(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	totals, err := s.store.TotalsByType(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", transactionsSheet); err != nil {
		return nil, err
	}
	for i, h := range transactionHeadings {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(transactionsSheet, cell, h)
	}
	for i, t := range txs {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(transactionsSheet, "A"+row, t.Date.String())
		f.SetCellValue(transactionsSheet, "B"+row, t.Description)
		f.SetCellValue(transactionsSheet, "C"+row, string(t.Type))
		f.SetCellValue(transactionsSheet, "D"+row, string(t.Status))
		f.SetCellValue(transactionsSheet, "E"+row, t.Amount.InexactFloat64())
		f.SetCellValue(transactionsSheet, "F"+row, deref(t.CategoryName))
		f.SetCellValue(transactionsSheet, "G"+row, sourceName(t))
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	summary := [][]interface{}{
		{"Start date", windowBound(filter.Window.Start)},
		{"End date", windowBound(filter.Window.End)},
		{"Transactions", len(txs)},
		{"Total income", totals.Income.InexactFloat64()},
		{"Total expense", totals.Expense.InexactFloat64()},
		{"Balance", totals.Net().InexactFloat64()},
	}
	for i, row := range summary {
		n := fmt.Sprint(i + 1)
		f.SetCellValue(summarySheet, "A"+n, row[0])
		f.SetCellValue(summarySheet, "B"+n, row[1])
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logError("ExportTransactions", "writing workbook", userID, err)
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func sourceName(t models.Transaction) string {
	if t.AccountName != nil {
		return *t.AccountName
	}
	return deref(t.CreditCardName)
}

func windowBound(d *models.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}
