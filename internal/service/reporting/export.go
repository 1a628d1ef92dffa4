package reporting

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/lirio/internal/service/stats"
)

// Workbook sheet names.
const (
	SheetSummary      = "Summary"
	SheetTransactions = "Transactions"
	SheetEggs         = "Eggs"
	SheetVegetables   = "Vegetables"
)

// ExportWorkbook writes an xlsx workbook of the records in [start, end]:
// a summary sheet plus one sheet per log.
func (s *Service) ExportWorkbook(ctx context.Context, w io.Writer, start, end string) error {
	start, end, err := s.ResolveRange(start, end)
	if err != nil {
		return err
	}
	snap, err := s.load(ctx, 0)
	if err != nil {
		return err
	}

	txs := stats.JoinTransactions(stats.FilterTransactions(snap.txs, start, end), snap.pens)
	eggs := stats.JoinEggs(stats.FilterEggs(snap.eggs, start, end), snap.pens)
	vegs := stats.FilterVegetables(snap.vegs, start, end)
	summary := stats.Statistics(snap.pens, snap.txs, snap.eggs, snap.vegs, start, end)

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	for _, name := range []string{SheetTransactions, SheetEggs, SheetVegetables} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	summaryRows := [][]interface{}{
		{"Metric", "Value"},
		{"Start", start},
		{"End", end},
		{"Births", summary.Totals.Births},
		{"Purchases", summary.Totals.Purchases},
		{"Sales", summary.Totals.Sales},
		{"Deaths", summary.Totals.Deaths},
		{"Eggs collected", summary.TotalEggs},
		{"Vegetables value", summary.TotalVegetables},
		{"Sales revenue", summary.TotalSales},
		{"Animals", stats.AnimalCount(snap.pens)},
		{"Revenue forecast", stats.RevenueForecast(snap.pens)},
	}

	txRows := [][]interface{}{{"Created at", "Pen type", "Pen", "Type", "Quantity", "Notes", "By"}}
	for _, tx := range txs {
		txRows = append(txRows, []interface{}{
			tx.CreatedAt.UTC().Format(time.RFC3339), tx.PenType, tx.PenName,
			string(tx.TransactionType), tx.Quantity, tx.Notes, tx.CreatedBy,
		})
	}

	eggRows := [][]interface{}{{"Date", "Pen type", "Quantity", "By"}}
	for _, e := range eggs {
		eggRows = append(eggRows, []interface{}{e.Date, e.PenType, e.Quantity, e.CreatedBy})
	}

	vegRows := [][]interface{}{{"Date", "Type", "Weight (kg)", "Price per kg", "Value", "By"}}
	for _, v := range vegs {
		vegRows = append(vegRows, []interface{}{v.Date, v.VegetableType, v.WeightKg, v.BasePrice, v.Value(), v.CreatedBy})
	}

	for _, sheet := range []struct {
		name string
		rows [][]interface{}
	}{
		{SheetSummary, summaryRows},
		{SheetTransactions, txRows},
		{SheetEggs, eggRows},
		{SheetVegetables, vegRows},
	} {
		if err := writeRows(f, sheet.name, sheet.rows); err != nil {
			return err
		}
		if err := f.SetRowStyle(sheet.name, 1, 1, header); err != nil {
			return fmt.Errorf("style %s header: %w", sheet.name, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
