package sheets

import (
	"context"
	"time"

	"github.com/mamadbah2/lirio/internal/domain/models"
)

// Sheet ranges of the audit workbook. Each tab starts with a header row the
// owner maintains by hand.
const (
	TransactionsRange = "Transactions!A:H"
	EggsRange         = "Eggs!A:G"
	VegetablesRange   = "Vegetables!A:H"
)

// AuditMirror appends every logged record as a spreadsheet row so the owner
// can audit outside the application.
type AuditMirror struct {
	repo RowAppender
}

// NewAuditMirror wraps a row appender.
func NewAuditMirror(repo RowAppender) *AuditMirror {
	return &AuditMirror{repo: repo}
}

func (m *AuditMirror) RecordTransaction(ctx context.Context, tx models.AnimalTransaction, pen models.AnimalPen) error {
	return m.repo.AppendRow(ctx, TransactionsRange, []any{
		tx.CreatedAt.Format(time.RFC3339),
		tx.ID,
		pen.Type,
		pen.Name,
		string(tx.TransactionType),
		tx.Quantity,
		tx.Notes,
		tx.CreatedBy,
	})
}

func (m *AuditMirror) RecordEggs(ctx context.Context, rec models.EggProduction, pen models.AnimalPen) error {
	return m.repo.AppendRow(ctx, EggsRange, []any{
		rec.CreatedAt.Format(time.RFC3339),
		rec.ID,
		rec.Date,
		pen.Type,
		pen.Name,
		rec.Quantity,
		rec.CreatedBy,
	})
}

func (m *AuditMirror) RecordVegetables(ctx context.Context, rec models.VegetableProduction) error {
	return m.repo.AppendRow(ctx, VegetablesRange, []any{
		rec.CreatedAt.Format(time.RFC3339),
		rec.ID,
		rec.Date,
		rec.VegetableType,
		rec.WeightKg,
		rec.BasePrice,
		rec.Value(),
		rec.CreatedBy,
	})
}
