package sheets

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/lirio/internal/domain/models"
)

type memorySheet struct {
	rows map[string][][]any
}

func (m *memorySheet) AppendRow(_ context.Context, sheetRange string, row []any) error {
	if m.rows == nil {
		m.rows = make(map[string][][]any)
	}
	m.rows[sheetRange] = append(m.rows[sheetRange], row)
	return nil
}

func TestAuditMirrorRows(t *testing.T) {
	ctx := context.Background()
	sheet := &memorySheet{}
	mirror := NewAuditMirror(sheet)
	created := time.Date(2025, 3, 2, 9, 30, 0, 0, time.UTC)
	pen := models.AnimalPen{ID: "p1", Type: "Porcos", Name: "Pocilga Principal"}

	require.NoError(t, mirror.RecordTransaction(ctx, models.AnimalTransaction{
		ID: "t1", PenID: "p1", TransactionType: models.TransactionSale, Quantity: 2,
		Notes: "Venda registrado", CreatedAt: created, CreatedBy: "Elton",
	}, pen))
	require.NoError(t, mirror.RecordEggs(ctx, models.EggProduction{
		ID: "e1", PenID: "p1", Quantity: 12, Date: "2025-03-02", CreatedAt: created, CreatedBy: "Elton",
	}, pen))
	require.NoError(t, mirror.RecordVegetables(ctx, models.VegetableProduction{
		ID: "v1", VegetableType: "Couve", WeightKg: 3, BasePrice: 40, Date: "2025-03-02", CreatedAt: created, CreatedBy: "Ilda",
	}))

	txRows := sheet.rows[TransactionsRange]
	require.Len(t, txRows, 1)
	assert.Equal(t, []any{"2025-03-02T09:30:00Z", "t1", "Porcos", "Pocilga Principal", "sale", 2, "Venda registrado", "Elton"}, txRows[0])

	eggRows := sheet.rows[EggsRange]
	require.Len(t, eggRows, 1)
	assert.Equal(t, 12, eggRows[0][5])

	vegRows := sheet.rows[VegetablesRange]
	require.Len(t, vegRows, 1)
	assert.Equal(t, 120.0, vegRows[0][6])
}
