package sheets

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/lirio/internal/config"
)

// RowAppender appends one row at the end of a spreadsheet range.
type RowAppender interface {
	AppendRow(ctx context.Context, sheetRange string, row []any) error
}

// GoogleSheet appends audit rows to a single spreadsheet.
type GoogleSheet struct {
	values        *sheetsapi.SpreadsheetsValuesService
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheet opens the spreadsheet named in cfg. Credentials come from
// cfg.CredentialsPath, or from application default credentials when unset.
func NewGoogleSheet(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheet, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("spreadsheet id is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []option.ClientOption{option.WithScopes(sheetsapi.SpreadsheetsScope)}
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}
	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}

	return &GoogleSheet{
		values:        svc.Spreadsheets.Values,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendRow writes row below the last filled row of sheetRange. Values are
// stored raw so ids and dates are not reinterpreted by the sheet.
func (g *GoogleSheet) AppendRow(ctx context.Context, sheetRange string, row []any) error {
	body := &sheetsapi.ValueRange{
		MajorDimension: "ROWS",
		Values:         [][]any{row},
	}
	resp, err := g.values.Append(g.spreadsheetID, sheetRange, body).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", sheetRange, err)
	}

	if resp.Updates != nil {
		g.logger.Debug("audit row appended",
			zap.String("range", resp.Updates.UpdatedRange),
			zap.Int64("cells", resp.Updates.UpdatedCells),
		)
	}
	return nil
}
