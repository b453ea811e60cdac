// Package export renders transaction listings as spreadsheet workbooks.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nemopss/carbon-tracker/backend/emission"
	"github.com/nemopss/carbon-tracker/backend/models"
)

const Sheet = "Transactions"

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headers = []string{
	"Date",
	"Description",
	"Merchant",
	"Category",
	"Amount",
	"Currency",
	"CO2 (kg)",
	"Emission Factor",
	"Payment Type",
}

// TransactionsXLSX writes one row per transaction, in the given order, and
// returns the workbook bytes. Dates are rendered in loc.
func TransactionsXLSX(txs []models.Transaction, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.UTC
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", Sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
		if err := f.SetCellValue(Sheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for i, t := range txs {
		if err := writeRow(f, i+2, t, loc); err != nil {
			return nil, err
		}
	}

	for _, w := range []struct {
		from, to string
		width    float64
	}{
		{"A", "A", 18},
		{"B", "C", 28},
		{"D", "D", 24},
		{"E", "I", 14},
	} {
		if err := f.SetColWidth(Sheet, w.from, w.to, w.width); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, row int, t models.Transaction, loc *time.Location) error {
	values := map[int]any{
		1: t.CreatedAt.In(loc).Format("2006-01-02 15:04"),
		2: t.Description,
		3: t.MerchantName(),
		6: t.Currency,
	}
	if t.Category != nil {
		values[4] = emission.DisplayNameOf(*t.Category)
	}
	if t.Amount != nil {
		values[5] = *t.Amount
	}
	if t.CarbonFootprint != nil {
		values[7] = *t.CarbonFootprint
	}
	if t.EmissionFactor != nil {
		values[8] = *t.EmissionFactor
	}
	if t.PaymentType != nil {
		values[9] = t.PaymentType.DisplayName()
	}

	for col := 1; col <= len(headers); col++ {
		v, ok := values[col]
		if !ok {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		if err := f.SetCellValue(Sheet, cell, v); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
	}
	return nil
}
