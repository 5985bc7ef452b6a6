// Package export renders ledger data as spreadsheets.
package export

import (
	"fmt"
	"io"

	appinv "github.com/landedcost/backend/internal/application/inventory"
	"github.com/xuri/excelize/v2"
)

const (
	movementSheet = "Movements"
	headerRow     = 4
	dateFormat    = "yyyy-mm-dd hh:mm:ss"
	costFormat    = "#,##0.0000"
)

var movementHeaders = []string{
	"Occurred At", "Type", "Quantity", "Stock Before", "Stock After",
	"Unit Cost (Local)", "Unit Cost (Foreign)",
	"Avg Cost Before (Local)", "Avg Cost After (Local)",
	"Avg Cost Before (Foreign)", "Avg Cost After (Foreign)",
	"Shipment", "Reverses Movement", "Reason",
}

// MovementXLSXExporter writes a product's stock ledger as an .xlsx workbook
type MovementXLSXExporter struct{}

// NewMovementXLSXExporter creates a new MovementXLSXExporter
func NewMovementXLSXExporter() *MovementXLSXExporter {
	return &MovementXLSXExporter{}
}

// ExportMovements writes a product summary block followed by one row per movement
func (e *MovementXLSXExporter) ExportMovements(w io.Writer, product appinv.ProductResponse, movements []appinv.StockMovementResponse) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", movementSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	styles, err := newSheetStyles(f)
	if err != nil {
		return err
	}

	summary := [][]any{
		{"Product", product.SKU, product.Name},
		{"Stock", product.StockQuantity, "Average cost (local)", product.AverageCostLocal.InexactFloat64()},
	}
	for i, row := range summary {
		if err := setRow(f, 1, i+1, row); err != nil {
			return err
		}
	}

	header := make([]any, len(movementHeaders))
	for i, h := range movementHeaders {
		header[i] = h
	}
	if err := setRow(f, 1, headerRow, header); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(movementHeaders))
	if err := f.SetCellStyle(movementSheet, "A1", "A2", styles.header); err != nil {
		return err
	}
	if err := f.SetCellStyle(movementSheet, cell(1, headerRow), cell(len(movementHeaders), headerRow), styles.header); err != nil {
		return err
	}

	for i, m := range movements {
		if err := setRow(f, 1, headerRow+1+i, movementRow(m)); err != nil {
			return err
		}
	}

	if n := len(movements); n > 0 {
		first, last := headerRow+1, headerRow+n
		if err := f.SetCellStyle(movementSheet, cell(1, first), cell(1, last), styles.date); err != nil {
			return err
		}
		if err := f.SetCellStyle(movementSheet, cell(6, first), cell(11, last), styles.cost); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(movementSheet, "A", lastCol, 16); err != nil {
		return err
	}
	if err := f.SetPanes(movementSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      headerRow,
		TopLeftCell: cell(1, headerRow+1),
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func movementRow(m appinv.StockMovementResponse) []any {
	shipment := m.ShipmentRef
	if shipment == "" && m.ShipmentID != nil {
		shipment = m.ShipmentID.String()
	}
	reverses := ""
	if m.ReversesMovementID != nil {
		reverses = m.ReversesMovementID.String()
	}
	return []any{
		m.OccurredAt,
		m.Type,
		m.QuantityDelta,
		m.StockBefore,
		m.StockAfter,
		m.UnitCostLocal.InexactFloat64(),
		m.UnitCostForeign.InexactFloat64(),
		m.AvgCostLocalBefore.InexactFloat64(),
		m.AvgCostLocalAfter.InexactFloat64(),
		m.AvgCostForeignBefore.InexactFloat64(),
		m.AvgCostForeignAfter.InexactFloat64(),
		shipment,
		reverses,
		m.Reason,
	}
}

type sheetStyles struct {
	header int
	date   int
	cost   int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error
	s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return s, fmt.Errorf("failed to create header style: %w", err)
	}
	dateFmt := dateFormat
	s.date, err = f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return s, fmt.Errorf("failed to create date style: %w", err)
	}
	costFmt := costFormat
	s.cost, err = f.NewStyle(&excelize.Style{CustomNumFmt: &costFmt})
	if err != nil {
		return s, fmt.Errorf("failed to create cost style: %w", err)
	}
	return s, nil
}

func setRow(f *excelize.File, col, row int, values []any) error {
	if err := f.SetSheetRow(movementSheet, cell(col, row), &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

var _ appinv.MovementExporter = (*MovementXLSXExporter)(nil)
