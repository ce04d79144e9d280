package utils

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/kapehan/kiosk-pos-api/models"
	"github.com/shopspring/decimal"
)

// InventoryCSVHeader is the fixed column order of the inventory
// interchange format. Fields are double-quote-escaped with "" for
// embedded quotes, which is what encoding/csv produces.
var InventoryCSVHeader = []string{
	"SKU", "Name", "Category", "Unit", "Stock",
	"Reorder Threshold", "Cost Price", "Selling Price", "Notes",
}

// WriteInventoryCSV writes the header row followed by one row per item.
func WriteInventoryCSV(w io.Writer, items []models.InventoryItem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(InventoryCSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, item := range items {
		record := []string{
			item.SKU,
			item.Name,
			item.Category,
			string(item.Unit),
			item.Stock.String(),
			item.ReorderThreshold.String(),
			optionalDecimalString(item.CostPrice),
			optionalDecimalString(item.SellingPrice),
			optionalString(item.Notes),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ParseInventoryCSV reads inventory rows best-effort: a row with fewer
// than 9 fields is skipped and counted, never fatal to the batch.
// Numeric fields that fail to parse fall back to 0.
func ParseInventoryCSV(r io.Reader) ([]models.InventoryItem, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // rows are validated by hand below

	var items []models.InventoryItem
	skipped := 0
	first := true

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A row the reader itself rejects is treated like a short row.
			skipped++
			continue
		}

		// Tolerate a leading header row.
		if first {
			first = false
			if len(record) > 0 && record[0] == "SKU" {
				continue
			}
		}

		if len(record) < 9 {
			skipped++
			continue
		}
		if record[0] == "" || record[1] == "" {
			skipped++
			continue
		}

		unit := models.Unit(record[3])
		if !unit.Valid() {
			unit = models.UnitPcs
		}

		item := models.InventoryItem{
			SKU:              record[0],
			Name:             record[1],
			Category:         record[2],
			Unit:             unit,
			Stock:            parseDecimal(record[4]),
			ReorderThreshold: parseDecimal(record[5]),
			CostPrice:        parseOptionalDecimal(record[6]),
			SellingPrice:     parseOptionalDecimal(record[7]),
		}
		if record[8] != "" {
			notes := record[8]
			item.Notes = &notes
		}
		items = append(items, item)
	}

	return items, skipped, nil
}

// parseDecimal parses a numeric field, falling back to 0 on failure.
func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// parseOptionalDecimal maps an empty field to nil and a malformed one to 0.
func parseOptionalDecimal(s string) *decimal.Decimal {
	if s == "" {
		return nil
	}
	d := parseDecimal(s)
	return &d
}

func optionalDecimalString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func optionalString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
