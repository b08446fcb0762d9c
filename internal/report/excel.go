// Package report reads and writes the XLSX sheets exchanged with blood banks.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/avadhootsavle/hackispiration-hackathon/internal/domain"
)

// ContentType is the MIME type of every workbook produced here.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	inventorySheet = "Inventory"
	hospitalSheet  = "Hospitals"
)

// InventoryHeader 库存导出表头
var InventoryHeader = []string{
	"ID", "Blood Type", "Units", "City", "Hospital", "Ready In", "Contact", "Status", "Added By", "Created At",
}

// HospitalHeader 医院导入/导出表头
var HospitalHeader = []string{
	"ID", "Name", "City", "Bank Partner", "Ready Types", "Contact", "Email",
}

var inventoryWidths = []float64{42, 10, 8, 14, 24, 14, 24, 12, 28, 26}
var hospitalWidths = []float64{42, 28, 14, 24, 24, 18, 28}

// ExportInventory renders inventory as one sheet, in the given order.
func ExportInventory(records []domain.InventoryRecord) ([]byte, error) {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, []any{
			r.ID, string(r.BloodType), int(r.Units), r.City, r.Hospital,
			r.ReadyIn, r.Contact, r.Status, r.AddedBy, r.CreatedAt,
		})
	}
	return writeSheet(inventorySheet, InventoryHeader, inventoryWidths, rows)
}

// ExportHospitals renders hospitals in the layout ParseHospitals reads.
// With no records it yields an empty import template.
func ExportHospitals(hospitals []domain.HospitalRecord) ([]byte, error) {
	rows := make([][]any, 0, len(hospitals))
	for _, h := range hospitals {
		types := make([]string, 0, len(h.ReadyTypes))
		for _, t := range h.ReadyTypes {
			types = append(types, string(t))
		}
		rows = append(rows, []any{
			h.ID, h.Name, h.City, h.BankPartner, strings.Join(types, ", "), h.Contact, h.Email,
		})
	}
	return writeSheet(hospitalSheet, HospitalHeader, hospitalWidths, rows)
}

func writeSheet(sheet string, header []string, widths []float64, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FDE2E2"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := setRow(f, sheet, 1, toAny(header)); err != nil {
		return nil, err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, row := range rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return nil, err
		}
	}

	// 冻结表头
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// ParseHospitals reads the first sheet of an XLSX workbook. Columns are found
// by header name, case-insensitively; rows without a name are skipped, a
// missing id gets a generated one, and unknown ready types are dropped.
func ParseHospitals(r io.Reader) ([]domain.HospitalRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("Excel file has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	out := []domain.HospitalRecord{}
	if len(rows) < 2 {
		return out, nil
	}

	col := map[string]int{}
	for i, h := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	get := func(row []string, name string) string {
		i, ok := col[strings.ToLower(name)]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	for _, row := range rows[1:] {
		name := get(row, "Name")
		if name == "" {
			continue
		}
		h := domain.HospitalRecord{
			ID:          get(row, "ID"),
			Name:        name,
			City:        get(row, "City"),
			BankPartner: get(row, "Bank Partner"),
			ReadyTypes:  ParseReadyTypes(get(row, "Ready Types")),
			Contact:     get(row, "Contact"),
			Email:       get(row, "Email"),
		}
		if h.ID == "" {
			h.ID = "hosp-" + uuid.NewString()
		}
		out = append(out, h)
	}
	return out, nil
}

// ParseReadyTypes splits "O-, A+ / AB+" style lists; invalid entries are dropped.
func ParseReadyTypes(s string) []domain.BloodType {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '/' || r == ' ' || r == '|'
	})
	out := make([]domain.BloodType, 0, len(fields))
	for _, f := range fields {
		if t, ok := domain.ParseBloodType(f); ok {
			out = append(out, t)
		}
	}
	return out
}

// Filename builds an attachment name such as lifeline-inventory-20240301.xlsx.
func Filename(kind, date string) string {
	return "lifeline-" + kind + "-" + strings.ReplaceAll(date, "-", "") + ".xlsx"
}
