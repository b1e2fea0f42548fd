package httpapi

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"alshuail-fund/internal/service"
)

// MembersExportHeader holds the localized column labels, in column order.
var MembersExportHeader = []string{
	"رقم العضوية",
	"الاسم",
	"الفخذ",
	"الجوال",
	"الرصيد",
	"المطلوب للحد الأدنى",
	"نسبة الإكمال %",
	"التصنيف",
	"مستوى التنبيه",
	"الحالة",
}

var categoryLabels = map[string]string{
	"excellent":    "ممتاز",
	"compliant":    "ملتزم",
	"nonCompliant": "غير ملتزم",
	"critical":     "حرج",
}

func exportRowValues(m service.EnrichedMember) []any {
	status := "نشط"
	if m.IsSuspended {
		status = "موقوف"
	}
	return []any{
		m.MembershipNumber,
		m.FullName,
		m.TribalSection,
		m.Phone,
		m.Compliance.Balance,
		m.Compliance.Shortfall,
		m.Compliance.PercentageComplete,
		categoryLabels[m.Compliance.Category],
		m.Compliance.AlertLevel,
		status,
	}
}

// ExportRows renders the export as JSON objects keyed by the localized
// column labels, for the format=json variant.
func ExportRows(members []service.EnrichedMember) []map[string]any {
	rows := make([]map[string]any, 0, len(members))
	for _, m := range members {
		row := make(map[string]any, len(MembersExportHeader))
		for col, v := range exportRowValues(m) {
			row[MembersExportHeader[col]] = v
		}
		rows = append(rows, row)
	}
	return rows
}

// GenerateMembersExport renders the full filtered member set plus a trailing
// summary row.
func GenerateMembersExport(members []service.EnrichedMember, stats service.Statistics) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo needs the file open; close only on error paths

	sheetName := "الأعضاء"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range MembersExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	widths := []float64{18, 30, 15, 18, 12, 18, 15, 12, 16, 12}
	for i := range MembersExportHeader {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for rowIdx, m := range members {
		for col, v := range exportRowValues(m) {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	// trailing aggregate summary row
	summaryRow := len(members) + 3
	summary := []any{
		"الإجمالي",
		fmt.Sprintf("%d عضو", stats.Total),
		"",
		"",
		stats.TotalBalance,
		stats.TotalShortfall,
		fmt.Sprintf("نسبة الالتزام %.1f%%", stats.ComplianceRate),
		fmt.Sprintf("ملتزم: %d", stats.Categories["compliant"]+stats.Categories["excellent"]),
		fmt.Sprintf("حرج: %d", stats.Categories["critical"]),
		"",
	}
	for col, v := range summary {
		cell, err := excelize.CoordinatesToCellName(col+1, summaryRow)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set summary cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set summary style: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf.Bytes(), nil
}
