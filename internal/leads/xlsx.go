package leads

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// LeadsSheet is the worksheet name used by BuildWorkbook.
const LeadsSheet = "Leads"

var xlsxHeader = append(append([]string{}, CSVHeader...), "Order Value", "Sale Date", "Honey Types")

// BuildWorkbook renders the leads into a single-sheet workbook. Callers may add
// further sheets before writing it out.
func BuildWorkbook(leads []*Lead, loc *time.Location) (*excelize.File, error) {
	if loc == nil {
		loc = time.UTC
	}
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", LeadsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("leads: rename sheet: %w", err)
	}

	boldStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FCE8B2"}},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("leads: header style: %w", err)
	}
	for i, h := range xlsxHeader {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := fmt.Sprintf("%s1", col)
		f.SetCellValue(LeadsSheet, cell, h)
		f.SetCellStyle(LeadsSheet, cell, cell, boldStyle)
	}

	for i, lead := range leads {
		row := i + 2
		next := ""
		if lead.NextFollowUp != nil {
			next = lead.NextFollowUp.In(loc).Format("2006-01-02 15:04")
		}
		values := []any{
			lead.Name,
			lead.Phone,
			lead.Email,
			lead.Status,
			string(lead.Priority),
			lead.TeamMember,
			lead.Notes,
			next,
			lead.OrderValue,
			lead.SaleDate,
			strings.Join(lead.Products(), ", "),
		}
		for j, v := range values {
			col, _ := excelize.ColumnNumberToName(j + 1)
			f.SetCellValue(LeadsSheet, fmt.Sprintf("%s%d", col, row), v)
		}
	}

	widths := []float64{22, 16, 24, 12, 10, 14, 40, 18, 12, 12, 30}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(LeadsSheet, col, col, w)
	}
	return f, nil
}
