package sales

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/wolfman30/nectar-lead-tracker/internal/leads"
	"github.com/wolfman30/nectar-lead-tracker/internal/money"
	"github.com/wolfman30/nectar-lead-tracker/internal/tenancy"
	"github.com/wolfman30/nectar-lead-tracker/pkg/logging"
)

// SummarySheet is the worksheet added to the lead export.
const SummarySheet = "Sales"

// LeadSource supplies the full lead collection and the viewer clock.
type LeadSource interface {
	All(ctx context.Context, userID string) ([]*leads.Lead, error)
	Now() time.Time
	Location() *time.Location
}

// Handler serves sales analytics.
type Handler struct {
	source   LeadSource
	currency string
	logger   *logging.Logger
}

func NewHandler(source LeadSource, currency string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{source: source, currency: currency, logger: logger}
}

type summaryResponse struct {
	Summary
	Currency string `json:"currency"`
}

// GetSummary handles GET /sales/summary.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := tenancy.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}
	all, err := h.source.All(r.Context(), userID)
	if err != nil {
		h.fail(w, err)
		return
	}
	summary := Summarize(all, h.source.Now(), h.source.Location())
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(summaryResponse{Summary: summary, Currency: h.currency})
}

// ExportXLSX handles GET /leads/export.xlsx: the lead sheet plus a sales summary sheet.
func (h *Handler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	userID, ok := tenancy.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing user context", http.StatusUnauthorized)
		return
	}
	all, err := h.source.All(r.Context(), userID)
	if err != nil {
		h.fail(w, err)
		return
	}
	loc := h.source.Location()
	f, err := leads.BuildWorkbook(all, loc)
	if err != nil {
		h.logger.Error("failed to build workbook", "error", err)
		http.Error(w, "failed to build workbook", http.StatusInternalServerError)
		return
	}
	defer f.Close()
	if err := AddSummarySheet(f, Summarize(all, h.source.Now(), loc), h.currency); err != nil {
		h.logger.Error("failed to add summary sheet", "error", err)
		http.Error(w, "failed to build workbook", http.StatusInternalServerError)
		return
	}

	name := leads.ExportFilename(h.source.Now(), loc, "xlsx")
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := f.Write(w); err != nil {
		h.logger.Error("failed to write workbook", "error", err)
	}
}

// AddSummarySheet appends the headline figures, product distribution and
// daily series to f.
func AddSummarySheet(f *excelize.File, s Summary, currency string) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("sales: new sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("sales: style: %w", err)
	}

	rows := [][]any{
		{"Total Revenue", money.Display(currency, s.TotalRevenue)},
		{"Revenue (7 days)", money.Display(currency, s.WeeklyRevenue)},
		{"Sales", s.SalesCount},
		{"Average Order Value", money.Display(currency, s.AverageOrderValue)},
		{},
		{"Product", "Sales"},
	}
	for _, p := range s.TopProducts {
		rows = append(rows, []any{p.Name, p.Count})
	}
	rows = append(rows, []any{}, []any{"Date", "Revenue"})
	for _, d := range s.Daily {
		rows = append(rows, []any{d.Date, d.Revenue.InexactFloat64()})
	}

	for i, row := range rows {
		for j, v := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			f.SetCellValue(SummarySheet, cell, v)
			if j == 0 {
				f.SetCellStyle(SummarySheet, cell, cell, bold)
			}
		}
	}
	f.SetColWidth(SummarySheet, "A", "A", 24)
	f.SetColWidth(SummarySheet, "B", "B", 16)
	return nil
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	h.logger.Error("failed to load leads for sales", "error", err)
	switch {
	case leads.IsTimeout(err):
		http.Error(w, "lead store timed out", http.StatusGatewayTimeout)
	case errors.Is(err, leads.ErrLeadNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case leads.IsPersistence(err):
		http.Error(w, "lead store unavailable", http.StatusBadGateway)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
