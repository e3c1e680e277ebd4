package leads

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// CSVHeader is the column order shared by export and import.
var CSVHeader = []string{"Name", "Phone", "Email", "Status", "Priority", "Assigned To", "Notes", "Next Follow Up"}

// ExportFilename stamps the export date into a download name.
func ExportFilename(now time.Time, loc *time.Location, ext string) string {
	if loc == nil {
		loc = time.UTC
	}
	return fmt.Sprintf("nectar_leads_%s.%s", now.In(loc).Format(dateLayout), ext)
}

// WriteCSV writes a plain header line followed by one row per lead with every
// cell double-quoted.
func WriteCSV(w io.Writer, leads []*Lead) error {
	if _, err := io.WriteString(w, strings.Join(CSVHeader, ",")+"\n"); err != nil {
		return err
	}
	for _, lead := range leads {
		next := ""
		if lead.NextFollowUp != nil {
			next = lead.NextFollowUp.UTC().Format(time.RFC3339)
		}
		cells := []string{lead.Name, lead.Phone, lead.Email, lead.Status, string(lead.Priority), lead.TeamMember, lead.Notes, next}
		for i, cell := range cells {
			cells[i] = `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
		}
		if _, err := io.WriteString(w, strings.Join(cells, ",")+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// ImportResult summarises a CSV import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ParseCSV reads leads in CSVHeader order, skipping the first row. Rows with
// fewer than two columns or a blank name are counted as skipped. Platform and
// lead type are always Call and B2C.
func (s *Service) ParseCSV(r io.Reader) ([]*Lead, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var (
		out     []*Lead
		skipped int
		first   = true
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, skipped, &ValidationError{Field: "csv", Err: err}
		}
		if first {
			first = false
			continue
		}
		if len(record) < 2 || strings.TrimSpace(record[0]) == "" {
			skipped++
			continue
		}
		out = append(out, s.leadFromRecord(record))
	}
	return out, skipped, nil
}

func (s *Service) leadFromRecord(record []string) *Lead {
	raw := func(idx int) string {
		if idx < len(record) {
			return record[idx]
		}
		return ""
	}
	col := func(idx int) string { return strings.TrimSpace(raw(idx)) }
	lead := &Lead{
		Name:       col(0),
		Phone:      col(1),
		Email:      col(2),
		Status:     col(3),
		Priority:   Priority(col(4)),
		TeamMember: col(5),
		Notes:      raw(6),
		Platform:   PlatformCall,
		LeadType:   LeadTypeB2C,
		HoneyTypes: []string{},
	}
	if lead.Status == "" {
		lead.Status = StatusNew
	}
	switch lead.Priority {
	case PriorityHigh, PriorityMedium, PriorityLow:
	default:
		lead.Priority = PriorityMedium
	}
	if lead.TeamMember == "" {
		lead.TeamMember = s.defaultMember
	}
	due := s.parseImportedFollowUp(col(7))
	lead.NextFollowUp = &due
	return lead
}

func (s *Service) parseImportedFollowUp(raw string) time.Time {
	if raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
		for _, layout := range []string{"2006-01-02 15:04", dateLayout} {
			if t, err := time.ParseInLocation(layout, raw, s.loc); err == nil {
				return t
			}
		}
	}
	return s.now()
}

// Import parses r and creates the leads in batches. Writes within a batch run
// concurrently and the batch is awaited before the next one starts; the first
// failing batch stops the import.
func (s *Service) Import(ctx context.Context, userID string, r io.Reader) (ImportResult, error) {
	ctx, span := leadsTracer.Start(ctx, "leads.import")
	defer span.End()

	parsed, skipped, err := s.ParseCSV(r)
	if err != nil {
		return ImportResult{Skipped: skipped}, err
	}
	s.metrics.ObserveImportRows("skipped", skipped)

	var imported atomic.Int64
	for start := 0; start < len(parsed); start += s.batchSize {
		end := start + s.batchSize
		if end > len(parsed) {
			end = len(parsed)
		}
		var g errgroup.Group
		for _, lead := range parsed[start:end] {
			lead := lead
			g.Go(func() error {
				if _, err := s.create(ctx, userID, lead); err != nil {
					return err
				}
				imported.Add(1)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			result := ImportResult{Imported: int(imported.Load()), Skipped: skipped}
			s.metrics.ObserveImportRows("imported", result.Imported)
			s.metrics.ObserveImportRows("failed", len(parsed)-result.Imported)
			return result, err
		}
	}
	result := ImportResult{Imported: int(imported.Load()), Skipped: skipped}
	s.metrics.ObserveImportRows("imported", result.Imported)
	s.logger.Info("csv import finished", "user_id", userID, "imported", result.Imported, "skipped", skipped)
	return result, nil
}
