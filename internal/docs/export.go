package docs

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	exportTitle    = "# Nectar of the Gods - Documentation Export"
	stampLayout    = "2006-01-02 15:04"
	dayLayout      = "2006-01-02"
	overviewLayout = "Jan 2"
	overviewWindow = 7
)

// ExportFilename names a Markdown export made at now.
func ExportFilename(now time.Time, loc *time.Location) string {
	return fmt.Sprintf("documentation_%s.md", now.In(orUTC(loc)).Format(dayLayout))
}

// ExportMarkdown renders entries in the order given, one section per entry.
func ExportMarkdown(entries []*Entry, generatedAt time.Time, loc *time.Location) string {
	loc = orUTC(loc)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nGenerated on %s\n\n", exportTitle, generatedAt.In(loc).Format(stampLayout))
	for _, e := range entries {
		fmt.Fprintf(&b, "## %s\n", e.When().In(loc).Format(stampLayout))
		switch e.Type {
		case TypeImage:
			fmt.Fprintf(&b, "![%s](%s)\n\n", e.Content, e.URL)
		case TypeVideo:
			fmt.Fprintf(&b, "[Video: %s](%s)\n\n", e.Content, e.URL)
		default:
			fmt.Fprintf(&b, "%s\n\n", e.Content)
		}
		b.WriteString("---\n\n")
	}
	return b.String()
}

// DayCount is the number of entries logged on one local date.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Overview summarises the trailing week of documentation.
type Overview struct {
	Start  time.Time  `json:"start"`
	End    time.Time  `json:"end"`
	Total  int        `json:"total"`
	PerDay []DayCount `json:"perDay"`
	Text   string     `json:"text"`
}

// WeeklyOverview counts entries made at or after now minus seven days,
// grouped by local date in ascending order.
func WeeklyOverview(entries []*Entry, now time.Time, loc *time.Location) Overview {
	loc = orUTC(loc)
	start := now.AddDate(0, 0, -overviewWindow)
	counts := map[string]int{}
	total := 0
	for _, e := range entries {
		at := e.When()
		if at.Before(start) {
			continue
		}
		total++
		counts[at.In(loc).Format(dayLayout)]++
	}

	days := make([]string, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	sort.Strings(days)

	perDay := make([]DayCount, 0, len(days))
	var b strings.Builder
	fmt.Fprintf(&b, "Weekly Overview (%s - %s)\n\n", start.In(loc).Format(overviewLayout), now.In(loc).Format(overviewLayout))
	fmt.Fprintf(&b, "Total Entries: %d\n", total)
	for _, d := range days {
		perDay = append(perDay, DayCount{Date: d, Count: counts[d]})
		fmt.Fprintf(&b, "- %s: %d entries\n", d, counts[d])
	}
	return Overview{Start: start, End: now, Total: total, PerDay: perDay, Text: b.String()}
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
