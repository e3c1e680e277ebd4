// Package reports builds the weekly status report from the lead collection.
package reports

import (
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/nectar-lead-tracker/internal/leads"
	"github.com/wolfman30/nectar-lead-tracker/internal/money"
	"github.com/wolfman30/nectar-lead-tracker/internal/sales"
)

const (
	windowDays    = 7
	workedOnLimit = 10
	focusLimit    = 5

	cadence = "Cadence: weekly status update"

	startLayout = "Jan 2"
	endLayout   = "Jan 2, 2006"
)

const (
	emptyWorkedOn   = "No lead activity this week."
	emptyFocus      = "No high-priority open leads."
	roadblockLine   = "None reported."
	emptyWins       = "No sales recorded this week."
	followUpLayout  = "Jan 2"
	sectionWorkedOn = "1. Worked On"
	sectionFocus    = "2. Focus Areas"
	sectionBlocks   = "3. Roadblocks"
	sectionWins     = "4. Wins"
)

// Section is one numbered block of the report.
type Section struct {
	Title string
	Items []string
}

// Report is the rendered-independent weekly report.
type Report struct {
	Title    string
	Start    time.Time
	End      time.Time
	Sections []Section
}

// Build assembles the report for the week ending at now. It reads nothing but
// its arguments, so the same input always yields the same report.
func Build(all []*leads.Lead, now time.Time, loc *time.Location) Report {
	if loc == nil {
		loc = time.UTC
	}
	start := now.AddDate(0, 0, -windowDays)

	var worked, focus, wins []*leads.Lead
	for _, lead := range all {
		if !lead.UpdatedAt.Before(start) || !lead.CreatedAt.Before(start) {
			worked = append(worked, lead)
		}
		if lead.Priority == leads.PriorityHigh && !lead.IsClosed() {
			focus = append(focus, lead)
		}
		if lead.IsSale() {
			if at, ok := sales.SaleDate(lead, loc); ok && !at.Before(start) {
				wins = append(wins, lead)
			}
		}
	}

	return Report{
		Title: fmt.Sprintf("Weekly Report (%s - %s)", start.In(loc).Format(startLayout), now.In(loc).Format(endLayout)),
		Start: start,
		End:   now,
		Sections: []Section{
			{Title: sectionWorkedOn, Items: workedOnItems(worked)},
			{Title: sectionFocus, Items: focusItems(focus, loc)},
			{Title: sectionBlocks, Items: []string{roadblockLine}},
			{Title: sectionWins, Items: winItems(wins)},
		},
	}
}

// Generate renders the weekly report as plain text.
func Generate(all []*leads.Lead, now time.Time, loc *time.Location) string {
	return Build(all, now, loc).String()
}

func workedOnItems(worked []*leads.Lead) []string {
	if len(worked) == 0 {
		return []string{emptyWorkedOn}
	}
	items := make([]string, 0, workedOnLimit+1)
	for i, lead := range worked {
		if i == workedOnLimit {
			items = append(items, fmt.Sprintf("...and %d more", len(worked)-workedOnLimit))
			break
		}
		items = append(items, describe(lead))
	}
	return items
}

func focusItems(focus []*leads.Lead, loc *time.Location) []string {
	if len(focus) == 0 {
		return []string{emptyFocus}
	}
	items := make([]string, 0, focusLimit)
	for i, lead := range focus {
		if i == focusLimit {
			break
		}
		item := describe(lead)
		if lead.NextFollowUp != nil {
			item += ", next follow-up " + lead.NextFollowUp.In(loc).Format(followUpLayout)
		}
		items = append(items, item)
	}
	return items
}

func winItems(wins []*leads.Lead) []string {
	if len(wins) == 0 {
		return []string{emptyWins}
	}
	total := sales.TotalRevenue(wins)
	noun := "sales"
	if len(wins) == 1 {
		noun = "sale"
	}
	items := []string{fmt.Sprintf("Total: %s from %d %s", money.Format(total), len(wins), noun)}
	for _, lead := range wins {
		items = append(items, fmt.Sprintf("%s: %s", lead.Name, money.Format(money.Amount(lead.OrderValue))))
	}
	return items
}

func describe(lead *leads.Lead) string {
	var tags []string
	if s := strings.TrimSpace(lead.Status); s != "" {
		tags = append(tags, s)
	}
	if m := strings.TrimSpace(lead.TeamMember); m != "" {
		tags = append(tags, m)
	}
	if len(tags) == 0 {
		return lead.Name
	}
	return fmt.Sprintf("%s (%s)", lead.Name, strings.Join(tags, ", "))
}

// String renders the report for pasting into an email.
func (r Report) String() string {
	var b strings.Builder
	b.WriteString(r.Title)
	b.WriteString("\n")
	b.WriteString(cadence)
	b.WriteString("\n")
	for _, s := range r.Sections {
		b.WriteString("\n")
		b.WriteString(s.Title)
		b.WriteString("\n")
		for _, item := range s.Items {
			b.WriteString("- ")
			b.WriteString(item)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Markdown renders the report with headings for HTML conversion.
func (r Report) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n_%s_\n", r.Title, cadence)
	for _, s := range r.Sections {
		fmt.Fprintf(&b, "\n## %s\n\n", s.Title)
		for _, item := range s.Items {
			fmt.Fprintf(&b, "- %s\n", escapeMarkdown(item))
		}
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "<", "&lt;", ">", "&gt;",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
