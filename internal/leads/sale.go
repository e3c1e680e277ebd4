package leads

import (
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/nectar-lead-tracker/internal/money"
)

const noteStampLayout = "Jan 2, 3:04 PM"

// IsSale reports whether the order value parses to a positive number.
func (l *Lead) IsSale() bool {
	return money.IsPositive(l.OrderValue)
}

// QuickAddSale adds amount to the lead's order value, stamps today's local date
// as the sale date and appends an audit line to the notes. The input lead is
// not modified.
func QuickAddSale(lead *Lead, amount string, now time.Time, loc *time.Location) (*Lead, error) {
	delta, ok := money.Parse(amount)
	if !ok || !delta.IsPositive() {
		return nil, &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	total := money.Amount(lead.OrderValue).Add(delta)

	out := lead.Clone()
	out.OrderValue = money.Format(total)
	out.SaleDate = local.Format(dateLayout)
	line := fmt.Sprintf("[%s] Quick sale: +%s (total %s)", local.Format(noteStampLayout), money.Format(delta), out.OrderValue)
	if strings.TrimSpace(out.Notes) == "" {
		out.Notes = line
	} else {
		out.Notes = strings.TrimRight(out.Notes, "\n") + "\n" + line
	}
	return out, nil
}
