// Package sales derives revenue analytics from the lead collection. Nothing is
// stored: every view is recomputed from the leads passed in.
package sales

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wolfman30/nectar-lead-tracker/internal/leads"
	"github.com/wolfman30/nectar-lead-tracker/internal/money"
)

// UnknownProduct labels sales that name no product.
const UnknownProduct = "Unknown"

const dailyLabelLayout = "Jan 2"

// ProductCount is one slice of the product distribution.
type ProductCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DailyPoint is the revenue booked on one calendar date.
type DailyPoint struct {
	Label   string          `json:"label"`
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
}

// SelectSales keeps the leads whose order value is a positive number.
func SelectSales(all []*leads.Lead) []*leads.Lead {
	out := make([]*leads.Lead, 0, len(all))
	for _, lead := range all {
		if lead.IsSale() {
			out = append(out, lead)
		}
	}
	return out
}

// TotalRevenue sums the order values.
func TotalRevenue(sales []*leads.Lead) decimal.Decimal {
	total := decimal.Zero
	for _, sale := range sales {
		total = total.Add(money.Amount(sale.OrderValue))
	}
	return total
}

// SaleDate parses the recorded sale date only: a local yyyy-MM-dd date or an
// RFC3339 timestamp. ok is false when it is blank or malformed.
func SaleDate(lead *leads.Lead, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	raw := strings.TrimSpace(lead.SaleDate)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// SaleInstant resolves when a sale happened: the sale date when it parses,
// else the creation time. ok is false when neither is available.
func SaleInstant(lead *leads.Lead, loc *time.Location) (time.Time, bool) {
	if t, ok := SaleDate(lead, loc); ok {
		return t, true
	}
	if !lead.CreatedAt.IsZero() {
		return lead.CreatedAt, true
	}
	return time.Time{}, false
}

// WindowedRevenue sums sales that happened within [ref - days, ref].
func WindowedRevenue(sales []*leads.Lead, ref time.Time, days int, loc *time.Location) decimal.Decimal {
	start := ref.AddDate(0, 0, -days)
	total := decimal.Zero
	for _, sale := range sales {
		at, ok := SaleInstant(sale, loc)
		if !ok || at.Before(start) || at.After(ref) {
			continue
		}
		total = total.Add(money.Amount(sale.OrderValue))
	}
	return total
}

// ProductDistribution counts sales per product, one count per listed product,
// and returns the topN by count. Ties keep first-seen order.
func ProductDistribution(sales []*leads.Lead, topN int) []ProductCount {
	counts := map[string]int{}
	var order []string
	for _, sale := range sales {
		products := sale.Products()
		if len(products) == 0 {
			products = []string{UnknownProduct}
		}
		for _, name := range products {
			if _, ok := counts[name]; !ok {
				order = append(order, name)
			}
			counts[name]++
		}
	}
	out := make([]ProductCount, 0, len(order))
	for _, name := range order {
		out = append(out, ProductCount{Name: name, Count: counts[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// DailySeries buckets revenue by local calendar date in the order the dates
// are first encountered. Sales with no resolvable date are left out.
func DailySeries(sales []*leads.Lead, loc *time.Location) []DailyPoint {
	if loc == nil {
		loc = time.UTC
	}
	index := map[string]int{}
	out := []DailyPoint{}
	for _, sale := range sales {
		at, ok := SaleInstant(sale, loc)
		if !ok {
			continue
		}
		local := at.In(loc)
		key := local.Format("2006-01-02")
		i, seen := index[key]
		if !seen {
			i = len(out)
			index[key] = i
			out = append(out, DailyPoint{Label: local.Format(dailyLabelLayout), Date: key, Revenue: decimal.Zero})
		}
		out[i].Revenue = out[i].Revenue.Add(money.Amount(sale.OrderValue))
	}
	return out
}

// AverageOrderValue is total revenue over the sale count, zero for no sales.
func AverageOrderValue(sales []*leads.Lead) decimal.Decimal {
	if len(sales) == 0 {
		return decimal.Zero
	}
	return TotalRevenue(sales).Div(decimal.NewFromInt(int64(len(sales))))
}

// Recent returns up to n sales, latest sale first.
func Recent(sales []*leads.Lead, n int, loc *time.Location) []*leads.Lead {
	out := append([]*leads.Lead(nil), sales...)
	sort.SliceStable(out, func(i, j int) bool {
		a, _ := SaleInstant(out[i], loc)
		b, _ := SaleInstant(out[j], loc)
		return a.After(b)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Summary is the sales dashboard.
type Summary struct {
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	WeeklyRevenue     decimal.Decimal `json:"weeklyRevenue"`
	SalesCount        int             `json:"salesCount"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	TopProducts       []ProductCount  `json:"topProducts"`
	Daily             []DailyPoint    `json:"daily"`
	Recent            []*leads.Lead   `json:"recent"`
}

// Summarize computes the dashboard for the trailing week ending at ref.
func Summarize(all []*leads.Lead, ref time.Time, loc *time.Location) Summary {
	sales := SelectSales(all)
	return Summary{
		TotalRevenue:      TotalRevenue(sales),
		WeeklyRevenue:     WindowedRevenue(sales, ref, 7, loc),
		SalesCount:        len(sales),
		AverageOrderValue: AverageOrderValue(sales).Round(2),
		TopProducts:       ProductDistribution(sales, 5),
		Daily:             DailySeries(sales, loc),
		Recent:            Recent(sales, 5, loc),
	}
}
