package sales

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/nectar-lead-tracker/internal/leads"
)

var refNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func sale(name, value, saleDate string, products ...string) *leads.Lead {
	return &leads.Lead{
		ID:         name,
		Name:       name,
		OrderValue: value,
		SaleDate:   saleDate,
		HoneyTypes: products,
		CreatedAt:  refNow.AddDate(0, 0, -30),
	}
}

func TestSelectSalesIsPositiveOrderValue(t *testing.T) {
	all := []*leads.Lead{
		sale("zero", "0", ""),
		sale("blank", "", ""),
		sale("text", "abc", ""),
		sale("negative", "-5", ""),
		sale("cent", "0.01", ""),
		sale("prefix", "250rs", ""),
	}
	got := SelectSales(all)
	require.Len(t, got, 2)
	assert.Equal(t, "cent", got[0].Name)
	assert.Equal(t, "prefix", got[1].Name)
}

func TestTotalRevenuePartitionAdditivity(t *testing.T) {
	all := []*leads.Lead{
		sale("a", "100.50", ""),
		sale("b", "20", ""),
		sale("c", "0.25", ""),
		sale("d", "999", ""),
		sale("e", "3.333", ""),
	}
	whole := TotalRevenue(all)
	for split := 0; split <= len(all); split++ {
		parts := TotalRevenue(all[:split]).Add(TotalRevenue(all[split:]))
		if !parts.Equal(whole) {
			t.Fatalf("split %d: %s != %s", split, parts, whole)
		}
	}
	assert.True(t, whole.Equal(decimal.RequireFromString("1123.083")))
}

func TestWindowedRevenueBounds(t *testing.T) {
	inside := sale("inside", "100", "2024-06-10")
	edge := sale("edge", "10", refNow.AddDate(0, 0, -7).Format(time.RFC3339))
	old := sale("old", "1000", "2024-06-01")
	future := sale("future", "5", "2024-06-20")
	fallback := sale("fallback", "7", "not a date")
	fallback.CreatedAt = refNow.Add(-time.Hour)

	got := WindowedRevenue([]*leads.Lead{inside, edge, old, future, fallback}, refNow, 7, time.UTC)
	if !got.Equal(decimal.NewFromInt(117)) {
		t.Fatalf("expected 117, got %s", got)
	}
}

func TestSaleInstantUsesLocalDate(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	at, ok := SaleInstant(sale("x", "1", "2024-06-14"), loc)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 14, 0, 0, 0, 0, loc), at)

	_, ok = SaleInstant(&leads.Lead{OrderValue: "1"}, loc)
	assert.False(t, ok)
}

func TestSaleDateIgnoresCreatedAt(t *testing.T) {
	undated := sale("x", "1", "")
	_, ok := SaleDate(undated, time.UTC)
	assert.False(t, ok)
	at, ok := SaleInstant(undated, time.UTC)
	require.True(t, ok)
	assert.Equal(t, undated.CreatedAt, at)

	_, ok = SaleDate(sale("y", "1", "next friday"), time.UTC)
	assert.False(t, ok)

	at, ok = SaleDate(sale("z", "1", "2024-06-10T08:30:00Z"), time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 10, 8, 30, 0, 0, time.UTC), at.UTC())
}

func TestProductDistributionTiesAndTruncation(t *testing.T) {
	sales := []*leads.Lead{
		sale("1", "10", "", "Wildflower", "Acacia"),
		sale("2", "10", "", "Acacia"),
		sale("3", "10", ""),
		sale("4", "10", "", "Jamun"),
		sale("5", "10", "", "Litchi"),
		sale("6", "10", "", "Tulsi"),
		sale("7", "10", "", "Eucalyptus"),
	}
	got := ProductDistribution(sales, 5)
	require.Len(t, got, 5)
	assert.Equal(t, ProductCount{Name: "Acacia", Count: 2}, got[0])
	assert.Equal(t, []string{"Wildflower", UnknownProduct, "Jamun", "Litchi"}, []string{got[1].Name, got[2].Name, got[3].Name, got[4].Name})
}

func TestProductDistributionLegacySingleProduct(t *testing.T) {
	legacy := sale("legacy", "10", "")
	legacy.HoneyType = "Multiflora"
	got := ProductDistribution([]*leads.Lead{legacy}, 5)
	assert.Equal(t, []ProductCount{{Name: "Multiflora", Count: 1}}, got)
}

func TestDailySeriesFirstSeenOrder(t *testing.T) {
	sales := []*leads.Lead{
		sale("a", "10", "2024-06-12"),
		sale("b", "5", "2024-06-10"),
		sale("c", "2.5", "2024-06-12"),
	}
	got := DailySeries(sales, time.UTC)
	require.Len(t, got, 2)
	assert.Equal(t, "Jun 12", got[0].Label)
	assert.Equal(t, "2024-06-12", got[0].Date)
	assert.True(t, got[0].Revenue.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, "Jun 10", got[1].Label)
}

func TestAverageOrderValueZeroGuard(t *testing.T) {
	if !AverageOrderValue(nil).IsZero() {
		t.Fatalf("expected zero average for no sales")
	}
	got := AverageOrderValue([]*leads.Lead{sale("a", "100", ""), sale("b", "50", "")})
	if !got.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("expected 75, got %s", got)
	}
}

func TestRecentLatestFirst(t *testing.T) {
	sales := []*leads.Lead{
		sale("old", "1", "2024-06-01"),
		sale("new", "1", "2024-06-14"),
		sale("mid", "1", "2024-06-10"),
	}
	got := Recent(sales, 2, time.UTC)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].Name)
	assert.Equal(t, "mid", got[1].Name)
}

func TestSummarizeScenario(t *testing.T) {
	yesterday := refNow.AddDate(0, 0, -1)
	tomorrow := refNow.AddDate(0, 0, 1)
	all := []*leads.Lead{
		sale("A", "1000", refNow.AddDate(0, 0, -2).Format("2006-01-02")),
		{ID: "B", Name: "B", Status: leads.StatusNew, NextFollowUp: &yesterday},
		{ID: "C", Name: "C", Status: leads.StatusNew, Priority: leads.PriorityHigh, NextFollowUp: &tomorrow},
	}

	sales := SelectSales(all)
	require.Len(t, sales, 1)
	assert.Equal(t, "A", sales[0].Name)

	summary := Summarize(all, refNow, time.UTC)
	assert.True(t, summary.TotalRevenue.Equal(decimal.NewFromInt(1000)))
	assert.True(t, summary.WeeklyRevenue.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, 1, summary.SalesCount)
	assert.True(t, summary.AverageOrderValue.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, []ProductCount{{Name: UnknownProduct, Count: 1}}, summary.TopProducts)
	assert.Equal(t, leads.BucketOverdue, leads.Classify(all[1], refNow, time.UTC))
	assert.Equal(t, leads.BucketUpcoming, leads.Classify(all[2], refNow, time.UTC))
}
