package leads

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(t time.Time) *time.Time { return &t }

func TestClassifyUsesLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	ref := time.Date(2024, 6, 15, 14, 0, 0, 0, loc)

	tests := []struct {
		name string
		lead *Lead
		want Bucket
	}{
		{"just after midnight today", &Lead{Status: StatusNew, NextFollowUp: at(time.Date(2024, 6, 15, 0, 1, 0, 0, loc))}, BucketDueToday},
		{"late yesterday", &Lead{Status: StatusNew, NextFollowUp: at(time.Date(2024, 6, 14, 23, 59, 0, 0, loc))}, BucketOverdue},
		{"earlier today already passed", &Lead{Status: StatusNew, NextFollowUp: at(time.Date(2024, 6, 15, 9, 0, 0, 0, loc))}, BucketDueToday},
		{"tomorrow", &Lead{Status: StatusNew, NextFollowUp: at(time.Date(2024, 6, 16, 0, 0, 0, 0, loc))}, BucketUpcoming},
		{"closed and overdue", &Lead{Status: StatusClosed, NextFollowUp: at(time.Date(2024, 6, 1, 9, 0, 0, 0, loc))}, BucketClosed},
		{"closed without date", &Lead{Status: StatusClosed}, BucketClosed},
		{"no follow-up", &Lead{Status: StatusNew}, BucketUpcoming},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.lead, ref, loc))
		})
	}
}

func TestClassifyDependsOnViewerZone(t *testing.T) {
	// 20:00 UTC on the 14th is already the 15th in IST.
	due := time.Date(2024, 6, 14, 20, 0, 0, 0, time.UTC)
	ref := time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)
	lead := &Lead{Status: StatusNew, NextFollowUp: &due}

	assert.Equal(t, BucketOverdue, Classify(lead, ref, time.UTC))
	assert.Equal(t, BucketDueToday, Classify(lead, ref, time.FixedZone("IST", 5*3600+1800)))
}

func TestClassifyPartitionsOpenLeads(t *testing.T) {
	ref := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	for offset := -72; offset <= 72; offset += 5 {
		due := ref.Add(time.Duration(offset) * time.Hour)
		bucket := Classify(&Lead{Status: "Contacted", NextFollowUp: &due}, ref, time.UTC)
		if bucket == BucketClosed {
			t.Fatalf("open lead classified closed at offset %d", offset)
		}
	}
}

func TestPartitionDropsClosedAndSorts(t *testing.T) {
	ref := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	leads := []*Lead{
		{Name: "late-today", Status: StatusNew, NextFollowUp: at(ref.Add(3 * time.Hour))},
		{Name: "early-today", Status: StatusNew, NextFollowUp: at(ref.Add(-3 * time.Hour))},
		{Name: "overdue", Status: StatusNew, NextFollowUp: at(ref.Add(-48 * time.Hour))},
		{Name: "closed", Status: StatusClosed, NextFollowUp: at(ref)},
		{Name: "undated", Status: StatusNew},
		{Name: "next-week", Status: StatusNew, NextFollowUp: at(ref.Add(7 * 24 * time.Hour))},
	}
	board := Partition(leads, ref, time.UTC)

	assert.Len(t, board.Overdue, 1)
	if assert.Len(t, board.Today, 2) {
		assert.Equal(t, "early-today", board.Today[0].Name)
		assert.Equal(t, "late-today", board.Today[1].Name)
	}
	if assert.Len(t, board.Upcoming, 2) {
		assert.Equal(t, "next-week", board.Upcoming[0].Name)
		assert.Equal(t, "undated", board.Upcoming[1].Name)
	}
}
