package leads

import (
	"sort"
	"time"
)

// Bucket is the time-axis classification of a lead.
type Bucket string

const (
	BucketOverdue  Bucket = "Overdue"
	BucketDueToday Bucket = "DueToday"
	BucketUpcoming Bucket = "Upcoming"
	BucketClosed   Bucket = "Closed"
)

// StartOfDay returns local midnight of the day containing t.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// SameDay reports whether a and b fall on the same local calendar date.
func SameDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// Classify places a lead relative to the viewer's local calendar day of ref.
// Closed wins over any date; an open lead without a follow-up is Upcoming.
func Classify(lead *Lead, ref time.Time, loc *time.Location) Bucket {
	if lead.IsClosed() {
		return BucketClosed
	}
	if lead.NextFollowUp == nil {
		return BucketUpcoming
	}
	due := *lead.NextFollowUp
	if due.Before(StartOfDay(ref, loc)) {
		return BucketOverdue
	}
	if SameDay(due, ref, loc) {
		return BucketDueToday
	}
	return BucketUpcoming
}

// Dashboard is the daily partition of open leads.
type Dashboard struct {
	Overdue  []*Lead `json:"overdue"`
	Today    []*Lead `json:"today"`
	Upcoming []*Lead `json:"upcoming"`
}

// Partition classifies every lead; closed leads are left out. Each bucket is
// ordered by follow-up, earliest first.
func Partition(leads []*Lead, ref time.Time, loc *time.Location) Dashboard {
	board := Dashboard{
		Overdue:  []*Lead{},
		Today:    []*Lead{},
		Upcoming: []*Lead{},
	}
	for _, lead := range leads {
		switch Classify(lead, ref, loc) {
		case BucketOverdue:
			board.Overdue = append(board.Overdue, lead)
		case BucketDueToday:
			board.Today = append(board.Today, lead)
		case BucketUpcoming:
			board.Upcoming = append(board.Upcoming, lead)
		}
	}
	for _, bucket := range [][]*Lead{board.Overdue, board.Today, board.Upcoming} {
		sortByFollowUp(bucket)
	}
	return board
}

func sortByFollowUp(leads []*Lead) {
	sort.SliceStable(leads, func(i, j int) bool {
		a, b := leads[i].NextFollowUp, leads[j].NextFollowUp
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
}
