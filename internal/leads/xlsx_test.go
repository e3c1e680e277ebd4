package leads

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func TestBuildWorkbook(t *testing.T) {
	due := time.Date(2024, 6, 20, 4, 30, 0, 0, time.UTC)
	leads := []*Lead{
		{Name: "Asha", Phone: "111", Status: "New", Priority: PriorityHigh, OrderValue: "500", SaleDate: "2024-06-10",
			HoneyTypes: []string{"Acacia Honey", "Sidr Honey"}, NextFollowUp: &due},
		{Name: "Bina", HoneyType: "Forest Honey"},
	}
	f, err := BuildWorkbook(leads, time.FixedZone("IST", 19800))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	reopened, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	rows, err := reopened.GetRows(LeadsSheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Name" || rows[0][10] != "Honey Types" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][7] != "2024-06-20 10:00" || rows[1][10] != "Acacia Honey, Sidr Honey" {
		t.Fatalf("unexpected row %v", rows[1])
	}
	if rows[2][10] != "Forest Honey" {
		t.Fatalf("legacy product not exported: %v", rows[2])
	}
}
