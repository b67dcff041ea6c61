package bot

import (
	"testing"

	"github.com/vkrec/recommend-bot/internal/models"
)

func TestPaginationWrapAround(t *testing.T) {
	// 23 results paginate as 10/10/3.
	const total, size = 23, 10

	if got := lastPage(total, size); got != 3 {
		t.Fatalf("lastPage(%d) = %d, want 3", total, got)
	}

	tests := []struct {
		name     string
		page     int
		wantPrev int
		wantNext int
	}{
		{"first page wraps back", 1, 3, 2},
		{"middle page", 2, 1, 3},
		{"last page wraps forward", 3, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := prevPage(tt.page, total, size); got != tt.wantPrev {
				t.Fatalf("prevPage(%d) = %d, want %d", tt.page, got, tt.wantPrev)
			}
			if got := nextPage(tt.page, total, size); got != tt.wantNext {
				t.Fatalf("nextPage(%d) = %d, want %d", tt.page, got, tt.wantNext)
			}
		})
	}
}

func TestPageSlice(t *testing.T) {
	records := make([]models.GroupRecord, 23)
	for i := range records {
		records[i].GroupID = int64(i + 1)
	}

	tests := []struct {
		name      string
		page      int
		wantLen   int
		wantFirst int64
	}{
		{"full first page", 1, 10, 1},
		{"full second page", 2, 10, 11},
		{"partial last page", 3, 3, 21},
		{"past the end", 4, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pageSlice(records, tt.page, 10)
			if len(got) != tt.wantLen {
				t.Fatalf("page %d has %d records, want %d", tt.page, len(got), tt.wantLen)
			}
			if tt.wantLen > 0 && got[0].GroupID != tt.wantFirst {
				t.Fatalf("page %d starts at id %d, want %d", tt.page, got[0].GroupID, tt.wantFirst)
			}
		})
	}
}
