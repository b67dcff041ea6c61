package bot

import "github.com/vkrec/recommend-bot/internal/models"

// lastPage returns the highest page number for a result set. Follows the
// original total/size+1 arithmetic, so an exact multiple of the page size
// still gets a trailing empty page.
func lastPage(total, size int) int {
	return total/size + 1
}

// prevPage steps back one page, wrapping from page 1 to the last page.
func prevPage(page, total, size int) int {
	if page > 1 {
		return page - 1
	}
	return lastPage(total, size)
}

// nextPage steps forward one page, wrapping circularly past the last page
// back to page 1.
func nextPage(page, total, size int) int {
	n := (page + 1) % lastPage(total, size)
	if n == 0 {
		n = lastPage(total, size)
	}
	return n
}

// pageSlice cuts the records for a 1-indexed page. A page past the end of
// the result set yields an empty slice, not an error.
func pageSlice(records []models.GroupRecord, page, size int) []models.GroupRecord {
	start := (page - 1) * size
	if start < 0 || start >= len(records) {
		return nil
	}
	end := start + size
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}
