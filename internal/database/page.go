package database

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NormalizePage clamps page to at least 1 and pageSize to 1..MaxPageSize,
// using DefaultPageSize when none was asked for.
func NormalizePage(page, pageSize int) (int, int) {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return max(page, 1), min(pageSize, MaxPageSize)
}

// PageOffset returns the OFFSET of page among total rows. ok is false when
// the page starts past the last row, so huge page numbers never overflow.
func PageOffset(page, pageSize, total int) (offset int, ok bool) {
	if total < 1 || page-1 > (total-1)/pageSize {
		return 0, false
	}
	return (page - 1) * pageSize, true
}
