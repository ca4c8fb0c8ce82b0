package ledger

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPageSize
	}
	if perPage > MaxPageSize {
		perPage = MaxPageSize
	}
	return page, perPage
}

// trimPage cuts the look-ahead row fetched to detect a following page.
func trimPage[T any](items []T, size int) ([]T, bool) {
	if len(items) > size {
		return items[:size], true
	}
	return items, false
}
