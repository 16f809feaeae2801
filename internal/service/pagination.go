package service

// Pagination bounds list limits.
type Pagination struct {
	DefaultLimit int
	MaxLimit     int
}

// DefaultPagination mirrors the API defaults.
var DefaultPagination = Pagination{DefaultLimit: 10, MaxLimit: 100}

func (p Pagination) clamp(offset, limit int) (int, int) {
	if p.DefaultLimit <= 0 {
		p.DefaultLimit = DefaultPagination.DefaultLimit
	}
	if p.MaxLimit <= 0 {
		p.MaxLimit = DefaultPagination.MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = p.DefaultLimit
	}
	if limit > p.MaxLimit {
		limit = p.MaxLimit
	}
	return offset, limit
}
