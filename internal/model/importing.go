package model

// ImportRow is one parsed CSV record keyed by header name.
type ImportRow map[string]string

// ImportError describes a row that was rejected during import.
type ImportError struct {
	Row   int       `json:"row"` // 1-based, header excluded
	Data  ImportRow `json:"data"`
	Error string    `json:"error"`
}

// ImportResult summarises a CSV import.
type ImportResult struct {
	Created int           `json:"created"`
	Failed  int           `json:"failed"`
	Errors  []ImportError `json:"errors"`
}
