// Package ingest imports batches of books from Open Library by ISBN.
package ingest

const (
	StatusImported = "IMPORTED"
	StatusSkipped  = "SKIPPED"
	StatusNotFound = "NOT_FOUND"
	StatusFailed   = "FAILED"
)

// MaxBatchSize bounds a single run. The upstream client is rate limited, so
// large batches hold the request open for a long time.
const MaxBatchSize = 50

type Item struct {
	ISBN   string `json:"isbn"`
	Status string `json:"status"`
	BookID string `json:"book_id,omitempty"`
	Error  string `json:"error,omitempty"`
}

type Report struct {
	Requested int    `json:"requested"`
	Imported  int    `json:"imported"`
	Skipped   int    `json:"skipped"`
	NotFound  int    `json:"not_found"`
	Failed    int    `json:"failed"`
	Items     []Item `json:"items"`
}

func (r *Report) add(it Item) {
	r.Items = append(r.Items, it)
	switch it.Status {
	case StatusImported:
		r.Imported++
	case StatusSkipped:
		r.Skipped++
	case StatusNotFound:
		r.NotFound++
	case StatusFailed:
		r.Failed++
	}
}
