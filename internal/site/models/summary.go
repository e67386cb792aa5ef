package models

import "time"

// ItemStatus is the outcome of one page.
type ItemStatus string

const (
	ItemSuccess  ItemStatus = "success"
	ItemError    ItemStatus = "error"
	ItemSkipped  ItemStatus = "skipped"
	ItemCanceled ItemStatus = "canceled"
)

// ItemResult is the structured outcome of producing one page.
type ItemResult struct {
	Category string        `json:"category"`
	Slug     string        `json:"slug"`
	Path     string        `json:"path,omitempty"`
	URL      string        `json:"url,omitempty"`
	Status   ItemStatus    `json:"status"`
	Error    string        `json:"error,omitempty"`
	Reason   string        `json:"reason,omitempty"`
	Duration time.Duration `json:"duration_ns"`

	// DuplicateOf names the item that already claimed the same route.
	DuplicateOf string `json:"duplicate_of,omitempty"`
}

// CategoryCounts tallies item outcomes for one category.
type CategoryCounts struct {
	Success  int `json:"success"`
	Error    int `json:"error"`
	Skipped  int `json:"skipped"`
	Canceled int `json:"canceled"`
}

// Summary aggregates the item results of a run. Counts are derived from the
// results, never from logs.
type Summary struct {
	RunID         string                    `json:"run_id"`
	TotalSuccess  int                       `json:"total_success"`
	TotalError    int                       `json:"total_error"`
	TotalSkipped  int                       `json:"total_skipped"`
	TotalCanceled int                       `json:"total_canceled"`
	Categories    map[string]CategoryCounts `json:"categories"`
	Items         []ItemResult              `json:"items"`
}

func NewSummary(runID string) *Summary {
	return &Summary{RunID: runID, Categories: make(map[string]CategoryCounts)}
}

// Add appends results in order and updates the counters.
func (s *Summary) Add(results ...ItemResult) {
	for _, r := range results {
		c := s.Categories[r.Category]
		switch r.Status {
		case ItemSuccess:
			c.Success++
			s.TotalSuccess++
		case ItemError:
			c.Error++
			s.TotalError++
		case ItemSkipped:
			c.Skipped++
			s.TotalSkipped++
		case ItemCanceled:
			c.Canceled++
			s.TotalCanceled++
		}
		s.Categories[r.Category] = c
		s.Items = append(s.Items, r)
	}
}

// Failed returns the results with ItemError status.
func (s *Summary) Failed() []ItemResult {
	var out []ItemResult
	for _, r := range s.Items {
		if r.Status == ItemError {
			out = append(out, r)
		}
	}
	return out
}
