package model

// SalaryNotSpecified is the display sentinel for postings without salary data.
const SalaryNotSpecified = "Not specified"

// Posting is one job listing as returned by a search provider. Postings are
// never persisted; they exist only between a search and its rendering.
type Posting struct {
	Title   string
	Company string
	Salary  string // display string, SalaryNotSpecified if unknown
	URL     string
	Source  string // provider name
}
