package todo

// Pagination defaults and bounds.
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Filter holds the list query parameters. Zero-value Search, Status, and
// Category mean "no filter" for that dimension; filters compose with AND.
type Filter struct {
	Search   string
	Status   Status
	Category Category
	Page     int
	PerPage  int
}

// Normalized returns a copy of f with pagination defaults applied: Page
// defaults to 1, PerPage defaults to DefaultPerPage and is capped at
// MaxPerPage. Filter dimensions are left untouched.
func (f Filter) Normalized() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = DefaultPerPage
	}
	if f.PerPage > MaxPerPage {
		f.PerPage = MaxPerPage
	}
	return f
}

// Offset returns the row offset for the filter's page. The filter must be
// normalized first.
func (f Filter) Offset() int {
	return (f.Page - 1) * f.PerPage
}
