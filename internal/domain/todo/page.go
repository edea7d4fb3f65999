package todo

// Page is one page of a filtered todo listing plus pagination metadata.
// Total always reflects the full matching-row count, even when the requested
// page lies beyond the last page and Items is empty.
type Page struct {
	Items       []Todo
	CurrentPage int
	PerPage     int
	LastPage    int
	Total       int
	From        int
	To          int
	HasMore     bool
}

// NewPage assembles pagination metadata for a page of items. The page and
// perPage values must already be normalized (page >= 1, perPage >= 1).
// LastPage is ceil(total/perPage), or 1 when total is 0. From and To are
// 1-indexed row positions of the page's first and last item, both 0 for an
// empty page.
func NewPage(items []Todo, total, page, perPage int) Page {
	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}

	from, to := 0, 0
	if len(items) > 0 {
		from = (page-1)*perPage + 1
		to = from + len(items) - 1
	}

	return Page{
		Items:       items,
		CurrentPage: page,
		PerPage:     perPage,
		LastPage:    lastPage,
		Total:       total,
		From:        from,
		To:          to,
		HasMore:     page < lastPage,
	}
}
