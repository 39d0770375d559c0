package models

// ListFilter holds the optional list predicates. Empty strings mean the
// predicate is inactive.
type ListFilter struct {
	// NatOp substring-matches the operation nature.
	NatOp string
	// NNF substring-matches the document number.
	NNF string
	// TpNF exact-matches the document type code.
	TpNF string
	// DhEmi exact-matches the emission date (date component only),
	// formatted YYYY-MM-DD.
	DhEmi string
	// Search substring-matches nat_op, n_nf and tp_nf simultaneously.
	Search string
}

// IsZero reports whether no predicate is active.
func (f ListFilter) IsZero() bool {
	return f == ListFilter{}
}

// Page is the JSON envelope returned by list queries.
type Page struct {
	Data        []Identification `json:"data"`
	Total       uint64           `json:"total"`
	CurrentPage int              `json:"current_page"`
	PageSize    int              `json:"page_size"`
	TotalPages  int              `json:"total_pages"`
}

// NewPage assembles the pagination envelope. pageSize must be positive;
// handlers validate that before the repository runs.
func NewPage(data []Identification, total uint64, page, pageSize int) Page {
	totalPages := int((total + uint64(pageSize) - 1) / uint64(pageSize))
	return Page{
		Data:        data,
		Total:       total,
		CurrentPage: page,
		PageSize:    pageSize,
		TotalPages:  totalPages,
	}
}
