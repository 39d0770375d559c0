package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/zlovtnik/nfe-identifications/internal/identification/models"
	"github.com/zlovtnik/nfe-identifications/pkg/domainerrors"
)

const (
	defaultPage     = 1
	defaultPageSize = 50
	maxPageSize     = 500
)

// parseListQuery validates the list query parameters before the repository
// is invoked: page >= 1, 1 <= page_size <= maxPageSize, dh_emi a calendar
// date when present.
func parseListQuery(r *http.Request) (page, pageSize int, filter models.ListFilter, err error) {
	q := r.URL.Query()

	page, err = intParam(q.Get("page"), defaultPage)
	if err != nil || page < 1 {
		return 0, 0, models.ListFilter{}, domainerrors.New(domainerrors.CodeBadRequest, "page must be a positive integer")
	}

	pageSize, err = intParam(q.Get("page_size"), defaultPageSize)
	if err != nil || pageSize < 1 || pageSize > maxPageSize {
		return 0, 0, models.ListFilter{}, domainerrors.Newf(domainerrors.CodeBadRequest, "page_size must be between 1 and %d", maxPageSize)
	}

	filter = models.ListFilter{
		NatOp:  q.Get("nat_op"),
		NNF:    q.Get("n_nf"),
		TpNF:   q.Get("tp_nf"),
		DhEmi:  q.Get("dh_emi"),
		Search: q.Get("search"),
	}
	if filter.DhEmi != "" {
		if _, err := time.Parse("2006-01-02", filter.DhEmi); err != nil {
			return 0, 0, models.ListFilter{}, domainerrors.New(domainerrors.CodeBadRequest, "dh_emi must be a date in YYYY-MM-DD form")
		}
	}
	return page, pageSize, filter, nil
}

func intParam(value string, fallback int) (int, error) {
	if value == "" {
		return fallback, nil
	}
	return strconv.Atoi(value)
}
