package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

var errBadQuery = errors.New("invalid query parameter")

// pageParams reads page and limit, defaulting to page 0 and limit 10.
func pageParams(r *http.Request) (page, limit int, err error) {
	page, limit = 0, 10
	if s := r.URL.Query().Get("page"); s != "" {
		page, err = strconv.Atoi(s)
		if err != nil || page < 0 {
			return 0, 0, fmt.Errorf("%w: page", errBadQuery)
		}
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit < 1 || limit > 100 {
			return 0, 0, fmt.Errorf("%w: limit", errBadQuery)
		}
	}
	return page, limit, nil
}

type sortSpec struct {
	Field string
	Desc  bool
}

// parseSort reads a "field,asc|desc" sort parameter. allowed maps the
// accepted field names to column names; def is the column used when the
// parameter is absent.
func parseSort(r *http.Request, allowed map[string]string, def string) (sortSpec, error) {
	s := r.URL.Query().Get("sort")
	if s == "" {
		return sortSpec{Field: def}, nil
	}
	field, dir, _ := strings.Cut(s, ",")
	col, ok := allowed[strings.ToLower(strings.TrimSpace(field))]
	if !ok {
		return sortSpec{}, fmt.Errorf("%w: sort field %q", errBadQuery, field)
	}
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "asc":
		return sortSpec{Field: col}, nil
	case "desc":
		return sortSpec{Field: col, Desc: true}, nil
	default:
		return sortSpec{}, fmt.Errorf("%w: sort direction %q", errBadQuery, dir)
	}
}

func pathID(r *http.Request, name string) (uint64, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %s", errBadQuery, name)
	}
	return id, nil
}
