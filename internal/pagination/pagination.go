// Package pagination implements the paginated-filtered-list pattern shared by
// every resource: a flat set of optional query parameters is resolved into a
// WHERE clause, a page window and an ORDER BY, and the result set is wrapped
// in a {data, metadata} envelope.
package pagination

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Params carries the universal paging and sorting parameters of a list query.
type Params struct {
	Page           int    // 1-based; 0 means not provided
	PerPage        int    // page size; <= 0 means unpaginated
	SortBy         string // "asc" or "desc"; empty means natural order
	SortByProperty string // query-facing field name, resolved via an allow-list
}

// ParseParams extracts the universal parameters from a query string.
// Malformed numbers are treated as absent.
func ParseParams(q url.Values) Params {
	p := Params{
		SortBy:         q.Get("sortBy"),
		SortByProperty: q.Get("sortByProperty"),
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil {
		p.Page = v
	}
	if v, err := strconv.Atoi(q.Get("perPage")); err == nil {
		p.PerPage = v
	}
	return p
}

// Paginated reports whether both page and perPage were provided and usable.
// A perPage of zero or less is explicitly unpaginated, so the lastPage
// computation can never divide by zero.
func (p Params) Paginated() bool {
	return p.Page > 0 && p.PerPage > 0
}

// Window returns the LIMIT/OFFSET fragment for the page, or an empty string
// when the query is unpaginated.
func (p Params) Window() string {
	if !p.Paginated() {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", p.PerPage, (p.Page-1)*p.PerPage)
}

// OrderBy resolves the sort clause. The sortByProperty value is looked up in
// the resource's allowed map (query name -> column); unknown properties are
// rejected rather than interpolated. With no sortByProperty the resource's
// default column is used, and with no sortBy at all the store's natural order
// stands.
func (p Params) OrderBy(defaultColumn string, allowed map[string]string) (string, error) {
	if p.SortBy == "" {
		return "", nil
	}

	var dir string
	switch strings.ToLower(p.SortBy) {
	case "asc":
		dir = "ASC"
	case "desc":
		dir = "DESC"
	default:
		return "", fmt.Errorf("invalid sort direction %q", p.SortBy)
	}

	column := defaultColumn
	if p.SortByProperty != "" {
		c, ok := allowed[p.SortByProperty]
		if !ok {
			return "", fmt.Errorf("cannot sort by %q", p.SortByProperty)
		}
		column = c
	}
	return fmt.Sprintf(" ORDER BY %s %s", column, dir), nil
}

// Meta is the metadata half of the list envelope.
type Meta struct {
	Page         int   `json:"page,omitempty"`
	TotalRecords int64 `json:"totalRecords"`
	LastPage     int64 `json:"lastPage,omitempty"`
}

// Meta builds the envelope metadata from the filtered record count. The count
// is always the full filtered total, independent of the page window.
func (p Params) Meta(totalRecords int64) Meta {
	if !p.Paginated() {
		return Meta{TotalRecords: totalRecords}
	}
	lastPage := (totalRecords + int64(p.PerPage) - 1) / int64(p.PerPage)
	return Meta{Page: p.Page, TotalRecords: totalRecords, LastPage: lastPage}
}

// Envelope is the uniform list response shape.
type Envelope[T any] struct {
	Data     []T  `json:"data"`
	Metadata Meta `json:"metadata"`
}

// NewEnvelope wraps a result page. A nil slice is normalized to an empty one
// so the JSON data field is always an array.
func NewEnvelope[T any](data []T, meta Meta) Envelope[T] {
	if data == nil {
		data = []T{}
	}
	return Envelope[T]{Data: data, Metadata: meta}
}

// Filter accumulates WHERE conditions. The soft-delete exclusion is part of
// the filter from construction and cannot be overridden by caller input.
type Filter struct {
	conds []string
	args  []any
}

// NewFilter starts a filter that excludes soft-deleted rows. tablePrefix
// qualifies the deleted column when the final query joins other tables
// (e.g. "c." yields "c.deleted = 0"); pass "" for single-table queries.
func NewFilter(tablePrefix string) *Filter {
	return &Filter{conds: []string{tablePrefix + "deleted = 0"}}
}

// Eq adds an exact-equality condition.
func (f *Filter) Eq(column string, value any) *Filter {
	f.conds = append(f.conds, column+" = ?")
	f.args = append(f.args, value)
	return f
}

// Contains adds a case-insensitive substring condition.
func (f *Filter) Contains(column, value string) *Filter {
	f.conds = append(f.conds, "LOWER("+column+") LIKE '%' || LOWER(?) || '%'")
	f.args = append(f.args, value)
	return f
}

// ContainsAny adds a case-insensitive substring condition matching any of the
// given columns.
func (f *Filter) ContainsAny(value string, columns ...string) *Filter {
	parts := make([]string, len(columns))
	for i, column := range columns {
		parts[i] = "LOWER(" + column + ") LIKE '%' || LOWER(?) || '%'"
		f.args = append(f.args, value)
	}
	f.conds = append(f.conds, "("+strings.Join(parts, " OR ")+")")
	return f
}

// Where returns the WHERE fragment, leading space included.
func (f *Filter) Where() string {
	return " WHERE " + strings.Join(f.conds, " AND ")
}

// Args returns the bind arguments in clause order.
func (f *Filter) Args() []any {
	return f.args
}
