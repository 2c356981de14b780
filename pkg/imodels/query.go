package imodels

import (
	"net/url"
	"strconv"
)

// QueryParams represents common list options.
type QueryParams struct {
	Top     int
	Skip    int
	OrderBy string
	// Representation selects minimal or full entities. Empty means minimal.
	Representation Representation
	// Filters are sent verbatim, e.g. "afterIndex", "lastIndex", "briefcaseId".
	Filters map[string]string
}

// NewQueryParams creates new query parameters.
func NewQueryParams() *QueryParams {
	return &QueryParams{
		Filters: make(map[string]string),
	}
}

// ToValues converts query parameters to url.Values.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}

	if q == nil {
		return values
	}

	if q.Top > 0 {
		values.Set("$top", strconv.Itoa(q.Top))
	}

	if q.Skip > 0 {
		values.Set("$skip", strconv.Itoa(q.Skip))
	}

	if q.OrderBy != "" {
		values.Set("$orderBy", q.OrderBy)
	}

	for key, value := range q.Filters {
		values.Set(key, value)
	}

	return values
}

// PreferHeader returns the Prefer header for the selected representation.
func (q *QueryParams) PreferHeader() string {
	if q == nil {
		return RepresentationMinimal.PreferHeader()
	}

	return q.Representation.PreferHeader()
}

// WithTop sets the page size.
func (q *QueryParams) WithTop(top int) *QueryParams {
	q.Top = top

	return q
}

// WithSkip sets the number of entities to skip.
func (q *QueryParams) WithSkip(skip int) *QueryParams {
	q.Skip = skip

	return q
}

// WithOrderBy sets the ordering, e.g. "index desc".
func (q *QueryParams) WithOrderBy(orderBy string) *QueryParams {
	q.OrderBy = orderBy

	return q
}

// WithRepresentation selects minimal or full entities.
func (q *QueryParams) WithRepresentation(representation Representation) *QueryParams {
	q.Representation = representation

	return q
}

// WithFilter sets a filter, replacing any previous value.
func (q *QueryParams) WithFilter(key, value string) *QueryParams {
	if q.Filters == nil {
		q.Filters = make(map[string]string)
	}

	q.Filters[key] = value

	return q
}

// WithRange restricts a changeset list to an index range.
func (q *QueryParams) WithRange(changesets ChangesetRange) *QueryParams {
	if changesets.AfterIndex != nil {
		q.WithFilter("afterIndex", strconv.Itoa(*changesets.AfterIndex))
	}

	if changesets.LastIndex != nil {
		q.WithFilter("lastIndex", strconv.Itoa(*changesets.LastIndex))
	}

	return q
}
