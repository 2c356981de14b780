package imodels

import "strconv"

// Link represents a single hypermedia link.
type Link struct {
	Href string `json:"href" yaml:"href"`
}

// EntityPage is a single page of a list response.
type EntityPage[T any] struct {
	Entities []T
	Next     *Link
}

// ListLinks represents the links object of a list response.
type ListLinks struct {
	Self *Link `json:"self,omitempty" yaml:"self,omitempty"`
	Prev *Link `json:"prev,omitempty" yaml:"prev,omitempty"`
	Next *Link `json:"next,omitempty" yaml:"next,omitempty"`
}

// Representation selects how much of each entity a list operation returns.
type Representation string

const (
	// RepresentationMinimal returns ids and display names only.
	RepresentationMinimal Representation = "minimal"

	// RepresentationFull returns complete entities.
	RepresentationFull Representation = "representation"
)

// PreferHeader returns the Prefer header value for the representation.
func (r Representation) PreferHeader() string {
	if r == "" {
		return "return=" + string(RepresentationMinimal)
	}

	return "return=" + string(r)
}

// ChangesetRef identifies a changeset either by id or by index.
// The zero value refers to the baseline (index 0).
type ChangesetRef struct {
	ID    string
	Index *int
}

// ChangesetByID returns a reference to the changeset with the given id.
func ChangesetByID(id string) ChangesetRef {
	return ChangesetRef{ID: id}
}

// ChangesetByIndex returns a reference to the changeset with the given index.
func ChangesetByIndex(index int) ChangesetRef {
	return ChangesetRef{Index: &index}
}

// Baseline returns a reference to the baseline changeset (index 0).
func Baseline() ChangesetRef {
	return ChangesetByIndex(0)
}

// IsBaseline reports whether the reference resolves to index 0 without a lookup.
func (r ChangesetRef) IsBaseline() bool {
	if r.Index != nil {
		return *r.Index == 0
	}

	return r.ID == ""
}

// String returns the path segment used to address the changeset.
func (r ChangesetRef) String() string {
	if r.ID != "" {
		return r.ID
	}

	if r.Index != nil {
		return strconv.Itoa(*r.Index)
	}

	return "0"
}

// ChangesetRange bounds a changeset list by index. AfterIndex is exclusive,
// LastIndex is inclusive.
type ChangesetRange struct {
	AfterIndex *int
	LastIndex  *int
}
