package imodels

import (
	"context"
	"fmt"
	"iter"
)

// PageFetcher fetches the page addressed by url.
type PageFetcher[T any] func(ctx context.Context, url string) (*EntityPage[T], error)

// EntityListIterator lazily walks a paged list, following next links until
// the server stops returning one. It is single pass: iterating again requires
// a new iterator, which sends the requests again.
type EntityListIterator[T any] struct {
	ctx     context.Context //nolint:containedctx // iterator outlives the call that created it
	fetch   PageFetcher[T]
	nextURL string
	started bool
	buffer  []T
	err     error
}

// NewEntityListIterator creates an iterator whose first page is firstPageURL.
// No request is sent until an item is requested.
func NewEntityListIterator[T any](ctx context.Context, fetch PageFetcher[T], firstPageURL string) *EntityListIterator[T] {
	return &EntityListIterator[T]{
		ctx:     ctx,
		fetch:   fetch,
		nextURL: firstPageURL,
	}
}

// NewErrorIterator returns an iterator that yields only err.
func NewErrorIterator[T any](err error) *EntityListIterator[T] {
	return &EntityListIterator[T]{err: err, started: true}
}

// HasNext reports whether another item is available, fetching pages as needed.
// It returns false when the list is exhausted or a fetch failed; see Err.
func (it *EntityListIterator[T]) HasNext() bool {
	for len(it.buffer) == 0 {
		if it.err != nil {
			return false
		}

		if it.started && it.nextURL == "" {
			return false
		}

		it.fetchPage()
	}

	return true
}

func (it *EntityListIterator[T]) fetchPage() {
	url := it.nextURL
	it.started = true
	it.nextURL = ""

	if url == "" {
		return
	}

	page, err := it.fetch(it.ctx, url)
	if err != nil {
		it.err = fmt.Errorf("fetching page: %w", err)

		return
	}

	it.buffer = page.Entities

	if page.Next != nil {
		it.nextURL = page.Next.Href
	}
}

// Next returns the next item.
func (it *EntityListIterator[T]) Next() (T, error) {
	var zero T

	if !it.HasNext() {
		if it.err != nil {
			return zero, it.err
		}

		return zero, ErrNoMoreItems
	}

	item := it.buffer[0]
	it.buffer = it.buffer[1:]

	return item, nil
}

// Err returns the error that stopped the iteration, if any.
func (it *EntityListIterator[T]) Err() error {
	return it.err
}

// All returns a range-over-func sequence of the remaining items. A fetch
// failure is yielded once as the final element.
func (it *EntityListIterator[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for it.HasNext() {
			item, _ := it.Next()
			if !yield(item, nil) {
				return
			}
		}

		if it.err != nil {
			var zero T

			yield(zero, it.err)
		}
	}
}

// ToArray drains the iterator.
func (it *EntityListIterator[T]) ToArray() ([]T, error) {
	var items []T

	for it.HasNext() {
		item, _ := it.Next()
		items = append(items, item)
	}

	if it.err != nil {
		return items, it.err
	}

	return items, nil
}

// Take returns at most n items without fetching pages beyond those needed.
func (it *EntityListIterator[T]) Take(n int) ([]T, error) {
	items := make([]T, 0, max(n, 0))

	for len(items) < n && it.HasNext() {
		item, _ := it.Next()
		items = append(items, item)
	}

	if it.err != nil {
		return items, it.err
	}

	return items, nil
}
