package client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

// changesetFetcher returns the changeset a reference points to.
type changesetFetcher interface {
	fetchChangeset(ctx context.Context, iModelID string, ref imodels.ChangesetRef) (*imodels.Changeset, error)
}

// ChangesetIndexResolver turns changeset references into indexes.
type ChangesetIndexResolver struct {
	changesets changesetFetcher
}

// NewChangesetIndexResolver creates a resolver that looks changesets up through fetcher.
func NewChangesetIndexResolver(fetcher changesetFetcher) *ChangesetIndexResolver {
	return &ChangesetIndexResolver{changesets: fetcher}
}

// ResolveIndex returns the index of the referenced changeset. The baseline
// and explicit indexes resolve without a request; an id alone is looked up.
func (r *ChangesetIndexResolver) ResolveIndex(ctx context.Context, iModelID string, ref imodels.ChangesetRef) (int, error) {
	if ref.IsBaseline() {
		return 0, nil
	}

	if ref.Index != nil {
		if *ref.Index < 0 {
			return 0, &imodels.Error{
				Code:    imodels.ErrorCodeChangesetNotFound,
				Message: "Changeset index must not be negative: " + strconv.Itoa(*ref.Index),
			}
		}

		return *ref.Index, nil
	}

	changeset, err := r.changesets.fetchChangeset(ctx, iModelID, ref)
	if err != nil {
		return 0, fmt.Errorf("resolving changeset index: %w", err)
	}

	return changeset.Index, nil
}
