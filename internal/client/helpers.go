package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fivetwenty-io/imodels-client/internal/constants"
	http_internal "github.com/fivetwenty-io/imodels-client/internal/http"
	"github.com/fivetwenty-io/imodels-client/pkg/imodels"
)

// Static errors for err113 compliance.
var (
	ErrMissingEntityKey = errors.New("response does not contain expected entity")
)

// decodeEntity unmarshals the entity wrapped under key, e.g. {"changeset": {...}}.
func decodeEntity[T any](body []byte, key string) (*T, error) {
	var wrapper map[string]json.RawMessage

	err := json.Unmarshal(body, &wrapper)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", key, err)
	}

	raw, ok := wrapper[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingEntityKey, key)
	}

	var entity T

	err = json.Unmarshal(raw, &entity)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", key, err)
	}

	return &entity, nil
}

// decodePage unmarshals a list response whose entities live under key.
func decodePage[T any](body []byte, key string) (*imodels.EntityPage[T], error) {
	var wrapper map[string]json.RawMessage

	err := json.Unmarshal(body, &wrapper)
	if err != nil {
		return nil, fmt.Errorf("parsing %s list response: %w", key, err)
	}

	page := &imodels.EntityPage[T]{}

	if raw, ok := wrapper[key]; ok {
		err = json.Unmarshal(raw, &page.Entities)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", key, err)
		}
	}

	if raw, ok := wrapper["_links"]; ok {
		var links imodels.ListLinks

		err = json.Unmarshal(raw, &links)
		if err != nil {
			return nil, fmt.Errorf("parsing %s links: %w", key, err)
		}

		if links.Next != nil && links.Next.Href != "" {
			page.Next = links.Next
		}
	}

	return page, nil
}

// listEntities returns a lazy iterator over the list at path. Entities are
// read from key; the Prefer header follows params.Representation.
func listEntities[T any](
	ctx context.Context,
	httpClient *http_internal.Client,
	path string,
	params *imodels.QueryParams,
	key string,
) *imodels.EntityListIterator[T] {
	firstPage := httpClient.BaseURL() + path
	if query := params.ToValues(); len(query) > 0 {
		firstPage += "?" + query.Encode()
	}

	headers := imodels.Headers{
		constants.HeaderPrefer: imodels.StaticHeader(params.PreferHeader()),
	}

	fetch := func(ctx context.Context, pageURL string) (*imodels.EntityPage[T], error) {
		resp, err := httpClient.GetURL(ctx, pageURL, headers)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", key, err)
		}

		return decodePage[T](resp.Body, key)
	}

	return imodels.NewEntityListIterator(ctx, fetch, firstPage)
}
