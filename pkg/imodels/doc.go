// Package imodels provides types, interfaces, and helpers for working with the
// iModels API: versioned BIM/CAD containers together with their briefcases,
// changesets, named versions, checkpoints and locks.
//
// # Overview
//
// The imodels package defines the domain types (IModel, Briefcase, Changeset,
// NamedVersion, Checkpoint, Lock) and the interfaces for resource-oriented
// clients (e.g., ChangesetsClient, LocksClient). A concrete implementation is
// provided by the imodelsclient package, which wires configuration, transport,
// retries, authorization and caching. Most consumers should import
// imodelsclient to construct a client and then use the interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/imodels-client/pkg/imodels"
//	  "github.com/fivetwenty-io/imodels-client/pkg/imodelsclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := imodelsclient.New(ctx, &imodels.Config{
//	    Authorization: imodels.BearerToken("..."),
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  it := cli.Changesets().List(ctx, "imodel-id", imodels.NewQueryParams().WithTop(100))
//	  first, err := it.Take(10)
//	  if err != nil { log.Fatal(err) }
//	  _ = first
//	}
//
// # Pagination
//
// Every list operation returns an EntityListIterator. Iterators are lazy: no
// request is sent until the first item is requested, and following pages are
// fetched only while items are consumed. Use ToArray to drain an iterator or
// Take to stop after a fixed number of items.
//
// # Checkpoints
//
// CheckpointsClient.GetCurrentOrPreceding walks the changeset history
// backwards from a changeset reference until it finds a checkpoint accepted
// by a predicate. HasV1Checkpoint and HasV2Checkpoint are the predicates used
// for single-file and container-backed checkpoints.
//
// # Errors
//
// Failed responses are parsed into *Error values carrying a stable ErrorCode.
// Helpers such as IsNotFound and HasCode make it easy to branch on common
// cases. Retries for transient failures are applied transparently by the
// transport according to the configured RetryPolicy.
package imodels
