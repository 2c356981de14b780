// Package imodelsclient provides the primary entry point for constructing an
// iModels API client that implements the imodels.Client interface.
//
// It layers configuration, HTTP transport with retries, authorization and
// content transfer on top of the resource interfaces and types defined in the
// imodels package. Most applications should import imodelsclient to build a
// client, then use the returned imodels.Client to access resource-specific
// clients, for example IModels(), Changesets() or Checkpoints().
//
// Quick start
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
//
//	  cli, err := imodelsclient.New(ctx, &imodels.Config{
//	    Authorization: imodels.BearerToken("eyJhbGciOi..."),
//	  })
//	  if err != nil { log.Fatal(err) }
//	  defer cli.Close()
//
//	  // Nearest checkpoint that can be downloaded as a single file.
//	  checkpoint, err := cli.Checkpoints().GetCurrentOrPreceding(ctx, "imodel-id",
//	    imodels.ChangesetByIndex(42), imodels.HasV1Checkpoint)
//	  if err != nil { log.Fatal(err) }
//	  _ = checkpoint
//	}
//
// # Endpoint
//
// An empty Config.APIEndpoint selects the public API. Endpoints without a
// scheme get "https://" and trailing slashes are removed.
//
// # Retries
//
// When Config.RetryPolicy is nil, New installs imodels.DefaultRetryPolicy.
// Set Config.DisableRetries to send every request exactly once.
package imodelsclient
