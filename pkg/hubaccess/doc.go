// Package hubaccess adapts an imodels.Client to the needs of a host
// platform. FrontendAccess exposes the read-only operations of a viewer and
// BackendAccess adds briefcases, pushing changesets, checkpoint downloads
// and locks.
//
// Every failure goes through an ErrorAdapter, which reclassifies API errors
// into *imodels.DomainError values using the operation that produced them.
// For example RateLimitExceeded means "too many briefcases per minute" only
// while acquiring a briefcase, and ConflictWithAnotherUser during a lock
// update carries the conflicting locks:
//
//	err := access.AcquireLocks(ctx, iModelID, briefcaseID, "", imodels.LockLevelExclusive, ids)
//	domainErr := &imodels.DomainError{}
//	if errors.As(err, &domainErr) && domainErr.Code == imodels.DomainCodeLockOwnedByAnotherBriefcase {
//	  for _, lock := range domainErr.ConflictingLocks {
//	    log.Printf("%s is held by %v", lock.ObjectID, lock.BriefcaseIDs)
//	  }
//	}
//
// Authorization failures, request validation failures and cancelled
// transfers are returned unchanged.
package hubaccess
