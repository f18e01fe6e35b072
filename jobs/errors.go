package jobs

import "errors"

// ErrRunInProgress is returned by TryRun while another ingestion run holds
// the guard. The request is rejected, never queued.
var ErrRunInProgress = errors.New("an ingestion run is already in progress")
