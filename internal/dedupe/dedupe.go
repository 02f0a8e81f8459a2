// Package dedupe provides shared singleflight groups used to collapse
// concurrent maintenance requests. Only one job runs per key while other
// callers wait for and share its result.
package dedupe

import "golang.org/x/sync/singleflight"

// SweepGroup deduplicates cleanup sweeps. The background loop and the
// maintenance endpoint both go through it, keyed by constants.CleanupLockKey.
var SweepGroup singleflight.Group
