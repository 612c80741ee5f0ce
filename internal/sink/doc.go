// Package sink delivers decoded snapshots to a time-series store.
//
// The Sink owns the store connection state. EnsureReady blocks, retrying at a
// fixed interval, until the target database exists and is selected; Write
// re-runs it so a store outage heals on the next snapshot.
package sink
