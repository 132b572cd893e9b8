// Package pool tracks the members of each HotStandbyJob's standby pool.
//
// The [Tracker] rebuilds a pool's [State] from the live Job and Pod list on
// every pass and merges in what it remembers from earlier passes: probe
// results, phase transition times and surplus timers. Members that vanished
// from the cluster are dropped; members seen for the first time start out
// Pending. The cluster stays the source of truth, so missed or duplicate
// watch events never leave the tracker out of sync.
package pool
