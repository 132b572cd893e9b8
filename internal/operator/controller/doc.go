// Package controller implements the Kubernetes controller for HotStandbyJob
// custom resources.
//
// Each pass rebuilds the pool from the live Jobs and Pods, probes the members
// that are due, and then either creates members to restore the idle target or
// deletes idle members that have been surplus for longer than the scale-down
// delay, never both in the same pass. Busy members are never deleted.
//
// Passes for one HotStandbyJob are serialized by the work queue. Failed passes
// are retried with the queue's per-item exponential backoff, and every pass
// schedules a resync so probe results and surplus timers are re-evaluated
// without new cluster events.
package controller
