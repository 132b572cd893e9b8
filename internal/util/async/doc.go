// Package async provides bounded parallel task execution.
//
// [RunParallel] fans independent operations out over a fixed number of
// goroutines and waits for all of them. The operator uses it to probe pool
// members concurrently within one reconcile pass.
package async
