// Package retry repeats Kubernetes and Redis calls that fail transiently.
//
// [Do] drives an exponential [wait.Backoff]; [OnlyIf] with [IsRetryable]
// limits the retries to API errors that a later attempt can fix.
//
// [wait.Backoff]: https://pkg.go.dev/k8s.io/apimachinery/pkg/util/wait#Backoff
package retry
