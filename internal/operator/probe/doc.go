// Package probe classifies a pool member's pod as idle, busy or unknown.
//
// The [Executor] dispatches on the configured busy probe mode:
//
//   - exec: runs a command inside the pod over the SPDY exec transport
//   - http: issues a GET against the pod IP
//   - annotation: reads a pod annotation maintained by the workload
//   - redis: reads the status the workload reports into a Redis hash
//
// Every transport failure, timeout or missing report resolves to [Unknown]
// together with an error describing why. Probes never mutate cluster objects.
package probe
