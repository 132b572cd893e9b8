// Package testing provides builders and fakes shared by the operator's unit tests.
//
//   - PoolBuilder: fluent, immutable builder for HotStandbyJob objects
//   - MemberBuilder: member Jobs and their Pods in a given lifecycle state
//   - FakeProber: a probe.Prober with per-member scripted results
//
// Usage:
//
//	hsj := testing.NewPoolBuilder("pool").
//	    WithIdleTarget(2).
//	    WithBounds(0, 5).
//	    Build()
//
//	objs := testing.NewMemberBuilder(hsj, 1).Ready().Objects()
package testing
