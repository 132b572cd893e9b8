// Package naming provides consistent names for pool member Jobs.
//
// Members follow the pattern {pool}-workload-{n}, where n is a per-pool
// ordinal that only ever grows. Reusing the same ordinal on a retried create
// hits AlreadyExists instead of producing a duplicate member.
package naming
