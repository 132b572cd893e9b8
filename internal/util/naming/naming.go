package naming

import (
	"strconv"
	"strings"
)

const memberInfix = "-workload-"

// MaxNameLength is the longest name a Job may carry so that it fits into a label value.
const MaxNameLength = 63

// Member returns the Job name of the member with the given ordinal.
func Member(pool string, ordinal int64) string {
	return MemberPrefix(pool) + strconv.FormatInt(ordinal, 10)
}

// MemberPrefix returns the name prefix shared by all members of a pool.
func MemberPrefix(pool string) string {
	return pool + memberInfix
}

// ParseOrdinal extracts the ordinal from a member name.
// ok is false for names that Member could not have produced for this pool.
func ParseOrdinal(pool, name string) (ordinal int64, ok bool) {
	suffix, found := strings.CutPrefix(name, MemberPrefix(pool))
	if !found || suffix == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// HighestOrdinal returns the largest ordinal among names, or 0 when none parse.
func HighestOrdinal(pool string, names []string) int64 {
	var highest int64
	for _, name := range names {
		if n, ok := ParseOrdinal(pool, name); ok && n > highest {
			highest = n
		}
	}
	return highest
}
