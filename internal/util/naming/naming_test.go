package naming

import "testing"

func TestMember(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{name: "first", got: Member("gpu-pool", 1), expected: "gpu-pool-workload-1"},
		{name: "large ordinal", got: Member("gpu-pool", 1024), expected: "gpu-pool-workload-1024"},
		{name: "prefix", got: MemberPrefix("web"), expected: "web-workload-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, tt.got)
			}
		})
	}
}

func TestParseOrdinal(t *testing.T) {
	tests := []struct {
		name   string
		pool   string
		member string
		want   int64
		wantOK bool
	}{
		{name: "valid", pool: "web", member: "web-workload-7", want: 7, wantOK: true},
		{name: "round trip", pool: "a-b", member: Member("a-b", 42), want: 42, wantOK: true},
		{name: "other pool", pool: "web", member: "api-workload-7"},
		{name: "pool name is prefix of another", pool: "web", member: "web-2-workload-3"},
		{name: "missing ordinal", pool: "web", member: "web-workload-"},
		{name: "not a number", pool: "web", member: "web-workload-x1"},
		{name: "negative", pool: "web", member: "web-workload--1"},
		{name: "manual job", pool: "web", member: "web-debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseOrdinal(tt.pool, tt.member)
			if ok != tt.wantOK {
				t.Fatalf("ParseOrdinal(%q, %q) ok = %v, want %v", tt.pool, tt.member, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseOrdinal(%q, %q) = %d, want %d", tt.pool, tt.member, got, tt.want)
			}
		})
	}
}

func TestHighestOrdinal(t *testing.T) {
	names := []string{"web-workload-3", "web-workload-12", "web-workload-9", "other-workload-99", "web-manual"}
	if got := HighestOrdinal("web", names); got != 12 {
		t.Errorf("Expected 12, got %d", got)
	}
	if got := HighestOrdinal("web", nil); got != 0 {
		t.Errorf("Expected 0 for no names, got %d", got)
	}
}
