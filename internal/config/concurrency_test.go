package config

import "testing"

func TestResolveWorkerCount(t *testing.T) {
	cases := []struct {
		setting string
		numCPU  int
		want    int
	}{
		{"auto", 32, 16},
		{"auto", 4, 4},
		{"", 8, 8},
		{"auto-full", 4, 4},
		{"auto-conservative", 8, 2},
		{"auto-conservative", 1, 1},
		{"6", 32, 6},
	}
	for _, c := range cases {
		got, err := ResolveWorkerCount(c.setting, c.numCPU)
		if err != nil {
			t.Fatalf("ResolveWorkerCount(%q, %d) error: %v", c.setting, c.numCPU, err)
		}
		if got != c.want {
			t.Errorf("ResolveWorkerCount(%q, %d) = %d, want %d", c.setting, c.numCPU, got, c.want)
		}
	}
}

func TestResolveWorkerCount_Invalid(t *testing.T) {
	if _, err := ResolveWorkerCount("not-a-number", 8); err == nil {
		t.Error("expected error for invalid setting")
	}
	if _, err := ResolveWorkerCount("0", 8); err == nil {
		t.Error("expected error for zero override")
	}
}

func TestResolveKeywordThreads(t *testing.T) {
	cases := []struct {
		setting string
		numCPU  int
		want    int
	}{
		{"auto", 16, 2},
		{"auto", 10, 3},
		{"auto", 4, 4},
		{"auto-aggressive", 2, 4},
		{"auto-conservative", 32, 1},
		{"3", 32, 3},
	}
	for _, c := range cases {
		got, err := ResolveKeywordThreads(c.setting, c.numCPU)
		if err != nil {
			t.Fatalf("ResolveKeywordThreads(%q, %d) error: %v", c.setting, c.numCPU, err)
		}
		if got != c.want {
			t.Errorf("ResolveKeywordThreads(%q, %d) = %d, want %d", c.setting, c.numCPU, got, c.want)
		}
	}
}
