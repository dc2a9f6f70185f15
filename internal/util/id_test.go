package util

import (
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	id := GenerateID("")
	if len(id) != 36 || strings.Count(id, "-") != 4 {
		t.Errorf("GenerateID(\"\") = %q, want canonical UUID form", id)
	}

	prefixed := GenerateID("course")
	if !strings.HasPrefix(prefixed, "course_") {
		t.Errorf("GenerateID(\"course\") = %q, want course_ prefix", prefixed)
	}
	if rest := strings.TrimPrefix(prefixed, "course_"); len(rest) != 36 {
		t.Errorf("GenerateID(\"course\") suffix = %q, want UUID", rest)
	}
}

func TestGenerateIDUnique(t *testing.T) {
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		id := GenerateID("q")
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
