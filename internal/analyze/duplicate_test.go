package analyze

import (
	"strings"
	"sync"
	"testing"
)

func TestDetectorCheckAndRegister(t *testing.T) {
	t.Parallel()

	base := strings.Repeat("the quick brown fox jumps over the lazy dog ", 10)

	t.Run("first sighting is never a duplicate", func(t *testing.T) {
		t.Parallel()

		d := NewDetector()
		if d.CheckAndRegister(base) {
			t.Error("CheckAndRegister() = true for first body, want false")
		}
		if got := d.Size(); got != 1 {
			t.Errorf("Size() = %d, want 1", got)
		}
	})

	t.Run("identical body registered twice is a duplicate", func(t *testing.T) {
		t.Parallel()

		d := NewDetector()
		d.CheckAndRegister(base)
		if !d.CheckAndRegister(base) {
			t.Error("CheckAndRegister() = false for identical body, want true")
		}
	})

	t.Run("case and whitespace differences do not defeat detection", func(t *testing.T) {
		t.Parallel()

		d := NewDetector()
		d.CheckAndRegister(base)
		mangled := strings.ToUpper(strings.ReplaceAll(base, " ", "\n\t "))
		if !d.CheckAndRegister(mangled) {
			t.Error("CheckAndRegister() = false for reformatted body, want true")
		}
	})

	t.Run("unrelated bodies are not duplicates", func(t *testing.T) {
		t.Parallel()

		d := NewDetector()
		d.CheckAndRegister(base)
		other := strings.Repeat("entirely different subject matter about gardening tips ", 10)
		if d.CheckAndRegister(other) {
			t.Error("CheckAndRegister() = true for unrelated body, want false")
		}
		if got := d.Size(); got != 2 {
			t.Errorf("Size() = %d, want 2", got)
		}
	})

	t.Run("short bodies are neither compared nor registered", func(t *testing.T) {
		t.Parallel()

		d := NewDetector()
		short := "tiny page"
		if d.CheckAndRegister(short) {
			t.Error("CheckAndRegister() = true for short body, want false")
		}
		if d.CheckAndRegister(short) {
			t.Error("CheckAndRegister() = true for repeated short body, want false")
		}
		if got := d.Size(); got != 0 {
			t.Errorf("Size() = %d, want 0", got)
		}
	})

	t.Run("duplicates are not re-registered", func(t *testing.T) {
		t.Parallel()

		d := NewDetector()
		d.CheckAndRegister(base)
		d.CheckAndRegister(base)
		d.CheckAndRegister(base)
		if got := d.Size(); got != 1 {
			t.Errorf("Size() = %d, want 1", got)
		}
	})

	t.Run("concurrent registration is safe", func(t *testing.T) {
		t.Parallel()

		d := NewDetector()
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				d.CheckAndRegister(base)
			}()
		}
		wg.Wait()

		// Exactly one registration survives regardless of arrival order.
		if got := d.Size(); got != 1 {
			t.Errorf("Size() = %d after concurrent identical registrations, want 1", got)
		}
	})
}

func TestSampledSimilarity(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("abcdefghij", 50)

	tests := []struct {
		name string
		a    string
		b    string
		dup  bool
	}{
		{name: "identical strings", a: long, b: long, dup: true},
		{name: "disjoint strings", a: long, b: strings.Repeat("zyxwvutsrq", 50), dup: false},
		{name: "under length floor", a: "short", b: "short", dup: false},
		{name: "shared prefix with short tail difference", a: long, b: long + " trailing extra words do not matter", dup: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := sampledSimilarity(tt.a, tt.b) > duplicateThreshold
			if got != tt.dup {
				t.Errorf("sampledSimilarity(...) > threshold = %v, want %v", got, tt.dup)
			}
		})
	}
}
