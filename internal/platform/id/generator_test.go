package id

import "testing"

func TestUUIDGenerator_NewID(t *testing.T) {
	t.Parallel()

	gen := NewUUIDGenerator()
	first, err := gen.NewID()
	if err != nil {
		t.Fatalf("NewID error: %v", err)
	}
	second, err := gen.NewID()
	if err != nil {
		t.Fatalf("NewID error: %v", err)
	}

	if first == second {
		t.Fatalf("expected distinct ids, got %s twice", first)
	}
	if !IsValid(first) || !IsValid(second) {
		t.Fatalf("expected valid uuids, got %s and %s", first, second)
	}
	if IsValid("not-a-uuid") {
		t.Fatalf("expected invalid uuid to be rejected")
	}
}
