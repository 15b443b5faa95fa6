package category

import "testing"

func TestIsValid(t *testing.T) {
	for _, c := range All() {
		if !c.IsValid() {
			t.Errorf("%q.IsValid() = false, want true", c)
		}
	}

	invalid := []Category{"", "hotel", "tour", "LODGING", "events"}
	for _, c := range invalid {
		if c.IsValid() {
			t.Errorf("%q.IsValid() = true, want false", c)
		}
	}
}

func TestAllOrder(t *testing.T) {
	want := []Category{Lodging, Attraction, Food, Event}
	got := All()
	if len(got) != len(want) {
		t.Fatalf("All() returned %d categories, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("All()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAllReturnsCopy(t *testing.T) {
	first := All()
	first[0] = "mutated"
	if All()[0] != Lodging {
		t.Error("mutating All() result leaked into subsequent calls")
	}
}
