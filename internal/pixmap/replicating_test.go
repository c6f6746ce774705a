package pixmap

import "testing"

func TestReplicatingSetWritesPrimaryAndSampledSecondaries(t *testing.T) {
	primary, err := New(2, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	secondary, err := New(2, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	r := NewReplicating(primary, 1.0, secondary)

	if err := r.Set(1, 1, Color{R: 9, G: 8, B: 7}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := r.Get(1, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != (Color{R: 9, G: 8, B: 7}) {
		t.Fatalf("Get(1,1) = %v", got)
	}

	secGot, err := secondary.Get(1, 1)
	if err != nil {
		t.Fatalf("secondary Get: %v", err)
	}
	if secGot != (Color{R: 9, G: 8, B: 7}) {
		t.Fatalf("secondary Get(1,1) = %v, want replicated write with p=1.0", secGot)
	}
}

func TestReplicatingZeroProbabilityNeverReplicates(t *testing.T) {
	primary, err := New(2, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	secondary, err := New(2, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	r := NewReplicating(primary, 0.0, secondary)

	for i := 0; i < 20; i++ {
		if err := r.Set(0, 0, Color{R: 1, G: 2, B: 3}); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	secGot, err := secondary.Get(0, 0)
	if err != nil {
		t.Fatalf("secondary Get: %v", err)
	}
	if secGot != (Color{}) {
		t.Fatalf("secondary Get(0,0) = %v, want untouched zero value with p=0.0", secGot)
	}
}

func TestReplicatingSizeAndRawDelegateToPrimary(t *testing.T) {
	primary, err := New(3, 5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := NewReplicating(primary, 0.5)

	w, h := r.Size()
	if w != 3 || h != 5 {
		t.Fatalf("Size() = %d,%d, want 3,5", w, h)
	}

	buf := make([]Color, 15)
	buf[0] = Color{R: 42}
	r.PutRaw(buf)

	raw := r.GetRaw()
	if raw[0] != (Color{R: 42}) {
		t.Fatalf("GetRaw()[0] = %v, want {R:42}", raw[0])
	}
}

func TestReplicatingPropagatesPrimarySetError(t *testing.T) {
	primary, err := New(2, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := NewReplicating(primary, 1.0)

	if err := r.Set(5, 5, Color{}); err == nil {
		t.Fatalf("expected out-of-bounds error from primary")
	}
}
