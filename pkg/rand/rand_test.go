package rand

import "testing"

func TestSameSeedSameSequence(t *testing.T) {
	a := New(42)
	b := New(42)

	for i := 0; i < 20; i++ {
		if a.Float64() != b.Float64() {
			t.Fatalf("draw %d diverged between identically seeded sources", i)
		}
	}
}

func TestBernoulliBoundaries(t *testing.T) {
	s := New(1)
	for i := 0; i < 10; i++ {
		if s.Bernoulli(0) {
			t.Fatal("p=0 must never return true")
		}
	}
	for i := 0; i < 10; i++ {
		if !s.Bernoulli(1) {
			t.Fatal("p=1 must always return true")
		}
	}
}

func TestIntnRange(t *testing.T) {
	s := New(7)
	for i := 0; i < 200; i++ {
		n := s.Intn(5)
		if n < 0 || n >= 5 {
			t.Fatalf("Intn(5) returned out-of-range value %d", n)
		}
	}
}
