package spectrum

import (
	"testing"
)

func TestMarginals_CountInvariant(t *testing.T) {
	s := ramp([]string{"eV", "phi", "delay"}, []int{4, 3, 5})

	it, err := s.Marginals("eV")
	if err != nil {
		t.Fatal(err)
	}

	if got := it.Count(); got != 15 {
		t.Fatalf("Count: got %d, want 15", got)
	}

	n := 0
	for it.Next() {
		n++
	}
	if n != 15 {
		t.Errorf("iterated %d marginals, want 15", n)
	}
}

func TestMarginals_Restartable(t *testing.T) {
	s := ramp([]string{"eV", "phi"}, []int{3, 4})

	it, err := s.Marginals("eV")
	if err != nil {
		t.Fatal(err)
	}

	var firstKeys []string
	var firstSlices [][]float64
	for it.Next() {
		firstKeys = append(firstKeys, it.Coordinate().Key())
		firstSlices = append(firstSlices, it.Marginal())
	}

	it.Reset()

	i := 0
	for it.Next() {
		if key := it.Coordinate().Key(); key != firstKeys[i] {
			t.Errorf("pass 2 coord %d: got %q, want %q", i, key, firstKeys[i])
		}
		m := it.Marginal()
		for j := range m {
			if m[j] != firstSlices[i][j] {
				t.Errorf("pass 2 slice %d differs at %d", i, j)
			}
		}
		i++
	}
	if i != len(firstKeys) {
		t.Errorf("pass 2 yielded %d marginals, want %d", i, len(firstKeys))
	}
}

func TestMarginals_SliceContents(t *testing.T) {
	s := ramp([]string{"eV", "phi"}, []int{3, 4})
	// data[i*4+j] = i*4+j; marginal along eV at phi index j is [j, j+4, j+8].

	it, err := s.Marginals("eV")
	if err != nil {
		t.Fatal(err)
	}

	j := 0
	for it.Next() {
		m := it.Marginal()
		for i, v := range m {
			want := float64(i*4 + j)
			if v != want {
				t.Errorf("marginal %d sample %d: got %g, want %g", j, i, v, want)
			}
		}
		coord := it.Coordinate()
		if phi, ok := coord.Value("phi"); !ok || phi != float64(j) {
			t.Errorf("marginal %d phi: got %g, want %d", j, phi, j)
		}
		if it.Position() != j {
			t.Errorf("marginal %d Position: got %d", j, it.Position())
		}
		j++
	}
}

func TestMarginals_ZeroFreeAxes(t *testing.T) {
	s := ramp([]string{"eV"}, []int{5})

	it, err := s.Marginals("eV")
	if err != nil {
		t.Fatal(err)
	}

	if got := it.Count(); got != 1 {
		t.Fatalf("Count: got %d, want 1", got)
	}

	n := 0
	for it.Next() {
		m := it.Marginal()
		if len(m) != 5 {
			t.Errorf("marginal length: got %d, want 5", len(m))
		}
		if len(it.Coordinate().Values()) != 0 {
			t.Error("coordinate should be empty with zero free axes")
		}
		n++
	}
	if n != 1 {
		t.Errorf("iterated %d marginals, want 1", n)
	}
}

func TestMarginals_UnknownDim(t *testing.T) {
	s := ramp([]string{"eV"}, []int{2})
	if _, err := s.Marginals("phi"); err == nil {
		t.Error("expected error for unknown fit dim")
	}
}

func TestSetMarginal_RoundTrip(t *testing.T) {
	s := ramp([]string{"eV", "phi"}, []int{3, 2})
	out, _ := Zeros(s.Dims(), [][]float64{{0, 1, 2}, {0, 1}})

	itIn, _ := s.Marginals("eV")
	itOut, _ := out.Marginals("eV")
	for itIn.Next() && itOut.Next() {
		itOut.SetMarginal(itIn.Marginal())
	}

	for i := range s.Values() {
		if s.Values()[i] != out.Values()[i] {
			t.Fatalf("round trip differs at %d", i)
		}
	}
}
