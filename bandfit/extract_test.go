package bandfit

import (
	"math"
	"testing"
)

func TestExtractBandsValues(t *testing.T) {
	g := lineGrid(3)
	for i := 0; i < 3; i++ {
		g.set(i, twoPeakResult(t, -0.5+0.1*float64(i), 0.5, 0.1))
	}

	a, err := ResolveIdentities(g, DefaultIdentityWeights)
	if err != nil {
		t.Fatal(err)
	}
	bands, err := ExtractBands(g, a)
	if err != nil {
		t.Fatal(err)
	}
	if len(bands) != 2 {
		t.Fatalf("got %d bands, want 2", len(bands))
	}

	if bands[0].Label != "a" || bands[1].Label != "b" {
		t.Errorf("labels = %q, %q, want a, b", bands[0].Label, bands[1].Label)
	}

	for i := 0; i < 3; i++ {
		want := -0.5 + 0.1*float64(i)
		if got := bands[0].Center.At(i); !almostEqual(got, want, 1e-12) {
			t.Errorf("band a center[%d] = %v, want %v", i, got, want)
		}
		if got := bands[1].Center.At(i); !almostEqual(got, 0.5, 1e-12) {
			t.Errorf("band b center[%d] = %v, want 0.5", i, got)
		}
		if got := bands[0].Sigma.At(i); !almostEqual(got, 0.1, 1e-12) {
			t.Errorf("band a sigma[%d] = %v, want 0.1", i, got)
		}
		if got := bands[1].Amplitude.At(i); !almostEqual(got, 0.8, 1e-12) {
			t.Errorf("band b amplitude[%d] = %v, want 0.8", i, got)
		}
	}

	dims := bands[0].Center.Dims()
	if len(dims) != 1 || dims[0] != "phi" {
		t.Errorf("band dims = %v, want [phi]", dims)
	}
}

func TestExtractBandsAbsentCellIsNaN(t *testing.T) {
	g := lineGrid(3)
	g.set(0, twoPeakResult(t, -0.5, 0.5, 0.1))
	g.set(2, twoPeakResult(t, -0.5, 0.5, 0.1))

	bands, err := UnpackBands(g)
	if err != nil {
		t.Fatal(err)
	}

	for _, b := range bands {
		for _, s := range []struct {
			name string
			vals []float64
		}{
			{"center", b.Center.Values()},
			{"amplitude", b.Amplitude.Values()},
			{"sigma", b.Sigma.Values()},
		} {
			if !math.IsNaN(s.vals[1]) {
				t.Errorf("band %s %s at absent cell = %v, want NaN", b.Label, s.name, s.vals[1])
			}
			if math.IsNaN(s.vals[0]) || math.IsNaN(s.vals[2]) {
				t.Errorf("band %s %s leaked NaN into present cells", b.Label, s.name)
			}
		}
	}
}

func TestUnpackBandsCustomWeights(t *testing.T) {
	g := lineGrid(2)
	g.set(0, twoPeakResult(t, -0.5, 0.5, 0.1))
	g.set(1, twoPeakResult(t, 0.5, -0.5, 0.1))

	// With all weight on the center the swap must still be recovered.
	bands, err := UnpackBands(g, WithIdentityWeights([3]float64{0, 0, 1}))
	if err != nil {
		t.Fatal(err)
	}

	for _, b := range bands {
		c0, c1 := b.Center.At(0), b.Center.At(1)
		if !almostEqual(c0, c1, 1e-12) {
			t.Errorf("band %s center jumps from %v to %v across the swap", b.Label, c0, c1)
		}
	}
}
