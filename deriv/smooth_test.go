package deriv

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-arpes/spectrum"
)

func TestSmoothGaussianPreservesConstant(t *testing.T) {
	s := line1D(t, 64, func(float64) float64 { return 2.5 })

	out, err := SmoothGaussian(s, map[string]float64{"eV": 0.05}, 2)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range out.Values() {
		if !almostEqual(v, 2.5, 1e-12) {
			t.Errorf("sample %d = %v, want 2.5", i, v)
		}
	}
}

func TestSmoothGaussianConservesIntensity(t *testing.T) {
	s := line1D(t, 201, func(x float64) float64 {
		return math.Exp(-x * x / (2 * 0.05 * 0.05))
	})

	out, err := SmoothGaussian(s, map[string]float64{"eV": 0.03}, 1)
	if err != nil {
		t.Fatal(err)
	}

	sum := func(vals []float64) float64 {
		total := 0.0
		for _, v := range vals {
			total += v
		}
		return total
	}

	if got, want := sum(out.Values()), sum(s.Values()); !almostEqual(got, want, 1e-9*want) {
		t.Errorf("total intensity %v, want %v", got, want)
	}
}

func TestSmoothGaussianWidensPeak(t *testing.T) {
	s := line1D(t, 201, func(x float64) float64 {
		return math.Exp(-x * x / (2 * 0.05 * 0.05))
	})

	out, err := SmoothGaussian(s, map[string]float64{"eV": 0.05}, 3)
	if err != nil {
		t.Fatal(err)
	}

	x, _ := s.Coord("eV")
	variance := func(vals []float64) float64 {
		w, wx, wxx := 0.0, 0.0, 0.0
		for i, v := range vals {
			w += v
			wx += v * x[i]
			wxx += v * x[i] * x[i]
		}
		mean := wx / w
		return wxx/w - mean*mean
	}

	if got, orig := variance(out.Values()), variance(s.Values()); got <= orig {
		t.Errorf("smoothed variance %v not larger than original %v", got, orig)
	}

	maxIdx := 0
	for i, v := range out.Values() {
		if v > out.Values()[maxIdx] {
			maxIdx = i
		}
	}
	if !almostEqual(x[maxIdx], 0, 0.02) {
		t.Errorf("peak drifted to %v", x[maxIdx])
	}
}

func TestSmoothGaussianTwoAxes(t *testing.T) {
	s, _, _ := ridge2D(t)

	out, err := SmoothGaussian(s, map[string]float64{"phi": 0.03, "eV": 0.02}, 1)
	if err != nil {
		t.Fatal(err)
	}

	if got, want := out.Len(), s.Len(); got != want {
		t.Fatalf("length changed: %d != %d", got, want)
	}
	dims := out.Dims()
	if len(dims) != 2 || dims[0] != "phi" || dims[1] != "eV" {
		t.Errorf("dims changed: %v", dims)
	}
	if !out.IsFinite() {
		t.Error("smoothing produced non-finite samples")
	}
}

func TestSmoothGaussianErrors(t *testing.T) {
	s := line1D(t, 16, math.Sin)

	if _, err := SmoothGaussian(s, map[string]float64{"eV": 0.1}, 0); !errors.Is(err, ErrRepeat) {
		t.Errorf("repeat 0: got %v", err)
	}
	if _, err := SmoothGaussian(s, map[string]float64{"eV": -1}, 1); !errors.Is(err, ErrWidth) {
		t.Errorf("negative width: got %v", err)
	}
	if _, err := SmoothGaussian(s, map[string]float64{"theta": 0.1}, 1); err == nil {
		t.Error("unknown axis should fail")
	}
}

func TestConvolveFFTMatchesDirect(t *testing.T) {
	// A kernel long enough to push convolveReflect onto the FFT path.
	kernel := gaussianKernel(0.5, 0.01)
	if len(kernel) < 401 {
		t.Fatalf("kernel too short to exercise the FFT path: %d", len(kernel))
	}

	row := make([]float64, 64)
	for i := range row {
		row[i] = math.Sin(0.3*float64(i)) + 0.1*float64(i%7)
	}

	got, err := convolveReflect(row, kernel)
	if err != nil {
		t.Fatal(err)
	}

	radius := len(kernel) / 2
	ext := reflectPad(row, radius)
	for i := range row {
		want := 0.0
		for t2, kv := range kernel {
			want += kv * ext[i+t2]
		}
		if !almostEqual(got[i], want, 1e-9) {
			t.Fatalf("sample %d: fft %v, direct %v", i, got[i], want)
		}
	}
}

func BenchmarkSmoothGaussian(b *testing.B) {
	const n = 2048
	x := make([]float64, n)
	data := make([]float64, n)
	for i := range x {
		x[i] = float64(i) * 0.001
		data[i] = math.Sin(0.05 * float64(i))
	}
	s, err := spectrum.New([]string{"eV"}, [][]float64{x}, data)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := SmoothGaussian(s, map[string]float64{"eV": 0.05}, 1); err != nil {
			b.Fatal(err)
		}
	}
}
