package bandfit

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-arpes/spectrum"
)

// parabolicBand builds a noiseless cut of a single parabolic band with
// the given effective mass, sampled on one momentum branch so each
// constant-energy slice carries exactly one peak.
func parabolicBand(t *testing.T, mass float64) *spectrum.Spectrum {
	t.Helper()

	curvature := HbarSqPerElectronMassAngstromSq / (2 * mass)

	const (
		nE = 20
		nK = 121
	)
	k := make([]float64, nK)
	for j := range k {
		k[j] = 0.2 + 0.8*float64(j)/float64(nK-1)
	}
	eV := make([]float64, nE)
	for i := range eV {
		kc := 0.3 + 0.6*float64(i)/float64(nE-1)
		eV[i] = curvature * kc * kc
	}

	data := make([]float64, nE*nK)
	for i := 0; i < nE; i++ {
		kc := math.Sqrt(eV[i] / curvature)
		for j := 0; j < nK; j++ {
			data[i*nK+j] = 0.05 + gaussianLine(k[j], 1.0, kc, 0.04)
		}
	}

	s, err := spectrum.New([]string{"eV", "kp"}, [][]float64{eV, k}, data)
	if err != nil {
		t.Fatal(err)
	}

	return s
}

func TestFitEffectiveMass(t *testing.T) {
	for _, mass := range []float64{0.5, 2.0} {
		got, err := FitEffectiveMass(parabolicBand(t, mass), "eV", "kp")
		if err != nil {
			t.Fatalf("mass %v: %v", mass, err)
		}
		if !almostEqual(got, mass, 0.05*mass) {
			t.Errorf("effective mass = %v, want %v", got, mass)
		}
	}
}

func TestFitEffectiveMassRequiresTwoDims(t *testing.T) {
	s, err := spectrum.New([]string{"kp"}, [][]float64{{0, 1, 2}}, []float64{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := FitEffectiveMass(s, "eV", "kp"); !errors.Is(err, ErrNotTwoDim) {
		t.Errorf("1D input: got %v, want ErrNotTwoDim", err)
	}
}

func TestFitEffectiveMassWrongDims(t *testing.T) {
	s := parabolicBand(t, 1.0)

	if _, err := FitEffectiveMass(s, "temperature", "kp"); err == nil {
		t.Error("unknown energy dimension should fail")
	}
}
