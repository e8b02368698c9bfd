package bandfit_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-arpes/bandfit"
	"github.com/cwbudde/algo-arpes/spectrum"
)

func ExampleParseShape() {
	shape, err := bandfit.ParseShape("lorentzian")
	if err != nil {
		panic(err)
	}
	fmt.Println(shape)
	// Output:
	// lorentzian
}

func ExampleFitBands() {
	// A single band drifting across a small angle scan.
	phi := []float64{0, 0.1, 0.2}
	eV := make([]float64, 81)
	for j := range eV {
		eV[j] = -1 + 2*float64(j)/80
	}

	data := make([]float64, len(phi)*len(eV))
	for i := range phi {
		center := -0.3 + 0.5*phi[i]
		for j, e := range eV {
			arg := (e - center) / 0.08
			data[i*len(eV)+j] = 0.05 + math.Exp(-arg*arg/2)
		}
	}
	cut, err := spectrum.New([]string{"phi", "eV"}, [][]float64{phi, eV}, data)
	if err != nil {
		panic(err)
	}

	landscape, err := bandfit.FitBands(cut, "eV", []bandfit.BandSpec{
		{Name: "band_", Shape: bandfit.ShapeGaussian},
	})
	if err != nil {
		panic(err)
	}

	bands, err := bandfit.UnpackBands(landscape.Results)
	if err != nil {
		panic(err)
	}

	b := bands[0]
	fmt.Printf("%s: %.2f %.2f %.2f\n",
		b.Label, b.Center.At(0), b.Center.At(1), b.Center.At(2))
	// Output:
	// band: -0.30 -0.25 -0.20
}
