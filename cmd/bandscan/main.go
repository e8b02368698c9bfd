// Command bandscan fits band dispersions across a spectrum and tabulates
// the per-band parameters.
//
// Usage:
//
//	bandscan -pattern bands.json5 -data cut.json5 [flags]
//	bandscan -synth [flags]
//
// The pattern file lists the bands to fit, JSON5 syntax:
//
//	{
//		bands: [
//			// sequential band: guessed from the data
//			{name: "a_", shape: "gaussian"},
//			// patterned band: centers anchored at control points
//			{name: "b_", shape: "lorentzian", dims: ["hv"], points: [[20, -0.4], [25, -0.1]]},
//		],
//	}
//
// The data file carries the spectrum as axis names, axis coordinates,
// and row-major values:
//
//	{dims: ["phi", "eV"], coords: [[...], [...]], data: [...]}
//
// Examples:
//
//	bandscan -synth
//	bandscan -pattern bands.json5 -data cut.json5 -fitdim eV -plot bands.png
//	bandscan -pattern bands.json5 -data scan.json5 -stray 0.1 -workers 8
package main

import (
	"flag"
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	json "github.com/KevinWang15/go-json5"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/cwbudde/algo-arpes/bandfit"
	"github.com/cwbudde/algo-arpes/spectrum"
)

type patternFile struct {
	Bands []bandEntry `json:"bands"`
}

type bandEntry struct {
	Name   string       `json:"name"`
	Shape  string       `json:"shape"`
	Dims   []string     `json:"dims"`
	Points [][2]float64 `json:"points"`
	Stray  float64      `json:"stray"`
}

type dataFile struct {
	Dims   []string    `json:"dims"`
	Coords [][]float64 `json:"coords"`
	Data   []float64   `json:"data"`
}

func main() {
	patternPath := flag.String("pattern", "", "JSON5 band pattern file")
	dataPath := flag.String("data", "", "JSON5 spectrum file")
	synth := flag.Bool("synth", false, "fit a built-in synthetic two-band scan instead of input data")
	fitDim := flag.String("fitdim", "eV", "axis to fit line shapes along")
	mode := flag.String("mode", "auto", "sweep mode: auto, sequential, or patterned")
	stray := flag.Float64("stray", 0.05, "center constraint half-width for patterned bands")
	workers := flag.Int("workers", 0, "worker count for patterned sweeps (0 = all CPUs)")
	noBG := flag.Bool("no-bg", false, "fit without a background band")
	quiet := flag.Bool("quiet", false, "suppress progress output")
	plotPath := flag.String("plot", "", "write a band-center plot to this PNG file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: bandscan [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Fits band dispersions across a spectrum and tabulates the results.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  bandscan -synth\n")
		fmt.Fprintf(os.Stderr, "  bandscan -pattern bands.json5 -data cut.json5 -plot bands.png\n")
	}
	flag.Parse()

	data, err := loadData(*dataPath, *synth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	entries, err := loadPattern(*patternPath, *synth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	opts := []bandfit.Option{bandfit.WithBackground(!*noBG)}
	if *workers > 0 {
		opts = append(opts, bandfit.WithWorkers(*workers))
	}
	if !*quiet {
		opts = append(opts, bandfit.WithProgress(func(done, total int, desc string) {
			fmt.Fprintf(os.Stderr, "\r%s %d/%d", desc, done, total)
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		}))
	}

	landscape, err := runSweep(data, *fitDim, *mode, entries, *stray, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	bands, err := bandfit.UnpackBands(landscape.Results)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	printBands(landscape.Results, bands)

	if *plotPath != "" {
		if err := plotBands(landscape.Results, bands, *fitDim, *plotPath); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", *plotPath)
	}
}

// runSweep dispatches to the sequential or patterned engine. Mode auto
// picks the patterned engine when every band carries control points and
// the sequential one when none does; mixed pattern files are rejected.
func runSweep(data *spectrum.Spectrum, fitDim, mode string, entries []bandEntry, stray float64, opts []bandfit.Option) (*bandfit.Landscape, error) {
	patterned := 0
	for _, e := range entries {
		if len(e.Points) > 0 {
			patterned++
		}
	}

	switch mode {
	case "auto":
	case "sequential":
		if patterned > 0 {
			return nil, fmt.Errorf("sequential mode, but %d bands carry control points", patterned)
		}
	case "patterned":
		if patterned < len(entries) {
			return nil, fmt.Errorf("patterned mode, but %d bands have no control points", len(entries)-patterned)
		}
	default:
		return nil, fmt.Errorf("unknown mode %q (want auto, sequential, or patterned)", mode)
	}

	switch patterned {
	case 0:
		specs := make([]bandfit.BandSpec, len(entries))
		for i, e := range entries {
			shape, err := bandfit.ParseShape(e.Shape)
			if err != nil {
				return nil, fmt.Errorf("band %q: %w", e.Name, err)
			}
			specs[i] = bandfit.BandSpec{Name: e.Name, Shape: shape}
		}
		return bandfit.FitBands(data, fitDim, specs, opts...)
	case len(entries):
		bands := make([]bandfit.PatternedBand, len(entries))
		for i, e := range entries {
			shape, err := bandfit.ParseShape(e.Shape)
			if err != nil {
				return nil, fmt.Errorf("band %q: %w", e.Name, err)
			}
			points := make([]bandfit.ControlPoint, len(e.Points))
			for j, p := range e.Points {
				points[j] = bandfit.ControlPoint{At: p[0], Center: p[1]}
			}
			bands[i] = bandfit.PatternedBand{
				Name:   e.Name,
				Shape:  shape,
				Dims:   e.Dims,
				Points: points,
				Stray:  e.Stray,
			}
		}
		return bandfit.FitPatternedBands(data, fitDim, bands, stray, opts...)
	default:
		return nil, fmt.Errorf("pattern mixes %d patterned and %d plain bands; use one kind", patterned, len(entries)-patterned)
	}
}

func loadData(path string, synth bool) (*spectrum.Spectrum, error) {
	if synth {
		return synthScan()
	}
	if path == "" {
		return nil, fmt.Errorf("no input: pass -data or -synth")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var df dataFile
	if err := json.Unmarshal(raw, &df); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return spectrum.New(df.Dims, df.Coords, df.Data)
}

func loadPattern(path string, synth bool) ([]bandEntry, error) {
	if path == "" {
		if !synth {
			return nil, fmt.Errorf("no band pattern: pass -pattern")
		}
		return []bandEntry{
			{Name: "upper_", Shape: "gaussian"},
			{Name: "lower_", Shape: "gaussian"},
		}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pf patternFile
	if err := json.Unmarshal(raw, &pf); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(pf.Bands) == 0 {
		return nil, fmt.Errorf("%s: no bands listed", path)
	}

	return pf.Bands, nil
}

// synthScan builds the demo dataset: two crossing Gaussian bands over a
// small angle scan.
func synthScan() (*spectrum.Spectrum, error) {
	const (
		nPhi = 9
		nE   = 121
	)
	phi := make([]float64, nPhi)
	for i := range phi {
		phi[i] = -0.2 + 0.4*float64(i)/float64(nPhi-1)
	}
	eV := make([]float64, nE)
	for j := range eV {
		eV[j] = -1 + 2*float64(j)/float64(nE-1)
	}

	gauss := func(x, amplitude, center, sigma float64) float64 {
		arg := (x - center) / sigma
		return amplitude * math.Exp(-arg*arg/2)
	}

	data := make([]float64, nPhi*nE)
	for i := range phi {
		c1 := -0.35 + 0.8*phi[i]
		c2 := -0.35 - 0.8*phi[i]
		for j, e := range eV {
			data[i*nE+j] = 0.05 +
				gauss(e, 1.0, c1, 0.07) +
				gauss(e, 0.8, c2, 0.07)
		}
	}

	return spectrum.New([]string{"phi", "eV"}, [][]float64{phi, eV}, data)
}

func printBands(grid *bandfit.Grid, bands []bandfit.Band) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	dims := grid.Dims()
	fmt.Fprintf(tw, "Band\t%s\tCenter\tStderr\tSigma\tAmplitude\n", strings.Join(dims, "\t"))

	for _, b := range bands {
		for pos := 0; pos < grid.Len(); pos++ {
			coords := grid.CoordinateValues(pos)
			cells := make([]string, len(coords))
			for i, c := range coords {
				cells[i] = fmt.Sprintf("%.4g", c)
			}

			center := b.Center.Values()[pos]
			if math.IsNaN(center) {
				fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t-\n", b.Label, strings.Join(cells, "\t"))
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%.5f\t%.5f\t%.5f\t%.5f\n",
				b.Label,
				strings.Join(cells, "\t"),
				center,
				b.CenterStderr.Values()[pos],
				b.Sigma.Values()[pos],
				b.Amplitude.Values()[pos],
			)
		}
	}

	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

var lineColors = []color.RGBA{
	{R: 0, G: 0, B: 255, A: 255},
	{R: 255, G: 0, B: 0, A: 255},
	{R: 0, G: 160, B: 0, A: 255},
	{R: 200, G: 120, B: 0, A: 255},
	{R: 128, G: 0, B: 200, A: 255},
	{R: 0, G: 150, B: 150, A: 255},
}

// plotBands writes band centers against the free axis. Only scans with a
// single free axis can be plotted this way.
func plotBands(grid *bandfit.Grid, bands []bandfit.Band, fitDim, path string) error {
	dims := grid.Dims()
	if len(dims) != 1 {
		return fmt.Errorf("plotting needs a single free axis, scan has %d", len(dims))
	}
	coords := grid.Coords()[0]

	p := plot.New()
	p.Title.Text = "Fitted band centers"
	p.X.Label.Text = dims[0]
	p.Y.Label.Text = fitDim

	for bi, b := range bands {
		var pts plotter.XYs
		for i, x := range coords {
			y := b.Center.Values()[i]
			if math.IsNaN(y) {
				continue
			}
			pts = append(pts, plotter.XY{X: x, Y: y})
		}
		if len(pts) == 0 {
			continue
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = lineColors[bi%len(lineColors)]
		p.Add(line)
		p.Legend.Add(b.Label, line)
	}

	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
