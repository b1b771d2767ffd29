// Package plot renders the sample distribution of a simulated quantity as a
// histogram with vertical markers at the mean and at mean ± 2σ.
package plot

import (
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	gonumplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/tankgauge/nsvmc/internal/errdefs"
	"github.com/tankgauge/nsvmc/internal/stats"
)

// DefaultBins is used when Options.Bins is not positive.
const DefaultBins = 50

// Options describe one histogram.
type Options struct {
	// Variable names the quantity on the title and x axis, e.g. "NSV".
	Variable string
	// Unit is appended to the x axis label when non-empty.
	Unit   string
	Bins   int
	Width  vg.Length
	Height vg.Length
}

func (o Options) withDefaults() Options {
	if o.Bins <= 0 {
		o.Bins = DefaultBins
	}
	if o.Width <= 0 {
		o.Width = 8 * vg.Inch
	}
	if o.Height <= 0 {
		o.Height = 5 * vg.Inch
	}
	return o
}

var (
	meanColor = color.RGBA{R: 200, A: 255}
	bandColor = color.RGBA{G: 120, B: 200, A: 255}
)

// Histogram builds the plot for xs. Constant samples cannot be binned and
// are rejected with errdefs.ErrInvalidParameter.
func Histogram(xs []float64, opts Options) (*gonumplot.Plot, error) {
	opts = opts.withDefaults()
	s := stats.Reduce(xs)
	if s.N < 2 || s.StdDev == 0 {
		return nil, errdefs.InvalidParameter("plot: %s has no spread to histogram", opts.Variable)
	}

	h, err := plotter.NewHist(plotter.Values(xs), opts.Bins)
	if err != nil {
		return nil, fmt.Errorf("plot: %w", err)
	}
	h.FillColor = color.Gray{Y: 190}

	var top float64
	for _, b := range h.Bins {
		top = max(top, b.Weight)
	}

	p := gonumplot.New()
	p.Title.Text = fmt.Sprintf("%s distribution (n = %d)", opts.Variable, s.N)
	p.X.Label.Text = opts.Variable
	if opts.Unit != "" {
		p.X.Label.Text += " [" + opts.Unit + "]"
	}
	p.Y.Label.Text = "frequency"
	p.Add(h)

	mean, err := marker(s.Mean, top, meanColor, nil)
	if err != nil {
		return nil, err
	}
	p.Add(mean)
	p.Legend.Add(fmt.Sprintf("mean %.6g", s.Mean), mean)

	dashes := []vg.Length{vg.Points(5), vg.Points(3)}
	for i, x := range []float64{s.Mean - 2*s.StdDev, s.Mean + 2*s.StdDev} {
		l, err := marker(x, top, bandColor, dashes)
		if err != nil {
			return nil, err
		}
		p.Add(l)
		if i == 0 {
			p.Legend.Add(fmt.Sprintf("mean ± 2σ (σ = %.4g)", s.StdDev), l)
		}
	}
	p.Legend.Top = true
	return p, nil
}

func marker(x, top float64, c color.Color, dashes []vg.Length) (*plotter.Line, error) {
	l, err := plotter.NewLine(plotter.XYs{{X: x, Y: 0}, {X: x, Y: top}})
	if err != nil {
		return nil, fmt.Errorf("plot: marker: %w", err)
	}
	l.LineStyle = draw.LineStyle{Color: c, Width: vg.Points(1.5), Dashes: dashes}
	return l, nil
}

// Save writes the histogram of xs to path. The format follows the file
// extension: png, svg or pdf.
func Save(path string, xs []float64, opts Options) error {
	format, err := formatOf(path)
	if err != nil {
		return err
	}
	opts = opts.withDefaults()
	p, err := Histogram(xs, opts)
	if err != nil {
		return err
	}
	if err := p.Save(opts.Width, opts.Height, path); err != nil {
		return fmt.Errorf("plot: save %s: %w", path, err)
	}
	slog.Info("plot: histogram written", "path", path, "format", format, "variable", opts.Variable)
	return nil
}

// Write renders the histogram of xs to w in the given format.
func Write(w io.Writer, format string, xs []float64, opts Options) error {
	opts = opts.withDefaults()
	p, err := Histogram(xs, opts)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(opts.Width, opts.Height, format)
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("plot: write: %w", err)
	}
	return nil
}

func formatOf(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "png", "svg", "pdf":
		return ext, nil
	default:
		return "", errdefs.InvalidParameter("plot: unsupported file extension %q (want .png, .svg or .pdf)", filepath.Ext(path))
	}
}
