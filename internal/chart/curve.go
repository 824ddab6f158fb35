// Package chart renders incremental-capacity curves as images.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"battery_analysis/internal/analysis"
	"battery_analysis/internal/models"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Default image size.
const (
	DefaultWidth  = 10 * vg.Inch
	DefaultHeight = 5 * vg.Inch
)

var (
	rawColor      = color.RGBA{R: 160, G: 160, B: 160, A: 255}
	smoothedColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	peakColor     = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	leftColor     = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	rightColor    = color.RGBA{R: 255, G: 127, B: 14, A: 255}
)

var errEmptyCurve = errors.New("chart: curve has no points")

// Options tune the rendered image. Zero values select the defaults.
type Options struct {
	Width, Height vg.Length
	Format        string // png, svg, pdf, ...
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Format == "" {
		o.Format = "png"
	}
	return o
}

// RenderCurve draws the raw and smoothed dQ/dV of one stage against voltage,
// marks the detected peaks, and adds the battery's borders when known.
func RenderCurve(w io.Writer, d analysis.Diagnostics, b models.Battery, opts Options) error {
	if len(d.Curve) == 0 {
		return errEmptyCurve
	}
	opts = opts.withDefaults()

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Battery %d (%s) - %s cycle dQ/dV", b.ID, b.Type, d.Stage)
	p.X.Label.Text = "Voltage (V)"
	p.Y.Label.Text = "dQ/dV"

	raw := make(plotter.XYs, len(d.Curve))
	smooth := make(plotter.XYs, 0, len(d.Smoothed))
	top := 0.0
	for i, pt := range d.Curve {
		raw[i] = plotter.XY{X: pt.Voltage, Y: pt.DQDV}
		top = max(top, pt.DQDV)
		if i < len(d.Smoothed) {
			smooth = append(smooth, plotter.XY{X: pt.Voltage, Y: d.Smoothed[i]})
		}
	}
	if top == 0 {
		top = 1
	}

	rawLine, err := plotter.NewLine(raw)
	if err != nil {
		return fmt.Errorf("raw line: %w", err)
	}
	rawLine.Color = rawColor
	rawLine.Width = vg.Points(1)
	p.Add(rawLine)
	p.Legend.Add("raw", rawLine)

	if len(smooth) > 0 {
		smoothLine, err := plotter.NewLine(smooth)
		if err != nil {
			return fmt.Errorf("smoothed line: %w", err)
		}
		smoothLine.Color = smoothedColor
		smoothLine.Width = vg.Points(2)
		p.Add(smoothLine)
		p.Legend.Add("smoothed", smoothLine)
	}

	if pts := peakPoints(d); len(pts) > 0 {
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("peaks: %w", err)
		}
		sc.GlyphStyle.Color = peakColor
		sc.GlyphStyle.Radius = vg.Points(3)
		p.Add(sc)
		p.Legend.Add("peaks", sc)
	}

	for _, m := range []struct {
		name string
		v    *float64
		c    color.Color
	}{
		{"left border", b.LeftBorder, leftColor},
		{"right border", b.RightBorder, rightColor},
	} {
		if m.v == nil {
			continue
		}
		l, err := plotter.NewLine(plotter.XYs{{X: *m.v, Y: 0}, {X: *m.v, Y: top}})
		if err != nil {
			return fmt.Errorf("%s: %w", m.name, err)
		}
		l.Color = m.c
		l.Width = vg.Points(1)
		l.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(l)
		p.Legend.Add(m.name, l)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	wt, err := p.WriterTo(opts.Width, opts.Height, opts.Format)
	if err != nil {
		return fmt.Errorf("create %s canvas: %w", opts.Format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write %s: %w", opts.Format, err)
	}
	return nil
}

func peakPoints(d analysis.Diagnostics) plotter.XYs {
	out := make(plotter.XYs, 0, len(d.Peaks))
	for _, pk := range d.Peaks {
		if pk.Index < 0 || pk.Index >= len(d.Curve) {
			continue
		}
		out = append(out, plotter.XY{X: d.Curve[pk.Index].Voltage, Y: pk.Height})
	}
	return out
}
