// Package plot renders an occupancy distribution as its S-curve: blocks on
// the x axis from worst- to best-utilized, fill ratio on the y axis.
package plot

import (
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	gonumplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/inference-sim/sshape/sim"
)

// Default canvas size, matching the 4:3 window of the interactive viewer.
const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 6 * vg.Inch
)

var curveColor = color.RGBA{R: 220, A: 255}
var guideColor = color.Gray{Y: 160}

// Curve builds the S-curve plot of occ. occ.Blocks must be sorted ascending.
func Curve(occ sim.Occupancy, title string) (*gonumplot.Plot, error) {
	if len(occ.Blocks) == 0 || occ.BlockSize == 0 {
		return nil, fmt.Errorf("empty occupancy")
	}

	p := gonumplot.New()
	p.Title.Text = title
	p.X.Label.Text = "block (sorted by occupancy)"
	p.Y.Label.Text = "utilization"
	p.X.Min, p.X.Max = 0, float64(len(occ.Blocks))
	p.Y.Min, p.Y.Max = 0, 1

	// One step per block; the trailing point closes the last step.
	pts := make(plotter.XYs, len(occ.Blocks)+1)
	for i := range occ.Blocks {
		pts[i].X = float64(i)
		pts[i].Y = occ.Utilization(i)
	}
	pts[len(occ.Blocks)].X = float64(len(occ.Blocks))
	pts[len(occ.Blocks)].Y = occ.Utilization(len(occ.Blocks) - 1)

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("building curve: %w", err)
	}
	line.StepStyle = plotter.PostStep
	line.Color = curveColor

	horizontal, vertical, err := guides(len(occ.Blocks))
	if err != nil {
		return nil, err
	}

	p.Add(plotter.NewGrid(), horizontal, vertical, line)
	return p, nil
}

// guides returns the dashed 50% utilization line and the vertical line
// through the median block.
func guides(blocks int) (*plotter.Function, *plotter.Line, error) {
	dashes := []vg.Length{vg.Points(4), vg.Points(4)}

	horizontal := plotter.NewFunction(func(float64) float64 { return 0.5 })
	horizontal.Color = guideColor
	horizontal.Dashes = dashes

	mid := float64(blocks) / 2
	vertical, err := plotter.NewLine(plotter.XYs{{X: mid, Y: 0}, {X: mid, Y: 1}})
	if err != nil {
		return nil, nil, fmt.Errorf("building guide: %w", err)
	}
	vertical.Color = guideColor
	vertical.Dashes = dashes
	return horizontal, vertical, nil
}

// Save renders occ to path; the file extension selects the format
// (png, svg, pdf, jpg, ...).
func Save(occ sim.Occupancy, title, path string) error {
	p, err := Curve(occ, title)
	if err != nil {
		return err
	}
	if err := p.Save(DefaultWidth, DefaultHeight, path); err != nil {
		return fmt.Errorf("saving plot to %s: %w", path, err)
	}
	logrus.Debugf("wrote S-curve of %d blocks to %s", len(occ.Blocks), path)
	return nil
}

// Write renders occ in the given format to w.
func Write(w io.Writer, occ sim.Occupancy, title, format string) error {
	p, err := Curve(occ, title)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(DefaultWidth, DefaultHeight, format)
	if err != nil {
		return fmt.Errorf("unsupported plot format %q: %w", format, err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// FormatFromPath returns the lower-cased extension of path without the dot.
func FormatFromPath(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// supportedFormats lists the extensions gonum/plot can encode.
var supportedFormats = map[string]bool{
	"png": true, "svg": true, "pdf": true, "eps": true,
	"jpg": true, "jpeg": true, "tif": true, "tiff": true,
}

// CheckPath rejects a plot path whose extension names no supported format.
func CheckPath(path string) error {
	if format := FormatFromPath(path); !supportedFormats[format] {
		return fmt.Errorf("unsupported plot format %q for %s; valid: png, svg, pdf, eps, jpg, tif", format, path)
	}
	return nil
}

// Title returns the caption used for a recompute result.
func Title(res sim.Result) string {
	return fmt.Sprintf("%d blocks x %d items, eviction %.0f%%, writes %.0f%%, min %.3f",
		res.Config.BlockCount, res.Config.BlockSize,
		res.Config.EvictionRate*100, res.Config.WriteRate*100,
		res.Occupancy.MinUtilization())
}
