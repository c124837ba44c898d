// Package plots writes baseline exploratory plots and confusion matrices as PNG files.
package plots

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/YuminosukeSato/datakit/core/table"
	"github.com/YuminosukeSato/datakit/metrics"
	"github.com/YuminosukeSato/datakit/pkg/errors"
	"github.com/YuminosukeSato/datakit/pkg/log"
	"github.com/YuminosukeSato/datakit/preprocessing"
)

const (
	// DefaultMaxCols caps the numerical columns in the correlation heatmap.
	DefaultMaxCols = 10

	// HistogramCount is how many numerical columns get a histogram.
	HistogramCount = 4

	HeatmapFile    = "correlation_heatmap.png"
	HistogramsFile = "distributions.png"

	histogramBins = 20
	paletteSize   = 255
)

// matrixGrid adapts a square matrix to plotter.GridXYZ. Row 0 is drawn at
// the top so the image reads like the printed matrix.
type matrixGrid struct {
	m mat.Matrix
}

func (g matrixGrid) Dims() (c, r int) {
	r, c = g.m.Dims()
	return c, r
}

func (g matrixGrid) Z(c, r int) float64 {
	rows, _ := g.m.Dims()
	return g.m.At(rows-1-r, c)
}

func (g matrixGrid) X(c int) float64 { return float64(c) }
func (g matrixGrid) Y(r int) float64 { return float64(r) }

// heatmap draws m with one label per cell. format renders a cell value.
func heatmap(m mat.Matrix, xNames, yNames []string, pal palette.Palette, min, max float64, format func(float64) string) (*plot.Plot, error) {
	grid := matrixGrid{m: m}
	h := plotter.NewHeatMap(grid, pal)
	h.Min, h.Max = min, max

	p := plot.New()
	p.Add(h)

	cols, rows := grid.Dims()
	xys := make(plotter.XYs, 0, cols*rows)
	labels := make([]string, 0, cols*rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			xys = append(xys, plotter.XY{X: grid.X(c), Y: grid.Y(r)})
			labels = append(labels, format(grid.Z(c, r)))
		}
	}
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return nil, errors.Wrap(err, "heatmap labels")
	}
	for i := range l.TextStyle {
		l.TextStyle[i].XAlign = text.XCenter
		l.TextStyle[i].YAlign = text.YCenter
	}
	p.Add(l)

	xTicks := make([]plot.Tick, len(xNames))
	for i, name := range xNames {
		xTicks[i] = plot.Tick{Value: float64(i), Label: name}
	}
	yTicks := make([]plot.Tick, len(yNames))
	for i, name := range yNames {
		yTicks[i] = plot.Tick{Value: float64(len(yNames) - 1 - i), Label: name}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xTicks)
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	return p, nil
}

// CorrelationHeatmap plots the correlation matrix of the first maxCols
// numerical columns of t.
func CorrelationHeatmap(t *table.Table, maxCols int) (*plot.Plot, error) {
	if maxCols <= 0 {
		maxCols = DefaultMaxCols
	}
	names := t.ColumnsOfKind(table.Numerical)
	if len(names) == 0 {
		return nil, errors.NewValueError("plots.CorrelationHeatmap", "no numerical columns")
	}
	if len(names) > maxCols {
		names = names[:maxCols]
	}
	sub, err := t.Select(names...)
	if err != nil {
		return nil, err
	}
	corr, names := preprocessing.CorrelationMatrix(sub)

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-1)
	cmap.SetMax(1)
	p, err := heatmap(corr, names, names, cmap.Palette(paletteSize), -1, 1, func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	})
	if err != nil {
		return nil, err
	}
	p.Title.Text = "Feature Correlation Heatmap"
	return p, nil
}

// Histogram plots the distribution of one numerical column, missing values skipped.
func Histogram(c *table.Column) (*plot.Plot, error) {
	if c.Kind() != table.Numerical {
		return nil, errors.NewValueErrorf("plots.Histogram", "column %q is not numerical", c.Name())
	}
	vals := make(plotter.Values, 0, c.Len())
	for _, v := range c.Floats() {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return nil, errors.NewValueErrorf("plots.Histogram", "column %q has no finite values", c.Name())
	}
	h, err := plotter.NewHist(vals, histogramBins)
	if err != nil {
		return nil, errors.Wrapf(err, "histogram of %s", c.Name())
	}
	p := plot.New()
	p.Title.Text = "Distribution of " + c.Name()
	p.X.Label.Text = c.Name()
	p.Y.Label.Text = "count"
	p.Add(h)
	return p, nil
}

// CreateBaselinePlots writes the correlation heatmap of the first maxCols
// numerical columns and a 2x2 grid with histograms of the first four of
// them into dir. It returns the written paths. target is only logged.
func CreateBaselinePlots(t *table.Table, target string, maxCols int, dir string) ([]string, error) {
	logger := log.GetLoggerWithName("plots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create %s", dir)
	}

	hm, err := CorrelationHeatmap(t, maxCols)
	if err != nil {
		return nil, err
	}
	heatmapPath := filepath.Join(dir, HeatmapFile)
	histPath := filepath.Join(dir, HistogramsFile)

	names := t.ColumnsOfKind(table.Numerical)
	if len(names) > HistogramCount {
		names = names[:HistogramCount]
	}
	hists := make([]*plot.Plot, 0, len(names))
	for _, name := range names {
		c, _ := t.Column(name)
		p, err := Histogram(c)
		if err != nil {
			logger.Warn("histogram skipped", log.ColumnKey, name, "reason", err.Error())
			continue
		}
		hists = append(hists, p)
	}

	// The two images share nothing, so they render concurrently.
	var g errgroup.Group
	g.Go(func() error {
		if err := hm.Save(12*vg.Inch, 8*vg.Inch, heatmapPath); err != nil {
			return errors.Wrapf(err, "save %s", heatmapPath)
		}
		return nil
	})
	if len(hists) > 0 {
		g.Go(func() error {
			return saveTiles(hists, 2, 15*vg.Inch, 10*vg.Inch, histPath)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	paths := []string{heatmapPath}
	if len(hists) > 0 {
		paths = append(paths, histPath)
	}

	logger.Info("baseline plots written",
		log.TargetKey, target,
		log.PathKey, dir,
		log.CreatedKey, len(paths),
	)
	return paths, nil
}

// saveTiles draws plots row by row on a grid with cols columns and writes a PNG.
func saveTiles(plots []*plot.Plot, cols int, width, height vg.Length, path string) error {
	rows := (len(plots) + cols - 1) / cols
	img := vgimg.New(width, height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	for i, p := range plots {
		p.Draw(tiles.At(dc, i%cols, i/cols))
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer f.Close()
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

// ConfusionMatrix writes a heatmap of cm to path with actual labels on the
// Y axis and predicted labels on the X axis.
func ConfusionMatrix(cm *metrics.ConfusionMatrix, title, path string) error {
	n := len(cm.Labels)
	if n == 0 {
		return errors.NewValueError("plots.ConfusionMatrix", "empty confusion matrix")
	}
	counts := mat.NewDense(n, n, nil)
	maxCount := 0
	for i := range cm.Counts {
		for j, v := range cm.Counts[i] {
			counts.Set(i, j, float64(v))
			if v > maxCount {
				maxCount = v
			}
		}
	}
	upper := math.Max(float64(maxCount), 1)

	cmap := moreland.Kindlmann()
	cmap.SetMin(0)
	cmap.SetMax(upper)
	p, err := heatmap(counts, cm.Labels, cm.Labels, cmap.Palette(paletteSize), 0, upper, func(v float64) string {
		return fmt.Sprintf("%d", int(v))
	})
	if err != nil {
		return err
	}
	p.Title.Text = title + " Confusion Matrix"
	p.X.Label.Text = "Predicted"
	p.Y.Label.Text = "Actual"

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "save %s", path)
	}
	return nil
}
