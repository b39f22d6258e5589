package charts

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"

	chart "github.com/wcharczuk/go-chart"
	"github.com/wcharczuk/go-chart/drawing"
	"go.uber.org/zap"
)

// Image keys returned by Render.
const (
	SalaryDistribution   = "salary_dist"
	SalaryByEducation    = "salary_by_edu"
	SalaryByJobTitle     = "salary_by_job"
	SalaryVsExperience   = "salary_vs_exp"
	dataURIPrefix        = "data:image/png;base64,"
	defaultChartWidth    = 1000
	defaultChartHeight   = 600
	barWidth             = 30
	barSpacing           = 12
	maxJobTitleBarsShown = 40
)

type pngRenderer interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

// Renderer draws the dashboard charts.
type Renderer struct {
	Width  int
	Height int
	logger *zap.Logger
}

func NewRenderer(logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{Width: defaultChartWidth, Height: defaultChartHeight, logger: logger}
}

// Render draws every chart that the summary has data for and returns them as
// PNG data URIs keyed by chart name. A chart that fails to render is logged
// and left out.
func (r *Renderer) Render(s Summary) map[string]string {
	images := make(map[string]string, 4)
	if s.Count == 0 {
		return images
	}

	r.add(images, SalaryDistribution, r.histogramChart(s.Histogram))
	r.add(images, SalaryByEducation, r.groupChart("Average Salary by Education Level", s.ByEducation))

	jobs := s.ByJobTitle
	if len(jobs) > maxJobTitleBarsShown {
		jobs = jobs[len(jobs)-maxJobTitleBarsShown:]
	}
	r.add(images, SalaryByJobTitle, r.groupChart("Average Salary by Job Title", jobs))
	r.add(images, SalaryVsExperience, r.scatterChart(s.Experience))
	return images
}

func (r *Renderer) add(images map[string]string, name string, c pngRenderer) {
	uri, err := renderDataURI(c)
	if err != nil {
		r.logger.Warn("chart render failed", zap.String("chart", name), zap.Error(err))
		return
	}
	images[name] = uri
}

func renderDataURI(c pngRenderer) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(chart.PNG, &buf); err != nil {
		return "", err
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (r *Renderer) barWidthFor(n int) int {
	w := n*(barWidth+barSpacing) + 200
	if w < r.Width {
		return r.Width
	}
	return w
}

func (r *Renderer) histogramChart(bins []Bin) pngRenderer {
	bars := make([]chart.Value, len(bins))
	for i, b := range bins {
		bars[i] = chart.Value{
			Value: float64(b.Count),
			Label: fmt.Sprintf("%.0fk", b.Lower/1000),
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex("87ceeb"),
				StrokeColor: drawing.ColorBlack,
				StrokeWidth: 1,
			},
		}
	}
	return chart.BarChart{
		Title:      "Salary Distribution",
		TitleStyle: chart.StyleShow(),
		Width:      r.barWidthFor(len(bars)),
		Height:     r.Height,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		XAxis:      chart.StyleShow(),
		YAxis: chart.YAxis{
			Name:      "Count",
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
		},
		Bars: bars,
	}
}

func (r *Renderer) groupChart(title string, groups []GroupMean) pngRenderer {
	bars := make([]chart.Value, len(groups))
	for i, g := range groups {
		bars[i] = chart.Value{
			Value: g.Mean,
			Label: g.Group,
		}
	}
	return chart.BarChart{
		Title:      title,
		TitleStyle: chart.StyleShow(),
		Width:      r.barWidthFor(len(bars)),
		Height:     r.Height,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		XAxis:      chart.StyleShow(),
		YAxis: chart.YAxis{
			Name:      "Average Salary",
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
		},
		Bars: bars,
	}
}

func (r *Renderer) scatterChart(points []Point) pngRenderer {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.YearsOfExperience
		ys[i] = p.Salary
	}
	return chart.Chart{
		Title:      "Salary vs Years of Experience",
		TitleStyle: chart.StyleShow(),
		Width:      r.Width,
		Height:     r.Height,
		XAxis: chart.XAxis{
			Name:      "Years of Experience",
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
		},
		YAxis: chart.YAxis{
			Name:      "Salary",
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "submissions",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					Show:        true,
					StrokeColor: drawing.ColorTransparent,
					DotColor:    chart.ColorBlue.WithAlpha(128),
					DotWidth:    3,
				},
			},
		},
	}
}
