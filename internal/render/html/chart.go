package html

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/leapstack-labs/runlens/internal/panel"
)

// Chart geometry in SVG user units.
const (
	chartWidth   = 640
	chartHeight  = 240
	marginLeft   = 56
	marginRight  = 12
	marginTop    = 12
	marginBottom = 32
	maxXTicks    = 6
)

type chartLayout struct {
	Width, Height int
	Left, Right   float64
	Top, Bottom   float64
	Index         string
	Lines         []chartLine
	XTicks        []tick
	YTicks        []tick
	Empty         bool
}

type chartLine struct {
	Name     string
	Color    string
	Segments []string // polyline point lists
	Dots     []dot    // points with no neighbour to join
}

type dot struct{ X, Y float64 }

type tick struct {
	Pos  float64
	Text string
}

// layoutChart projects a chart view onto the SVG canvas. Invalid points break
// their series into separate segments.
func layoutChart(cv *panel.ChartView) chartLayout {
	l := chartLayout{
		Width:  chartWidth,
		Height: chartHeight,
		Left:   marginLeft,
		Right:  chartWidth - marginRight,
		Top:    marginTop,
		Bottom: chartHeight - marginBottom,
		Index:  cv.Index,
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range cv.Series {
		for _, p := range s.Points {
			if p.Valid {
				lo = math.Min(lo, p.Y)
				hi = math.Max(hi, p.Y)
			}
		}
	}
	if math.IsInf(lo, 1) {
		l.Empty = true
		return l
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}

	n := len(cv.X)
	xAt := func(i int) float64 {
		if n <= 1 {
			return (l.Left + l.Right) / 2
		}
		return l.Left + float64(i)*(l.Right-l.Left)/float64(n-1)
	}
	yAt := func(v float64) float64 {
		return l.Top + (hi-v)/(hi-lo)*(l.Bottom-l.Top)
	}

	for _, s := range cv.Series {
		line := chartLine{Name: s.Name, Color: s.Color}
		var run []dot
		flush := func() {
			switch len(run) {
			case 0:
			case 1:
				line.Dots = append(line.Dots, run[0])
			default:
				pts := make([]string, len(run))
				for i, d := range run {
					pts[i] = fmt.Sprintf("%.1f,%.1f", d.X, d.Y)
				}
				line.Segments = append(line.Segments, strings.Join(pts, " "))
			}
			run = run[:0]
		}
		for i, p := range s.Points {
			if !p.Valid {
				flush()
				continue
			}
			run = append(run, dot{X: xAt(i), Y: yAt(p.Y)})
		}
		flush()
		l.Lines = append(l.Lines, line)
	}

	step := 1
	if n > maxXTicks {
		step = int(math.Ceil(float64(n) / maxXTicks))
	}
	for i := 0; i < n; i += step {
		l.XTicks = append(l.XTicks, tick{Pos: xAt(i), Text: cv.X[i]})
	}
	for _, v := range []float64{hi, (hi + lo) / 2, lo} {
		l.YTicks = append(l.YTicks, tick{Pos: yAt(v), Text: strconv.FormatFloat(v, 'g', 4, 64)})
	}
	return l
}
