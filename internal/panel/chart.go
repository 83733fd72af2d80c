package panel

import (
	"math"
	"strconv"
	"strings"

	"github.com/leapstack-labs/runlens/pkg/core"
)

// Palette colours series by position.
var Palette = []string{
	"#8884d8", "#82ca9d", "#ffc658", "#ff7300", "#0088FE",
	"#00C49F", "#FFBB28", "#FF8042", "#a4de6c", "#d0ed57",
}

// SeriesColor returns the colour of the series at position i.
func SeriesColor(i int) string {
	return Palette[i%len(Palette)]
}

func chart(path Path, data *core.Value, index string) View {
	cv := &ChartView{Path: path, Index: index}

	for _, name := range columns(data) {
		if name == index {
			continue
		}
		cv.Series = append(cv.Series, Series{Name: name, Color: SeriesColor(len(cv.Series))})
	}

	for _, record := range data.Items() {
		x, _ := record.Get(index)
		cv.X = append(cv.X, Cell(x))
		for i := range cv.Series {
			v, _ := record.Get(cv.Series[i].Name)
			y, ok := numeric(v)
			cv.Series[i].Points = append(cv.Series[i].Points, Point{Y: y, Valid: ok})
		}
	}
	return cv
}

// numeric reads a plottable number from a number or a numeric string.
func numeric(v *core.Value) (float64, bool) {
	if f, ok := v.Float(); ok {
		return f, true
	}
	if v.Kind() != core.KindString {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.Text()), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
