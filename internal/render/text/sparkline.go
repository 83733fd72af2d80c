package text

import (
	"math"
	"strings"

	"github.com/leapstack-labs/runlens/internal/panel"
)

const sparkWidth = 40

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws points as block characters scaled between their minimum and
// maximum. Invalid points are blank. Longer series are sampled down to width.
func Sparkline(points []panel.Point, width int) string {
	if len(points) == 0 {
		return ""
	}
	if width > 0 && len(points) > width {
		sampled := make([]panel.Point, width)
		for i := range sampled {
			sampled[i] = points[i*len(points)/width]
		}
		points = sampled
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		if p.Valid {
			lo = math.Min(lo, p.Y)
			hi = math.Max(hi, p.Y)
		}
	}

	var sb strings.Builder
	top := len(sparkRunes) - 1
	for _, p := range points {
		switch {
		case !p.Valid:
			sb.WriteRune(' ')
		case hi == lo:
			sb.WriteRune(sparkRunes[top/2])
		default:
			sb.WriteRune(sparkRunes[int(math.Round((p.Y-lo)/(hi-lo)*float64(top)))])
		}
	}
	return sb.String()
}
