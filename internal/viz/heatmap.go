package viz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/floats"
)

var ErrShape = errors.New("viz: field does not match its shape")

// Theme is a colour ramp from low to high field values.
type Theme struct {
	Name string
	Ramp []lipgloss.Color
}

var (
	ThemeThermal = Theme{
		Name: "thermal",
		Ramp: []lipgloss.Color{"#000033", "#2200aa", "#aa0088", "#ff4400", "#ffcc00", "#ffffff"},
	}
	ThemeOcean = Theme{
		Name: "ocean",
		Ramp: []lipgloss.Color{"#001122", "#003355", "#006699", "#00aacc", "#66ddff"},
	}
	ThemeMinimal = Theme{
		Name: "minimal",
		Ramp: []lipgloss.Color{"#888888"},
	}
)

var Themes = map[string]Theme{
	ThemeThermal.Name: ThemeThermal,
	ThemeOcean.Name:   ThemeOcean,
	ThemeMinimal.Name: ThemeMinimal,
}

var shades = []rune(" ░▒▓█")

// Heatmap renders a w x h row-major field as cols x rows shaded cells.
// Values are scaled between the field minimum and maximum; a constant
// field renders at the lowest shade.
func Heatmap(data []float64, w, h, cols, rows int, theme Theme) (string, error) {
	if w < 1 || h < 1 || len(data) != w*h {
		return "", fmt.Errorf("%w: %d values for %dx%d", ErrShape, len(data), w, h)
	}
	if cols < 1 || rows < 1 {
		return "", fmt.Errorf("%w: %dx%d cells", ErrShape, cols, rows)
	}

	lo, hi := floats.Min(data), floats.Max(data)
	span := hi - lo

	var b strings.Builder
	for r := 0; r < rows; r++ {
		y := r * h / rows
		for c := 0; c < cols; c++ {
			t := 0.0
			if span > 0 {
				t = (data[y*w+c*w/cols] - lo) / span
			}
			b.WriteString(cell(t, theme))
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// Level returns the shade index of a value normalised to [0, 1].
func Level(t float64) int {
	n := len(shades)
	i := int(t * float64(n))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func cell(t float64, theme Theme) string {
	ch := string(shades[Level(t)])
	if len(theme.Ramp) == 0 {
		return ch
	}
	k := int(t * float64(len(theme.Ramp)-1))
	if k < 0 {
		k = 0
	}
	return lipgloss.NewStyle().Foreground(theme.Ramp[k]).Render(ch)
}
