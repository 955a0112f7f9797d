package viz

import (
	"image/color"
	"math"
)

// Theme is a color ramp for temperature fields, cold to hot.
type Theme struct {
	Name string
	Ramp []string
}

var (
	ThemeThermal = Theme{
		Name: "thermal",
		Ramp: []string{"#000033", "#2200aa", "#aa0088", "#ff3300", "#ffaa00", "#ffff88"},
	}

	ThemeInferno = Theme{
		Name: "inferno",
		Ramp: []string{"#000004", "#420a68", "#932667", "#dd513a", "#fca50a", "#fcffa4"},
	}

	ThemeViridis = Theme{
		Name: "viridis",
		Ramp: []string{"#440154", "#3e4989", "#26828e", "#35b779", "#b5de2b", "#fde725"},
	}

	ThemeMono = Theme{
		Name: "mono",
		Ramp: []string{"#101010", "#f0f0f0"},
	}

	CurrentTheme = ThemeThermal

	Themes = []Theme{
		ThemeThermal,
		ThemeInferno,
		ThemeViridis,
		ThemeMono,
	}
)

// Color interpolates the ramp linearly. Values outside [lo, hi] are clamped
// and a degenerate range maps to the cold end. Ramps need two stops or more.
func (th Theme) Color(t, lo, hi float64) color.RGBA {
	f := 0.0
	if hi > lo {
		f = math.Max(0, math.Min(1, (t-lo)/(hi-lo)))
	}

	pos := f * float64(len(th.Ramp)-1)
	i := min(int(pos), len(th.Ramp)-2)
	u := pos - float64(i)

	r0, g0, b0 := parseHex(th.Ramp[i])
	r1, g1, b1 := parseHex(th.Ramp[i+1])
	lerp := func(a, b int) uint8 { return uint8(math.Round(float64(a) + u*float64(b-a))) }
	return color.RGBA{lerp(r0, r1), lerp(g0, g1), lerp(b0, b1), 255}
}

// GetTheme returns a theme by name, or the thermal theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeThermal
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return
		}
	}
	CurrentTheme = ThemeThermal
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
