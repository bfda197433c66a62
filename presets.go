package mandel

import "slices"

// Preset is a named, complete render request.
type Preset struct {
	Name     string
	Viewport Viewport
	Grid     Grid
	Params   IterationParams
}

// The classic full view of the set at VGA resolution.
var (
	ClassicViewport = Viewport{Top: -1.0, Left: -2.0, Width: 2.666, Height: 2.0}
	ClassicGrid     = Grid{Width: 640, Height: 480}
	ClassicParams   = IterationParams{MaxIter: 256, EscapeThresholdSquared: 4.0}
)

// fromBounds converts a min/max window into a Viewport.
func fromBounds(xmin, xmax, ymin, ymax float64) Viewport {
	return Viewport{Top: ymin, Left: xmin, Width: xmax - xmin, Height: ymax - ymin}
}

// landmark is the grid and iteration budget shared by the landmark presets.
var (
	landmarkGrid   = Grid{Width: 1920, Height: 1080}
	landmarkParams = IterationParams{MaxIter: 1000, EscapeThresholdSquared: 4.0}
)

var presets = map[string]Preset{
	// 16:9 WQHD x5 benchmark render of a filament near the main cardioid.
	"reference": {
		Viewport: Viewport{Top: 0.680, Left: -0.220, Width: 0.008, Height: 0.0045},
		Grid:     Grid{Width: 2560 * 5, Height: 1440 * 5},
		Params:   IterationParams{MaxIter: 10000, EscapeThresholdSquared: 10.0},
	},
	"classic": {
		Viewport: ClassicViewport,
		Grid:     ClassicGrid,
		Params:   ClassicParams,
	},

	// Dense filaments and repeating seahorse curls.
	"seahorse": {Viewport: fromBounds(-0.8, -0.7, 0.05, 0.15)},
	// Large bulb with trunk-like tendrils.
	"elephant": {Viewport: fromBounds(-1.85, -1.75, -0.10, -0.02)},
	// Small copy of the set with tight spiral arms.
	"spiral": {Viewport: fromBounds(-0.7435, -0.7420, 0.1310, 0.1325)},
	// Threefold symmetric spiral structure.
	"triple-spiral": {Viewport: fromBounds(-0.7480, -0.7450, 0.0950, 0.0980)},
	// Deep, highly detailed spiral filaments.
	"dragon": {Viewport: fromBounds(-0.7400, -0.7350, 0.1800, 0.1850)},
	// Self-similar copy inside a spiral arm.
	"minibrot": {Viewport: fromBounds(-1.7390, -1.7375, -0.0235, -0.0220)},
}

// LookupPreset returns the preset with the given name.
func LookupPreset(name string) (Preset, bool) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, false
	}
	p.Name = name
	if p.Grid == (Grid{}) {
		p.Grid = landmarkGrid
	}
	if p.Params == (IterationParams{}) {
		p.Params = landmarkParams
	}
	return p, true
}

// PresetNames returns the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
