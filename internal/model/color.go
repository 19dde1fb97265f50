package model

// ColorName is one of the semantic event colors understood by the grid.
type ColorName string

const (
	ColorBlue   ColorName = "blue"
	ColorGreen  ColorName = "green"
	ColorRed    ColorName = "red"
	ColorAmber  ColorName = "amber"
	ColorViolet ColorName = "violet"
)

// Color selects the rendering color for an event: either one of the five
// named values or an explicit background/foreground pair. An explicit pair
// takes precedence when both are set.
type Color struct {
	Name ColorName `json:"name,omitempty" yaml:"name,omitempty"`

	Background string `json:"background,omitempty" yaml:"background,omitempty"`
	Foreground string `json:"foreground,omitempty" yaml:"foreground,omitempty"`
}

// namedPalette maps the semantic names to concrete hex pairs.
var namedPalette = map[ColorName][2]string{
	ColorBlue:   {"#3b82f6", "#ffffff"},
	ColorGreen:  {"#22c55e", "#ffffff"},
	ColorRed:    {"#ef4444", "#ffffff"},
	ColorAmber:  {"#f59e0b", "#1f2937"},
	ColorViolet: {"#8b5cf6", "#ffffff"},
}

// Resolved returns the concrete background/foreground pair for the color.
// Unknown names and fully empty colors fall back to the blue pair so a bad
// color value can never blank an event.
func (c Color) Resolved() (background, foreground string) {
	if c.Background != "" && c.Foreground != "" {
		return c.Background, c.Foreground
	}
	if pair, ok := namedPalette[c.Name]; ok {
		return pair[0], pair[1]
	}
	pair := namedPalette[ColorBlue]
	return pair[0], pair[1]
}
