package engine

// ColorTheme is the [wall, background, actor] palette handed to renderers.
// The engine never reads the colors.
type ColorTheme struct {
	Name       string `json:"name"`
	Wall       string `json:"wall"`
	Background string `json:"background"`
	Actor      string `json:"actor"`
}

// Colors returns the palette in [wall, background, actor] order.
func (t ColorTheme) Colors() [3]string {
	return [3]string{t.Wall, t.Background, t.Actor}
}

// DefaultThemeName is the theme used when a map does not pick one
const DefaultThemeName = "Pac-Man's Default"

var themes = []ColorTheme{
	{Name: DefaultThemeName, Wall: "#0000ff", Background: "#000000", Actor: "#ffff00"},
	{Name: "I ♡ CU", Wall: "#893290", Background: "#000000", Actor: "#ffc602"},
	{Name: "Sunny Milk", Wall: "#efb780", Background: "#c66b47", Actor: "#faf3ec"},
	{Name: "Nanomachine", Wall: "#abcdef", Background: "#000000", Actor: "#ff0f0f"},
}

// Themes returns the built-in color themes
func Themes() []ColorTheme {
	return append([]ColorTheme(nil), themes...)
}

// ThemeByName looks up a built-in theme
func ThemeByName(name string) (ColorTheme, bool) {
	for _, t := range themes {
		if t.Name == name {
			return t, true
		}
	}
	return ColorTheme{}, false
}
