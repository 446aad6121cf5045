package invoice

// Theme is a named color preset.
type Theme struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Primary   string `json:"primaryColor"`
	Secondary string `json:"secondaryColor"`
	Accent    string `json:"accentColor"`
}

// Themes are the built-in presets; the first one is the default.
var Themes = []Theme{
	{Key: "modern-green", Name: "Modern Green", Primary: "#5A8F7B", Secondary: "#7AB89D", Accent: "#3D6B5C"},
	{Key: "classic-blue", Name: "Classic Blue", Primary: "#3B82F6", Secondary: "#60A5FA", Accent: "#1D4ED8"},
	{Key: "creative-purple", Name: "Creative Purple", Primary: "#8B5CF6", Secondary: "#A78BFA", Accent: "#6D28D9"},
	{Key: "warm-orange", Name: "Warm Orange", Primary: "#F97316", Secondary: "#FB923C", Accent: "#EA580C"},
}

// FindTheme looks a preset up by key.
func FindTheme(key string) (Theme, bool) {
	for _, t := range Themes {
		if t.Key == key {
			return t, true
		}
	}

	return Theme{}, false
}

// ApplyTheme copies the preset colors onto the document.
func (d *Document) ApplyTheme(t Theme) {
	d.PrimaryColor = t.Primary
	d.SecondaryColor = t.Secondary
	d.AccentColor = t.Accent
}
