package cover

import (
	"fmt"
	"strings"
)

type Style string

const (
	StylePhotographic Style = "photographic"
	StyleMinimalist   Style = "minimalist"
	StyleThreeD       Style = "3d-medical"
	StyleIllustration Style = "illustration"
)

type Theme string

const (
	ThemeNature  Theme = "nature"
	ThemeScience Theme = "science"
	ThemeZen     Theme = "zen"
	ThemeEnergy  Theme = "energy"
	ThemeFreedom Theme = "freedom"
)

type Format string

const (
	FormatSquare   Format = "square"
	FormatVertical Format = "vertical"
	FormatStory    Format = "story"
	FormatBanner   Format = "banner"
	FormatBook     Format = "book"
	FormatPhone    Format = "phone"
	FormatAll      Format = "all"
)

type AspectRatio string

const (
	AspectRatio1x1  AspectRatio = "1:1"
	AspectRatio3x4  AspectRatio = "3:4"
	AspectRatio4x3  AspectRatio = "4:3"
	AspectRatio9x16 AspectRatio = "9:16"
	AspectRatio16x9 AspectRatio = "16:9"
)

type styleInfo struct {
	label       string
	description string
}

type themeInfo struct {
	label       string
	description string
}

type formatInfo struct {
	label       string
	aspectRatio AspectRatio
	mockup      bool
}

var styles = map[Style]styleInfo{
	StylePhotographic: {"Photographic & Realistic", "Cinematic professional photography."},
	StyleMinimalist:   {"Minimalist Graphic Design", "Sleek modern minimalist graphic design."},
	StyleThreeD:       {"3D Medical Render", "Stunning 3D medical digital art."},
	StyleIllustration: {"Modern Wellness Illustration", "Flat vector illustration for health apps."},
}

var themes = map[Theme]themeInfo{
	ThemeNature:  {"Nature & Freshness", "Background: lush forests, crisp mountain air, clear blue skies."},
	ThemeScience: {"Science & Health", "Focus: medical accuracy, glowing lung structures, high-tech health tech."},
	ThemeZen:     {"Zen & Meditative", "Atmosphere: Serene, calm, soft meditative lighting."},
	ThemeEnergy:  {"Energy & Vitality", "Vibe: High-energy, vibrant colors, powerful movement."},
	ThemeFreedom: {"Abstract Freedom", "Metaphor: Clouds and open horizons, liberation."},
}

var formats = map[Format]formatInfo{
	FormatSquare:   {"Square (Feed 1:1)", AspectRatio1x1, false},
	FormatVertical: {"Vertical (Feed 4:5)", AspectRatio3x4, false},
	FormatStory:    {"Stories/Reels (9:16)", AspectRatio9x16, false},
	FormatBanner:   {"Banner/Cinema (16:9)", AspectRatio16x9, false},
	FormatBook:     {"Book Cover (2:3)", AspectRatio1x1, true},
	FormatPhone:    {"Phone Mockup", AspectRatio1x1, true},
	FormatAll:      {"Generate All Formats", "", false},
}

// Ordered variant lists. The formats list is also the expansion order of FormatAll.
var (
	AllStyles         = []Style{StylePhotographic, StyleMinimalist, StyleThreeD, StyleIllustration}
	AllThemes         = []Theme{ThemeNature, ThemeScience, ThemeZen, ThemeEnergy, ThemeFreedom}
	ConcreteFormats   = []Format{FormatSquare, FormatVertical, FormatStory, FormatBanner, FormatBook, FormatPhone}
	SelectableFormats = append(append([]Format{}, ConcreteFormats...), FormatAll)
)

func (s Style) Valid() bool {
	_, ok := styles[s]
	return ok
}

func (s Style) Label() string { return styles[s].label }

func (s Style) Description() string { return styles[s].description }

func (t Theme) Valid() bool {
	_, ok := themes[t]
	return ok
}

func (t Theme) Label() string { return themes[t].label }

func (t Theme) Description() string { return themes[t].description }

func (f Format) Valid() bool {
	_, ok := formats[f]
	return ok
}

func (f Format) Label() string { return formats[f].label }

// AspectRatio returns the ratio code requested from the model. Formats without
// a distinct ratio (and the meta format) fall back to square.
func (f Format) AspectRatio() AspectRatio {
	if r := formats[f].aspectRatio; r != "" {
		return r
	}
	return AspectRatio1x1
}

// IsMockup reports whether the format is framed as a physical/device mockup.
func (f Format) IsMockup() bool { return formats[f].mockup }

// Expand resolves FormatAll into the concrete formats in their fixed order.
// Any other format expands to itself.
func (f Format) Expand() []Format {
	if f == FormatAll {
		out := make([]Format, len(ConcreteFormats))
		copy(out, ConcreteFormats)
		return out
	}
	return []Format{f}
}

func ParseStyle(v string) (Style, error) {
	s := Style(strings.ToLower(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown style %q", v)
	}
	return s, nil
}

func ParseTheme(v string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(v)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown theme %q", v)
	}
	return t, nil
}

func ParseFormat(v string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(v)))
	if !f.Valid() {
		return "", fmt.Errorf("unknown format %q", v)
	}
	return f, nil
}
