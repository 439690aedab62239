package prompt

import (
	"fmt"
	"strings"

	"github.com/ChaseRain/coverstudio/internal/domain/cover"
)

const (
	transparentBackground = "Background: PURE SOLID FLAT WHITE (#FFFFFF). Isolated object only. No environment."
	mockupBackground      = "Surface: Premium minimalist table with soft aesthetic lighting."
	visualsOnly           = "Focus: Visuals only. High-quality rendering without text placeholders."
	qualityDirective      = "QUALITY: Hyper-realistic or premium grade. Professional layout."

	defaultEditRequest = "Enhance visual quality and follow the theme."
	defaultDetails     = "Follow theme guidelines."
)

var formatContext = map[cover.Format]string{
	cover.FormatBook:  "Product: 3D Realistic physical book mockup.",
	cover.FormatPhone: "Context: Design displayed on a modern smartphone screen.",
}

// Sections holds every line of a composed prompt. FormatContext is empty for
// formats without mockup framing.
type Sections struct {
	Header        string
	Style         string
	Theme         string
	FormatContext string
	Background    string
	Branding      string
	Editing       string
	Quality       string
}

// Lines returns the non-empty sections in the order the model reads them.
func (s Sections) Lines() []string {
	all := []string{s.Header, s.Style, s.Theme, s.FormatContext, s.Background, s.Branding, s.Editing, s.Quality}
	out := make([]string, 0, len(all))
	for _, line := range all {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

type Composition struct {
	Prompt      string
	AspectRatio cover.AspectRatio
	Reference   *cover.ReferenceImage
	Sections    Sections
}

// Compose builds the prompt for one concrete format of req. It is pure and
// never fails.
func Compose(req cover.GenerationRequest, format cover.Format) Composition {
	sections := Sections{
		Header:        fmt.Sprintf("TASK: Create a professional digital asset for %s.", format.Label()),
		Style:         fmt.Sprintf("STYLE: %s", req.Style.Description()),
		Theme:         fmt.Sprintf("THEME: %s", req.Theme.Description()),
		FormatContext: formatContext[format],
		Background:    background(req, format),
		Branding:      branding(req.Title, req.Subtitle),
		Editing:       editing(req.Reference != nil, req.Description),
		Quality:       qualityDirective,
	}

	return Composition{
		Prompt:      strings.Join(sections.Lines(), "\n"),
		AspectRatio: format.AspectRatio(),
		Reference:   req.Reference,
		Sections:    sections,
	}
}

func background(req cover.GenerationRequest, format cover.Format) string {
	switch {
	case req.Transparent:
		return transparentBackground
	case format.IsMockup():
		return mockupBackground
	default:
		return req.Theme.Description()
	}
}

func branding(title, subtitle string) string {
	if strings.TrimSpace(title) == "" {
		return visualsOnly
	}
	return fmt.Sprintf("Branding: Main Title \"%s\", Subtitle \"%s\". Elegant typography.", title, subtitle)
}

func editing(hasReference bool, description string) string {
	description = strings.TrimSpace(description)
	if hasReference {
		if description == "" {
			description = defaultEditRequest
		}
		return "Action: Use the provided reference image as the base. Edit and professionalize it.\nUser Request: " + description
	}
	if description == "" {
		description = defaultDetails
	}
	return "Details: " + description
}
