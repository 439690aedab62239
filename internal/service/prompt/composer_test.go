package prompt

import (
	"strings"
	"testing"

	"github.com/ChaseRain/coverstudio/internal/domain/cover"
	"github.com/stretchr/testify/assert"
)

func baseRequest() cover.GenerationRequest {
	return cover.GenerationRequest{
		Style:  cover.StylePhotographic,
		Theme:  cover.ThemeNature,
		Format: cover.FormatSquare,
	}
}

func TestCompose_SectionOrder(t *testing.T) {
	req := baseRequest()
	req.Title = "Free Lungs"
	req.Subtitle = "Breathe freedom"
	req.Description = "a person breathing in a forest"

	got := Compose(req, cover.FormatBook)

	order := []string{
		"TASK: Create a professional digital asset for Book Cover (2:3).",
		"STYLE: Cinematic professional photography.",
		"THEME: " + cover.ThemeNature.Description(),
		"Product: 3D Realistic physical book mockup.",
		mockupBackground,
		`Branding: Main Title "Free Lungs", Subtitle "Breathe freedom". Elegant typography.`,
		"Details: a person breathing in a forest",
		qualityDirective,
	}
	last := -1
	for _, part := range order {
		idx := strings.Index(got.Prompt, part)
		if !assert.GreaterOrEqual(t, idx, 0, "missing %q", part) {
			continue
		}
		assert.Greater(t, idx, last, "%q out of order", part)
		last = idx
	}
	assert.Equal(t, cover.AspectRatio1x1, got.AspectRatio)
}

func TestCompose_AspectRatioFollowsFormat(t *testing.T) {
	req := baseRequest()
	assert.Equal(t, cover.AspectRatio16x9, Compose(req, cover.FormatBanner).AspectRatio)
	assert.Equal(t, cover.AspectRatio9x16, Compose(req, cover.FormatStory).AspectRatio)
	assert.Equal(t, cover.AspectRatio3x4, Compose(req, cover.FormatVertical).AspectRatio)
}

func TestCompose_FormatContextOnlyForMockups(t *testing.T) {
	req := baseRequest()
	assert.Empty(t, Compose(req, cover.FormatSquare).Sections.FormatContext)
	assert.Contains(t, Compose(req, cover.FormatPhone).Sections.FormatContext, "smartphone")
	assert.Len(t, Compose(req, cover.FormatSquare).Sections.Lines(), 7)
}

func TestCompose_Background(t *testing.T) {
	t.Run("transparency overrides every theme and mockup", func(t *testing.T) {
		for _, theme := range cover.AllThemes {
			for _, format := range cover.ConcreteFormats {
				req := baseRequest()
				req.Theme = theme
				req.Transparent = true
				bg := Compose(req, format).Sections.Background
				assert.Equal(t, transparentBackground, bg)
				assert.NotContains(t, bg, theme.Description())
			}
		}
	})

	t.Run("mockup formats use the staged surface", func(t *testing.T) {
		req := baseRequest()
		req.Theme = cover.ThemeZen
		assert.Equal(t, mockupBackground, Compose(req, cover.FormatBook).Sections.Background)
		assert.Equal(t, mockupBackground, Compose(req, cover.FormatPhone).Sections.Background)
	})

	t.Run("other formats use the theme", func(t *testing.T) {
		req := baseRequest()
		req.Theme = cover.ThemeEnergy
		assert.Equal(t, cover.ThemeEnergy.Description(), Compose(req, cover.FormatStory).Sections.Background)
	})
}

func TestCompose_Branding(t *testing.T) {
	for _, title := range []string{"", "   ", "\t\n"} {
		req := baseRequest()
		req.Title = title
		req.Subtitle = "Secret Subtitle"
		got := Compose(req, cover.FormatSquare)
		assert.Equal(t, visualsOnly, got.Sections.Branding)
		assert.NotContains(t, got.Prompt, "Secret Subtitle")
	}

	req := baseRequest()
	req.Title = "Pulmão Livre"
	assert.Contains(t, Compose(req, cover.FormatSquare).Sections.Branding, `Main Title "Pulmão Livre"`)
}

func TestCompose_BrandingKeepsTitleVerbatim(t *testing.T) {
	req := baseRequest()
	req.Title = `Respire "Livre"`
	req.Subtitle = "C:\\path\ttab"

	got := Compose(req, cover.FormatSquare)
	assert.Equal(t, "Branding: Main Title \"Respire \"Livre\"\", Subtitle \"C:\\path\ttab\". Elegant typography.", got.Sections.Branding)
	assert.NotContains(t, got.Prompt, `\"Livre\"`)
	assert.NotContains(t, got.Prompt, `\\path`)
}

func TestCompose_EditingContext(t *testing.T) {
	ref := &cover.ReferenceImage{Data: []byte("img"), MIMEType: "image/jpeg"}

	t.Run("reference with description", func(t *testing.T) {
		req := baseRequest()
		req.Reference = ref
		req.Description = "brighter colors"
		got := Compose(req, cover.FormatSquare)
		assert.Contains(t, got.Sections.Editing, "reference image as the base")
		assert.Contains(t, got.Sections.Editing, "User Request: brighter colors")
		assert.Same(t, ref, got.Reference)
	})

	t.Run("reference without description uses default request", func(t *testing.T) {
		req := baseRequest()
		req.Reference = ref
		assert.Contains(t, Compose(req, cover.FormatSquare).Sections.Editing, defaultEditRequest)
	})

	t.Run("no reference", func(t *testing.T) {
		req := baseRequest()
		got := Compose(req, cover.FormatSquare)
		assert.Equal(t, "Details: "+defaultDetails, got.Sections.Editing)
		assert.Nil(t, got.Reference)
	})
}

func TestCompose_Deterministic(t *testing.T) {
	req := baseRequest()
	req.Title = "A"
	assert.Equal(t, Compose(req, cover.FormatBanner), Compose(req, cover.FormatBanner))
}
