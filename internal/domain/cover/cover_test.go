package cover

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatExpand(t *testing.T) {
	t.Run("concrete formats expand to themselves", func(t *testing.T) {
		for _, f := range ConcreteFormats {
			assert.Equal(t, []Format{f}, f.Expand())
		}
	})

	t.Run("all expands to the six concrete formats in order", func(t *testing.T) {
		got := FormatAll.Expand()
		assert.Equal(t, []Format{FormatSquare, FormatVertical, FormatStory, FormatBanner, FormatBook, FormatPhone}, got)
		assert.Equal(t, got, FormatAll.Expand(), "expansion must be stable")
	})

	t.Run("expansion result is a copy", func(t *testing.T) {
		got := FormatAll.Expand()
		got[0] = FormatPhone
		assert.Equal(t, FormatSquare, FormatAll.Expand()[0])
	})
}

func TestTablesAreExhaustive(t *testing.T) {
	for _, s := range AllStyles {
		assert.NotEmpty(t, s.Label(), s)
		assert.NotEmpty(t, s.Description(), s)
	}
	for _, th := range AllThemes {
		assert.NotEmpty(t, th.Label(), th)
		assert.NotEmpty(t, th.Description(), th)
	}
	for _, f := range SelectableFormats {
		assert.NotEmpty(t, f.Label(), f)
	}
	assert.Len(t, styles, len(AllStyles))
	assert.Len(t, themes, len(AllThemes))
	assert.Len(t, formats, len(SelectableFormats))
}

func TestFormatAspectRatio(t *testing.T) {
	cases := map[Format]AspectRatio{
		FormatSquare:   AspectRatio1x1,
		FormatVertical: AspectRatio3x4,
		FormatStory:    AspectRatio9x16,
		FormatBanner:   AspectRatio16x9,
		FormatBook:     AspectRatio1x1,
		FormatPhone:    AspectRatio1x1,
		FormatAll:      AspectRatio1x1,
	}
	for f, want := range cases {
		assert.Equal(t, want, f.AspectRatio(), f)
	}
	assert.True(t, FormatBook.IsMockup())
	assert.True(t, FormatPhone.IsMockup())
	assert.False(t, FormatBanner.IsMockup())
}

func TestParse(t *testing.T) {
	s, err := ParseStyle(" Minimalist ")
	require.NoError(t, err)
	assert.Equal(t, StyleMinimalist, s)

	th, err := ParseTheme("zen")
	require.NoError(t, err)
	assert.Equal(t, ThemeZen, th)

	f, err := ParseFormat("ALL")
	require.NoError(t, err)
	assert.Equal(t, FormatAll, f)

	_, err = ParseStyle("watercolor")
	assert.Error(t, err)
	_, err = ParseTheme("")
	assert.Error(t, err)
	_, err = ParseFormat("poster")
	assert.Error(t, err)
}

func TestParseDataURL(t *testing.T) {
	raw := []byte("\x89PNG\r\n\x1a\nrest-of-png")
	encoded := base64.StdEncoding.EncodeToString(raw)

	t.Run("data URL keeps declared mime type", func(t *testing.T) {
		ref, err := ParseDataURL("data:image/jpeg;base64," + encoded)
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", ref.MIMEType)
		assert.Equal(t, raw, ref.Data)
	})

	t.Run("data URL without mime defaults to png", func(t *testing.T) {
		ref, err := ParseDataURL("data:;base64," + encoded)
		require.NoError(t, err)
		assert.Equal(t, "image/png", ref.MIMEType)
	})

	t.Run("bare base64 is sniffed", func(t *testing.T) {
		ref, err := ParseDataURL(encoded)
		require.NoError(t, err)
		assert.Equal(t, "image/png", ref.MIMEType)
	})

	t.Run("invalid payloads", func(t *testing.T) {
		_, err := ParseDataURL("")
		assert.Error(t, err)
		_, err = ParseDataURL("data:image/png;base64")
		assert.Error(t, err)
		_, err = ParseDataURL("data:image/png;base64,!!!")
		assert.Error(t, err)
	})
}

func TestGenerationRequestValidate(t *testing.T) {
	req := GenerationRequest{Style: StyleThreeD, Theme: ThemeScience, Format: FormatAll}
	assert.NoError(t, req.Validate())

	req.Format = "poster"
	assert.Error(t, req.Validate())
}

func TestGeneratedImageDataURL(t *testing.T) {
	img := GeneratedImage{ID: "abc", Data: []byte("png"), CreatedAt: time.Now()}
	assert.Equal(t, "data:image/png;base64,cG5n", img.DataURL())

	img.MIMEType = "image/webp"
	assert.Equal(t, "data:image/webp;base64,cG5n", img.DataURL())
}
