package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/glyphbrush"
)

// Scene is the TOML description of what the demo draws.
//
//	width = 1024
//	height = 768
//	fonts = ["/usr/share/fonts/DejaVuSans.ttf"]
//
//	[[section]]
//	text = "Hello"
//	x = 512
//	y = 40
//	z = 0.2
//	scale = 64
//	color = [1.0, 1.0, 1.0, 1.0]
//	align = "center"
type Scene struct {
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`

	// Atlas is the initial glyph atlas size; 0 keeps the default.
	Atlas uint32 `toml:"atlas"`

	// Fonts are font file paths, FontID 1 onwards. FontID 0 is always
	// Go Regular.
	Fonts []string `toml:"fonts"`

	Sections []SceneSection `toml:"section"`
}

// SceneSection is one queued section.
type SceneSection struct {
	Text       string     `toml:"text"`
	X          float32    `toml:"x"`
	Y          float32    `toml:"y"`
	MaxWidth   float32    `toml:"max_width"`
	MaxHeight  float32    `toml:"max_height"`
	Z          float32    `toml:"z"`
	Scale      float32    `toml:"scale"`
	Color      [4]float32 `toml:"color"`
	Font       int        `toml:"font"`
	Align      string     `toml:"align"`
	VAlign     string     `toml:"valign"`
	SingleLine bool       `toml:"single_line"`
}

var errEmptyScene = errors.New("glyphdemo: scene has no sections")

// defaultScene is a centered title in front of a paragraph that wraps
// behind it. The title is queued first and still wins the depth test.
func defaultScene() Scene {
	const w, h = 1024, 768
	return Scene{
		Width:  w,
		Height: h,
		Sections: []SceneSection{
			{
				Text:  "Hello glyphbrush!",
				X:     w / 2,
				Y:     h / 2,
				Z:     0.2,
				Scale: 95,
				Color: [4]float32{0.8, 0.8, 0.8, 1},
				Align: "center", VAlign: "center",
			},
			{
				Text: strings.Repeat("This paragraph is drawn after the title but sits behind it. ", 12),
				X:    20, Y: 20,
				MaxWidth: w - 40, MaxHeight: h - 40,
				Z:     1.0,
				Scale: 30,
				Color: [4]float32{0.05, 0.05, 0.1, 1},
			},
		},
	}
}

// loadScene reads a TOML scene file. Missing sizes fall back to the
// default scene's.
func loadScene(path string) (Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scene{}, fmt.Errorf("glyphdemo: read scene: %w", err)
	}
	var sc Scene
	if err := toml.Unmarshal(data, &sc); err != nil {
		return Scene{}, fmt.Errorf("glyphdemo: parse scene %s: %w", path, err)
	}
	def := defaultScene()
	if sc.Width == 0 {
		sc.Width = def.Width
	}
	if sc.Height == 0 {
		sc.Height = def.Height
	}
	if len(sc.Sections) == 0 {
		return Scene{}, errEmptyScene
	}
	return sc, nil
}

// sections converts the scene to queueable sections.
func (sc Scene) sections() ([]glyphbrush.Section, error) {
	out := make([]glyphbrush.Section, 0, len(sc.Sections))
	for i, s := range sc.Sections {
		h, err := parseHAlign(s.Align)
		if err != nil {
			return nil, fmt.Errorf("glyphdemo: section %d: %w", i, err)
		}
		v, err := parseVAlign(s.VAlign)
		if err != nil {
			return nil, fmt.Errorf("glyphdemo: section %d: %w", i, err)
		}
		out = append(out, glyphbrush.Section{
			ScreenPosition: glyphbrush.Point{X: s.X, Y: s.Y},
			Bounds:         glyphbrush.Point{X: s.MaxWidth, Y: s.MaxHeight},
			Z:              s.Z,
			Layout:         glyphbrush.Layout{SingleLine: s.SingleLine, HAlign: h, VAlign: v},
			Text: []glyphbrush.SectionText{{
				Text:  s.Text,
				Scale: s.Scale,
				Color: s.Color,
				Font:  glyphbrush.FontID(s.Font),
			}},
		})
	}
	return out, nil
}

func parseHAlign(s string) (glyphbrush.HAlign, error) {
	switch strings.ToLower(s) {
	case "", "left":
		return glyphbrush.HAlignLeft, nil
	case "center":
		return glyphbrush.HAlignCenter, nil
	case "right":
		return glyphbrush.HAlignRight, nil
	}
	return 0, fmt.Errorf("unknown align %q", s)
}

func parseVAlign(s string) (glyphbrush.VAlign, error) {
	switch strings.ToLower(s) {
	case "", "top":
		return glyphbrush.VAlignTop, nil
	case "center":
		return glyphbrush.VAlignCenter, nil
	case "bottom":
		return glyphbrush.VAlignBottom, nil
	}
	return 0, fmt.Errorf("unknown valign %q", s)
}
