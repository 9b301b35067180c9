package vistra

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

type TextVertex struct {
	Pos   [2]float32
	UV    [2]float32
	Color [4]float32
}

// TextItem is one run of text the UI backend wants drawn, in screen
// pixels with (0,0) at the top left.
type TextItem struct {
	Text     string
	Position [2]float32
	Scale    float32
	Color    [4]float32
}

type glyphInfo struct {
	uvMin [2]float32
	uvMax [2]float32
	size  [2]float32
	off   [2]float32
	adv   float32
}

// GlyphAtlas rasterizes the printable ASCII range of a font into a single
// alpha texture and provides measurement plus vertex generation for text
// overlays. It backs the TextUi widget renderer.
type GlyphAtlas struct {
	Image  *image.Alpha
	glyphs map[rune]glyphInfo
	face   font.Face
}

const glyphAtlasSize = 512

func NewGlyphAtlas(fontPath string, fontSize float64) (*GlyphAtlas, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}

	f, err := opentype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face: %w", err)
	}

	atlas := image.NewAlpha(image.Rect(0, 0, glyphAtlasSize, glyphAtlasSize))
	glyphs := make(map[rune]glyphInfo)

	x, y := 2, 2
	rowHeight := 0

	for r := rune(32); r < 127; r++ {
		bounds, mask, _, adv, ok := face.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}

		w := mask.Bounds().Dx()
		h := mask.Bounds().Dy()

		if x+w >= glyphAtlasSize {
			x = 2
			y += rowHeight + 4
			rowHeight = 0
		}
		if y+h >= glyphAtlasSize {
			break
		}

		draw.Draw(atlas, image.Rect(x, y, x+w, y+h), mask, mask.Bounds().Min, draw.Src)

		glyphs[r] = glyphInfo{
			uvMin: [2]float32{float32(x) / glyphAtlasSize, float32(y) / glyphAtlasSize},
			uvMax: [2]float32{float32(x+w) / glyphAtlasSize, float32(y+h) / glyphAtlasSize},
			size:  [2]float32{float32(w), float32(h)},
			off:   [2]float32{float32(bounds.Min.X), float32(bounds.Min.Y)},
			adv:   float32(adv) / 64.0, // fixed 26.6 to float
		}

		x += w + 4
		if h > rowHeight {
			rowHeight = h
		}
	}

	return &GlyphAtlas{
		Image:  atlas,
		glyphs: glyphs,
		face:   face,
	}, nil
}

// MeasureText returns the pixel width and height of s at the given scale.
func (a *GlyphAtlas) MeasureText(s string, scale float32) (float32, float32) {
	w := float32(0)
	for _, r := range s {
		if g, ok := a.glyphs[r]; ok {
			w += g.adv * scale
		}
	}
	return w, a.LineHeight(scale)
}

// LineHeight is the vertical advance between text lines at the given scale.
func (a *GlyphAtlas) LineHeight(scale float32) float32 {
	return float32(a.face.Metrics().Height.Ceil()) * scale
}

// BuildVertices expands text items into a triangle list in normalized
// device coordinates, ready for a text overlay pipeline.
func (a *GlyphAtlas) BuildVertices(items []TextItem, screenW, screenH int) []TextVertex {
	vertices := make([]TextVertex, 0, len(items)*6)

	sw := float32(screenW)
	sh := float32(screenH)
	ascent := float32(a.face.Metrics().Ascent.Ceil())

	for _, item := range items {
		penX := item.Position[0]
		baseY := item.Position[1] + ascent*item.Scale

		for _, r := range item.Text {
			g, ok := a.glyphs[r]
			if !ok {
				continue
			}

			x0 := penX + g.off[0]*item.Scale
			y0 := baseY + g.off[1]*item.Scale
			x1 := x0 + g.size[0]*item.Scale
			y1 := y0 + g.size[1]*item.Scale
			penX += g.adv * item.Scale

			// pixel space to NDC
			nx0 := x0/sw*2 - 1
			nx1 := x1/sw*2 - 1
			ny0 := 1 - y0/sh*2
			ny1 := 1 - y1/sh*2

			corners := [6][2]float32{
				{nx0, ny0}, {nx1, ny0}, {nx1, ny1},
				{nx0, ny0}, {nx1, ny1}, {nx0, ny1},
			}
			uvs := [6][2]float32{
				{g.uvMin[0], g.uvMin[1]}, {g.uvMax[0], g.uvMin[1]}, {g.uvMax[0], g.uvMax[1]},
				{g.uvMin[0], g.uvMin[1]}, {g.uvMax[0], g.uvMax[1]}, {g.uvMin[0], g.uvMax[1]},
			}
			for i := 0; i < 6; i++ {
				vertices = append(vertices, TextVertex{
					Pos:   corners[i],
					UV:    uvs[i],
					Color: item.Color,
				})
			}
		}
	}

	return vertices
}
