// Package render draws a game snapshot as an image with gg.
package render

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/hoshinonyaruko/insane-snake/structs"
)

// SpriteSource provides food sprites already sized to the food extent.
type SpriteSource interface {
	Get(t structs.FoodType) (image.Image, bool)
}

// Renderer draws frames. It is safe for concurrent use as long as the sprite
// source is.
type Renderer struct {
	sprites SpriteSource
}

// New creates a renderer. sprites may be nil, in which case food is drawn as
// a coloured ellipse.
func New(sprites SpriteSource) *Renderer {
	return &Renderer{sprites: sprites}
}

var foodColors = map[structs.FoodType]color.Color{
	structs.FoodPlain:   color.NRGBA{220, 40, 40, 255},
	structs.FoodSpeed:   color.NRGBA{40, 90, 220, 255},
	structs.FoodEnlarge: color.NRGBA{40, 180, 60, 255},
}

// Frame renders the board, then applies the game-over blur and the insane
// rotation.
func (r *Renderer) Frame(s structs.Snapshot) image.Image {
	cell := s.CellSize
	width := s.Width * cell
	height := s.Height * cell

	dc := gg.NewContext(width, height)
	renderBackground(dc, s)
	renderGrid(dc, width, height, cell)
	r.renderFood(dc, s.Food, cell)
	renderSnake(dc, s, cell)

	var img image.Image = dc.Image()
	if s.GameOver {
		img = renderGameOver(img, s)
	}
	return rotate(img, s.Rotation)
}

// SavePNG renders s into path, creating the parent directory.
func (r *Renderer) SavePNG(s structs.Snapshot, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := imaging.Save(r.Frame(s), path); err != nil {
		return fmt.Errorf("save frame: %w", err)
	}
	return nil
}

func renderBackground(dc *gg.Context, s structs.Snapshot) {
	if s.Flicker {
		dc.SetRGB255(int(s.Background.R), int(s.Background.G), int(s.Background.B))
	} else {
		dc.SetRGB(1, 1, 1)
	}
	dc.Clear()
}

func renderGrid(dc *gg.Context, width, height, blockSize int) {
	dc.SetRGB(0.9, 0.9, 0.9)
	dc.SetLineWidth(1)
	for x := 0; x <= width; x += blockSize {
		dc.DrawLine(float64(x), 0, float64(x), float64(height))
		dc.Stroke()
	}
	for y := 0; y <= height; y += blockSize {
		dc.DrawLine(0, float64(y), float64(width), float64(y))
		dc.Stroke()
	}
}

func (r *Renderer) renderFood(dc *gg.Context, f structs.FoodView, cell int) {
	x := f.X * float64(cell)
	y := f.Y * float64(cell)
	w := f.Width * float64(cell)
	h := f.Height * float64(cell)

	if r.sprites != nil {
		if img, ok := r.sprites.Get(f.Type); ok {
			dc.DrawImage(img, int(x), int(y))
			return
		}
	}
	dc.SetColor(foodColors[f.Type])
	dc.DrawEllipse(x+w/2, y+h/2, w/2, h/2)
	dc.Fill()
}

func renderSnake(dc *gg.Context, s structs.Snapshot, cell int) {
	c := float64(cell)
	for i := len(s.Segments) - 1; i >= 0; i-- {
		seg := s.Segments[i]
		radius := c / 2
		if i == 0 {
			if s.HeadEnlarged {
				radius = c / 1.2
			}
			dc.SetRGB255(20, 110, 20)
		} else {
			dc.SetRGB255(60, 170, 60)
		}
		dc.DrawCircle(float64(seg.X)*c+c/2, float64(seg.Y)*c+c/2, radius)
		dc.Fill()
	}

	dc.SetRGB(0, 0, 0)
	dc.DrawString(fmt.Sprintf("Score: %d", s.Score), 8, 16)
	dc.DrawString(fmt.Sprintf("Length: %d", s.Length), 8, 32)
}

// renderGameOver blurs the board and writes the message on top.
func renderGameOver(img image.Image, s structs.Snapshot) image.Image {
	blurred := imaging.Blur(img, 3.5)
	b := blurred.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.DrawImage(blurred, 0, 0)
	dc.SetRGBA(0, 0, 0, 0.4)
	dc.DrawRectangle(0, float64(b.Dy())/2-20, float64(b.Dx()), 40)
	dc.Fill()
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(s.Message, float64(b.Dx())/2, float64(b.Dy())/2, 0.5, 0.5)
	return dc.Image()
}

// rotate turns the board clockwise by degrees (a multiple of 90).
func rotate(img image.Image, degrees int) image.Image {
	switch ((degrees % 360) + 360) % 360 {
	case 90:
		return imaging.Rotate270(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate90(img)
	}
	return img
}
