package preview

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	placeholderBG   = color.RGBA{0x1A, 0x1A, 0x3A, 0xFF}
	placeholderGrid = color.RGBA{0x2A, 0x2A, 0x5A, 0xFF}
	placeholderText = color.RGBA{0xC0, 0xC0, 0xE0, 0xFF}
)

const placeholderGridStep = 32

// Placeholder renders a stand-in image for files that cannot be previewed:
// a dark panel with a faint grid and the file's name, so the browser keeps
// working when a package entry turns out not to be a texture.
func Placeholder(width, height int, label string) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(placeholderBG), image.Point{}, draw.Src)

	for x := 0; x < width; x += placeholderGridStep {
		for y := 0; y < height; y++ {
			img.Set(x, y, placeholderGrid)
		}
	}
	for y := 0; y < height; y += placeholderGridStep {
		for x := 0; x < width; x++ {
			img.Set(x, y, placeholderGrid)
		}
	}

	if label != "" {
		d := font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(placeholderText),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(8, height/2),
		}
		d.DrawString(label)
	}

	return img
}
