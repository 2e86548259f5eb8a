// Package convert produces the derivative image for a post: the source comic
// with the icon stamped in the bottom-right corner and a watermark string in
// the bottom-left.
package convert

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	// iconFraction is the icon width relative to the comic width.
	iconFraction = 10
	margin       = 4
)

var watermarkColor = color.NRGBA{R: 0, G: 0, B: 0, A: 110}

// PNGConverter reads and writes PNG files.
type PNGConverter struct{}

// ConvertFile decodes sourcePath and iconPath, overlays them and writes the
// result to outputPath.
func (PNGConverter) ConvertFile(sourcePath, iconPath, watermark, outputPath string) error {
	source, err := decode(sourcePath)
	if err != nil {
		return fmt.Errorf("convert: open comic: %w", err)
	}
	icon, err := decode(iconPath)
	if err != nil {
		return fmt.Errorf("convert: open icon: %w", err)
	}
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("convert: create %s: %w", outputPath, err)
	}
	if err := png.Encode(out, Overlay(source, icon, watermark)); err != nil {
		out.Close()
		return fmt.Errorf("convert: encode %s: %w", outputPath, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("convert: write %s: %w", outputPath, err)
	}
	return nil
}

// Overlay returns a copy of source with icon and watermark drawn on top.
// The result has the same bounds as source.
func Overlay(source, icon image.Image, watermark string) *image.RGBA {
	bounds := source.Bounds()
	dst := image.NewRGBA(bounds)
	xdraw.Draw(dst, bounds, source, bounds.Min, xdraw.Src)

	iconBounds := icon.Bounds()
	if iconBounds.Dx() > 0 && iconBounds.Dy() > 0 {
		width := max(1, bounds.Dx()/iconFraction)
		height := max(1, width*iconBounds.Dy()/iconBounds.Dx())
		target := image.Rect(
			bounds.Max.X-margin-width, bounds.Max.Y-margin-height,
			bounds.Max.X-margin, bounds.Max.Y-margin,
		)
		xdraw.CatmullRom.Scale(dst, target, icon, iconBounds, xdraw.Over, nil)
	}

	if watermark != "" {
		drawer := font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(watermarkColor),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(bounds.Min.X+margin, bounds.Max.Y-margin-basicfont.Face7x13.Descent),
		}
		drawer.DrawString(watermark)
	}
	return dst
}

func decode(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
