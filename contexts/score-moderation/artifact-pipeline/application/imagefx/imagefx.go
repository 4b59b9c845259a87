// Package imagefx holds the pure image transforms behind thumbnail
// composition. Every function is deterministic: same input image and
// parameters, byte-identical output.
package imagefx

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/disintegration/imaging"
)

// BlendMode names a supported colour-overlay blend function.
type BlendMode string

const (
	BlendMultiply  BlendMode = "multiply"
	BlendHardLight BlendMode = "hard_light"
)

// Region is an inclusive pixel bounding box.
type Region struct {
	X0, Y0, X1, Y1 int
}

func (r Region) rect() image.Rectangle {
	return image.Rect(r.X0, r.Y0, r.X1+1, r.Y1+1)
}

// Canvas and preset parameters for the upload thumbnail.
const (
	CanvasWidth  = 1920
	CanvasHeight = 1080

	// JPEGQuality is fixed so output size stays under the delivery platform's
	// ceiling; the stdlib encoder emits 4:2:0 chroma subsampling.
	JPEGQuality = 90
)

var (
	knockoutShade    = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	knockoutBoost    = color.NRGBA{R: 13, G: 13, B: 97, A: 255}
	knockoutBlurBand = Region{X0: 0, Y0: 0, X1: CanvasWidth - 1, Y1: 143}
)

// ResizeToCanvas crops and scales to exactly width x height, filling the
// frame rather than letterboxing.
func ResizeToCanvas(img image.Image, width, height int) *image.NRGBA {
	return imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)
}

// BlendOverlay composites a solid colour layer over the full canvas using the
// named blend function at the given opacity.
func BlendOverlay(img image.Image, colour color.NRGBA, opacity float64, mode BlendMode) (*image.NRGBA, error) {
	var blend func(base, layer uint8) uint8
	switch mode {
	case BlendMultiply:
		blend = blendMultiply
	case BlendHardLight:
		blend = blendHardLight
	default:
		return nil, fmt.Errorf("unknown blend mode %q", mode)
	}
	opacity = clamp01(opacity)

	out := imaging.Clone(img)
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i+0] = mixChannel(out.Pix[i+0], blend(out.Pix[i+0], colour.R), opacity)
		out.Pix[i+1] = mixChannel(out.Pix[i+1], blend(out.Pix[i+1], colour.G), opacity)
		out.Pix[i+2] = mixChannel(out.Pix[i+2], blend(out.Pix[i+2], colour.B), opacity)
	}
	return out, nil
}

// BlurBand Gaussian-blurs only the given region, leaving the rest of the
// image untouched.
func BlurBand(img image.Image, region Region, radius float64) *image.NRGBA {
	out := imaging.Clone(img)
	rect := region.rect().Intersect(out.Bounds())
	if rect.Empty() || radius <= 0 {
		return out
	}
	band := imaging.Blur(imaging.Crop(out, rect), radius)
	return imaging.Paste(out, band, rect.Min)
}

// BrightnessBand multiplies channel values by factor inside the region only.
func BrightnessBand(img image.Image, region Region, factor float64) *image.NRGBA {
	out := imaging.Clone(img)
	rect := region.rect().Intersect(out.Bounds())
	if rect.Empty() {
		return out
	}
	band := imaging.AdjustFunc(imaging.Crop(out, rect), func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: clampChannel(float64(c.R) * factor),
			G: clampChannel(float64(c.G) * factor),
			B: clampChannel(float64(c.B) * factor),
			A: c.A,
		}
	})
	return imaging.Paste(out, band, rect.Min)
}

// ApplyNormalPreset is the plain upload look: crop-fill to canvas size.
func ApplyNormalPreset(img image.Image) *image.NRGBA {
	return ResizeToCanvas(img, CanvasWidth, CanvasHeight)
}

// ApplyKnockoutPreset layers the knockout look: resize, 10% black multiply
// shading, 3px blur across the top band, then a 10% hard-light colour boost.
func ApplyKnockoutPreset(img image.Image) (*image.NRGBA, error) {
	out := ResizeToCanvas(img, CanvasWidth, CanvasHeight)
	shaded, err := BlendOverlay(out, knockoutShade, 0.10, BlendMultiply)
	if err != nil {
		return nil, err
	}
	blurred := BlurBand(shaded, knockoutBlurBand, 3)
	return BlendOverlay(blurred, knockoutBoost, 0.10, BlendHardLight)
}

// EncodePNG serializes losslessly; used when embedding the background into
// the render template.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeJPEG transcodes the final capture with explicit quality so output
// never drifts with library defaults.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		return nil, fmt.Errorf("jpeg quality %d out of range", quality)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func blendMultiply(base, layer uint8) uint8 {
	return uint8((uint16(base) * uint16(layer)) / 255)
}

func blendHardLight(base, layer uint8) uint8 {
	if layer < 128 {
		return uint8((2 * uint16(base) * uint16(layer)) / 255)
	}
	return uint8(255 - (2*uint16(255-base)*uint16(255-layer))/255)
}

func mixChannel(base, blended uint8, opacity float64) uint8 {
	return clampChannel(float64(base)*(1-opacity) + float64(blended)*opacity)
}

func clampChannel(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
