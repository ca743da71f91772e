package editor

import (
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/png"
	"io"

	xdraw "golang.org/x/image/draw"
)

// CompositeFrame flattens one frame into an NRGBA image, compositing visible
// layers bottom to top with per-layer opacity. Layer index 0 is topmost, so
// the list is walked in reverse.
func CompositeFrame(p *Project, frameIndex int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.Width, p.Height))
	if frameIndex < 0 || frameIndex >= len(p.Frames) {
		return img
	}
	frame := &p.Frames[frameIndex]
	for i := len(p.Layers) - 1; i >= 0; i-- {
		layer := p.Layers[i]
		if !layer.Visible || layer.Opacity <= 0 {
			continue
		}
		grid, ok := frame.Layers[layer.ID]
		if !ok {
			continue
		}
		for y := 0; y < p.Height; y++ {
			for x := 0; x < p.Width; x++ {
				c := grid.At(x, y)
				if c == Empty {
					continue
				}
				px := ParseColor(c)
				px.A = uint8(int(px.A) * layer.Opacity / 100)
				blendOver(img, x, y, px)
			}
		}
	}
	return img
}

// blendOver source-over composites px onto the image at (x, y).
func blendOver(img *image.NRGBA, x, y int, px color.NRGBA) {
	if px.A == 255 {
		img.SetNRGBA(x, y, px)
		return
	}
	dst := img.NRGBAAt(x, y)
	sa := int(px.A)
	da := int(dst.A) * (255 - sa) / 255
	outA := sa + da
	if outA == 0 {
		img.SetNRGBA(x, y, color.NRGBA{})
		return
	}
	blend := func(s, d uint8) uint8 {
		return uint8((int(s)*sa + int(d)*da) / outA)
	}
	img.SetNRGBA(x, y, color.NRGBA{
		R: blend(px.R, dst.R),
		G: blend(px.G, dst.G),
		B: blend(px.B, dst.B),
		A: uint8(outA),
	})
}

// ExportPNG writes one frame as a PNG scaled by an integer factor using
// nearest-neighbor so pixel edges stay crisp.
func ExportPNG(w io.Writer, p *Project, frameIndex, scale int) error {
	img := scaleNearest(CompositeFrame(p, frameIndex), scale)
	return png.Encode(w, img)
}

// ExportGIF writes the whole animation as a GIF, honoring per-frame display
// durations (GIF delay units are hundredths of a second).
func ExportGIF(w io.Writer, p *Project, scale int) error {
	anim := &gif.GIF{LoopCount: 0}
	for i := range p.Frames {
		src := scaleNearest(CompositeFrame(p, i), scale)
		pal := image.NewPaletted(src.Bounds(), paletteFor(src))
		xdraw.Draw(pal, pal.Bounds(), src, image.Point{}, xdraw.Src)
		delay := p.Frames[i].Duration / 10
		if delay < 1 {
			delay = 1
		}
		anim.Image = append(anim.Image, pal)
		anim.Delay = append(anim.Delay, delay)
		anim.Disposal = append(anim.Disposal, gif.DisposalBackground)
	}
	return gif.EncodeAll(w, anim)
}

func scaleNearest(src *image.NRGBA, scale int) *image.NRGBA {
	if scale <= 1 {
		return src
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

// paletteFor builds a GIF palette from the image's distinct colors, falling
// back to Plan9 when a frame uses more than 255.
func paletteFor(src *image.NRGBA) color.Palette {
	pal := color.Palette{color.NRGBA{}} // index 0 transparent
	seen := map[color.NRGBA]bool{{}: true}
	b := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := src.NRGBAAt(x, y)
			if c.A == 0 {
				c = color.NRGBA{}
			}
			if !seen[c] {
				seen[c] = true
				pal = append(pal, c)
				if len(pal) > 255 {
					return append(color.Palette{color.NRGBA{}}, palette.Plan9[:255]...)
				}
			}
		}
	}
	return pal
}
