package render

import "image"

// ToRGBA converts a BGRA32 pixel grid (as returned by FrameBuffer.ReadFrame)
// into a standard library image.RGBA, the form golang.org/x/image/draw's
// scalers expect as a source. This is the one conversion point between this
// package's packed-uint32 wire format and the image.Image interfaces a
// display surface consumes.
func ToRGBA(pixels []uint32, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, px := range pixels {
		b := uint8(px)
		g := uint8(px >> 8)
		r := uint8(px >> 16)
		a := uint8(px >> 24)
		o := i * 4
		img.Pix[o+0] = r
		img.Pix[o+1] = g
		img.Pix[o+2] = b
		img.Pix[o+3] = a
	}
	return img
}
