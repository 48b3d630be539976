package detect

import "image"

// hsvFrame holds one analysis frame as separate hue (0-179), saturation and
// value (0-255) planes.
type hsvFrame struct {
	h, s, v []uint8
}

// load converts img into f, reusing f's buffers when the size matches.
func (f *hsvFrame) load(img *image.NRGBA) {
	b := img.Bounds()
	n := b.Dx() * b.Dy()
	if cap(f.h) < n {
		f.h = make([]uint8, n)
		f.s = make([]uint8, n)
		f.v = make([]uint8, n)
	}
	f.h, f.s, f.v = f.h[:n], f.s[:n], f.v[:n]

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride:]
		for x := 0; x < b.Dx(); x++ {
			p := row[x*4 : x*4+3]
			f.h[i], f.s[i], f.v[i] = rgbToHSV(p[0], p[1], p[2])
			i++
		}
	}
}

// rgbToHSV uses the 8-bit convention where hue is halved to fit 0-179.
func rgbToHSV(r, g, b uint8) (h, s, v uint8) {
	maxc, minc := r, r
	if g > maxc {
		maxc = g
	}
	if b > maxc {
		maxc = b
	}
	if g < minc {
		minc = g
	}
	if b < minc {
		minc = b
	}

	v = maxc
	delta := int(maxc) - int(minc)
	if maxc == 0 || delta == 0 {
		return 0, 0, v
	}
	s = uint8((255*delta + int(maxc)/2) / int(maxc))

	var hue float64
	switch maxc {
	case r:
		hue = 60 * float64(int(g)-int(b)) / float64(delta)
	case g:
		hue = 120 + 60*float64(int(b)-int(r))/float64(delta)
	default:
		hue = 240 + 60*float64(int(r)-int(g))/float64(delta)
	}
	if hue < 0 {
		hue += 360
	}
	h = uint8(hue/2 + 0.5)
	if h >= 180 {
		h = 0
	}
	return h, s, v
}

// contentScore is the mean absolute per-channel HSV difference between two
// frames of equal size, averaged over the three channels.
func contentScore(prev, cur *hsvFrame) float64 {
	n := len(cur.h)
	if n == 0 || len(prev.h) != n {
		return 0
	}
	var dh, ds, dv int
	for i := 0; i < n; i++ {
		dh += absDiff(prev.h[i], cur.h[i])
		ds += absDiff(prev.s[i], cur.s[i])
		dv += absDiff(prev.v[i], cur.v[i])
	}
	return float64(dh+ds+dv) / float64(3*n)
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
