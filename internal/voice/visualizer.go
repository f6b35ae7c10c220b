package voice

import "math"

// Bar is one rectangle of the frequency visualization, vertically centered.
type Bar struct {
	X       float64
	Y       float64
	Width   float64
	Height  float64
	Opacity float64
}

// Bars lays out the lower half of the frequency bins across a width x height canvas.
// Heights reach at most 80% of the canvas; opacity saturates at 40% of it.
func Bars(freq []uint8, width, height float64) []Bar {
	n := len(freq)
	if n == 0 || width <= 0 || height <= 0 {
		return nil
	}
	half := float64(n) / 2
	barWidth := width / half * 1.5

	bars := make([]Bar, 0, n/2+1)
	x := 0.0
	for i := 0; float64(i) < half; i++ {
		h := float64(freq[i]) / 255 * height * 0.8
		bars = append(bars, Bar{
			X:       x,
			Y:       height/2 - h/2,
			Width:   barWidth,
			Height:  h,
			Opacity: math.Min(h/(height*0.4), 1),
		})
		x += barWidth + 1
	}
	return bars
}
