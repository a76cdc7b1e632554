package color

import "math"

// Transform is the output conditioning stage applied to every frame before it
// reaches the driver: per-channel gamma, global brightness, and a white-cap
// limiter that rescales pixels whose summed channels exceed the cap.
type Transform struct {
	GammaR, GammaG, GammaB float64
	Brightness             float64 // 0..1
	WhiteCap               float64 // 0..1, fraction of full r+g+b; <=0 or >=1 disables
}

// DefaultTransform passes colors through unchanged.
func DefaultTransform() Transform {
	return Transform{GammaR: 1, GammaG: 1, GammaB: 1, Brightness: 1, WhiteCap: 0}
}

func gamma(x uint8, g float64) uint8 {
	if g == 1 || g <= 0 {
		return x
	}
	return uint8(math.Pow(float64(x)/255.0, g) * 255.0)
}

// Apply conditions a single color.
func (t Transform) Apply(c Color) Color {
	c = Color{
		R: gamma(c.R, t.GammaR),
		G: gamma(c.G, t.GammaG),
		B: gamma(c.B, t.GammaB),
	}
	if t.Brightness >= 0 && t.Brightness < 1 {
		c = c.Scale(t.Brightness)
	}
	if t.WhiteCap > 0 && t.WhiteCap < 1 {
		limit := t.WhiteCap * 3.0 * 255.0
		sum := float64(c.R) + float64(c.G) + float64(c.B)
		if sum > limit && sum > 0 {
			scale := limit / sum
			c = Color{
				R: uint8(math.Round(float64(c.R) * scale)),
				G: uint8(math.Round(float64(c.G) * scale)),
				B: uint8(math.Round(float64(c.B) * scale)),
			}
		}
	}
	return c
}

// ApplyAll conditions a frame in place.
func (t Transform) ApplyAll(cs []Color) {
	for i := range cs {
		cs[i] = t.Apply(cs[i])
	}
}
