package color

import "math"

// hueSectors maps each 60 degree hue sector to the (r, g, b) picks from the
// four candidate levels {v, p, q, t}.
var hueSectors = [6][3]int{
	{0, 3, 1}, // red to yellow: v, t, p
	{2, 0, 1}, // yellow to green: q, v, p
	{1, 0, 3}, // green to cyan: p, v, t
	{1, 2, 0}, // cyan to blue: p, q, v
	{3, 1, 0}, // blue to magenta: t, p, v
	{0, 1, 2}, // magenta to red: v, p, q
}

// HSVToRGB converts an 8-bit HSV pixel to 8-bit RGB.
// h is in half degrees (0..179); values of 180 and above wrap around.
// Zero value always yields black, whatever the hue and saturation.
func HSVToRGB(h, s, v uint8) (r, g, b uint8) {
	if s == 0 || v == 0 {
		return v, v, v
	}

	hh := float64(h) * 2 / 60 // sector position in [0, 8.5)
	sf := float64(s) / 255
	vf := float64(v) / 255

	sector := int(math.Floor(hh))
	frac := hh - float64(sector)
	sector %= 6

	levels := [4]float64{
		vf,
		vf * (1 - sf),
		vf * (1 - sf*frac),
		vf * (1 - sf*(1-frac)),
	}
	pick := hueSectors[sector]

	return unit8(levels[pick[0]]), unit8(levels[pick[1]]), unit8(levels[pick[2]])
}

// unit8 maps [0,1] to [0,255] with rounding and clamping.
func unit8(x float64) uint8 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 255
	}
	return uint8(math.Round(x * 255))
}
