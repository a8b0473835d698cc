/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package audioengine

import "math"

// Gain maps a user volume onto an amplitude multiplier. The exponent gives a fade
// that sounds linear instead of dropping off at the top of the range.
func Gain(volume, power float64, muted bool) float64 {
	if muted || volume <= 0 {
		return 0
	}
	return math.Pow(volume, power)
}

// ApplyGain scales frames in place and clips to [-1, 1].
func ApplyGain(frames [][2]float64, gain float64) {
	for i := range frames {
		for c := 0; c < 2; c++ {
			v := frames[i][c] * gain
			if v > 1 {
				v = 1
			} else if v < -1 {
				v = -1
			}
			frames[i][c] = v
		}
	}
}
