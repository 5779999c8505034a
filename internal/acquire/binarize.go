package acquire

import (
	"image"
	"image/color"
)

// binarize thresholds a grayscale image to pure black and white using
// Otsu's method on the red-channel histogram. Input must already be
// grayscale so all channels agree.
func binarize(img *image.NRGBA) *image.NRGBA {
	bounds := img.Bounds()

	var hist [256]int
	total := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			hist[img.NRGBAAt(x, y).R]++
			total++
		}
	}
	if total == 0 {
		return img
	}

	threshold := otsuThreshold(hist, total)

	out := image.NewNRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBA{A: 255}
			if img.NRGBAAt(x, y).R > threshold {
				c.R, c.G, c.B = 255, 255, 255
			}
			out.SetNRGBA(x, y, c)
		}
	}
	return out
}

// otsuThreshold picks the level that maximizes between-class variance.
func otsuThreshold(hist [256]int, total int) uint8 {
	var sum float64
	for i, n := range hist {
		sum += float64(i) * float64(n)
	}

	var sumB, wB float64
	var maxVariance float64
	var threshold uint8

	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])

		mB := sumB / wB
		mF := (sum - sumB) / wF
		variance := wB * wF * (mB - mF) * (mB - mF)
		if variance > maxVariance {
			maxVariance = variance
			threshold = uint8(t)
		}
	}
	return threshold
}
