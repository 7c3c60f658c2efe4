package process

// Histogram counts grayscale intensities.
func Histogram(pixels []byte) (hist [256]uint32) {
	for _, p := range pixels {
		hist[p]++
	}
	return
}

// HistogramRGB counts mean channel intensities of RGB888 pixels.
func HistogramRGB(pixels []byte) (hist [256]uint32) {
	for i := 0; i+2 < len(pixels); i += 3 {
		hist[intensity(pixels[i:i+3])]++
	}
	return
}

// Otsu finds the threshold maximizing the between-class variance.
func Otsu(hist [256]uint32) byte {
	var total, sum float64
	for i, n := range hist {
		total += float64(n)
		sum += float64(i) * float64(n)
	}
	var sumB, wB, varMax float64
	var threshold byte
	for t, n := range hist {
		wB += float64(n)
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(n)
		mB, mF := sumB/wB, (sum-sumB)/wF
		if v := wB * wF * (mB - mF) * (mB - mF); v > varMax {
			varMax, threshold = v, byte(t)
		}
	}
	return threshold
}

// Threshold maps pixels above threshold to 255 and others to 0.
func Threshold(in, out []byte, threshold byte) {
	for i, p := range in {
		out[i] = binary(p > threshold)
	}
}

// ThresholdRGB thresholds RGB888 pixels into one grayscale byte each.
func ThresholdRGB(in, out []byte, threshold byte) {
	for i := range out {
		out[i] = binary(intensity(in[i*3:i*3+3]) > threshold)
	}
}

func intensity(rgb []byte) byte {
	return byte((uint16(rgb[0]) + uint16(rgb[1]) + uint16(rgb[2])) / 3)
}

func binary(white bool) byte {
	if white {
		return 255
	}
	return 0
}
