package process

// whiteLevel separates white from black in binary images.
const whiteLevel = 127

// Erode sets a pixel white only if its whole 3x3 neighborhood is white.
// Border pixels are cleared.
func Erode(in, out []byte, width, height int) {
	morph(in, out, width, height, func(p byte) bool { return p < whiteLevel }, false)
}

// Dilate sets a pixel white if any pixel of its 3x3 neighborhood is white.
// Border pixels are cleared.
func Dilate(in, out []byte, width, height int) {
	morph(in, out, width, height, func(p byte) bool { return p > whiteLevel }, true)
}

// morph writes hit for pixels whose neighborhood contains a pixel matching
// stop, and !hit otherwise.
func morph(in, out []byte, width, height int, stop func(byte) bool, hit bool) {
	n := width * height
	for i := range out[:n] {
		out[i] = 0
	}
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			found := false
			for ky := -1; ky <= 1 && !found; ky++ {
				row := (y + ky) * width
				for kx := -1; kx <= 1; kx++ {
					if stop(in[row+x+kx]) {
						found = true
						break
					}
				}
			}
			out[y*width+x] = binary(found == hit)
		}
	}
}
