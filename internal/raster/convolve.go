package raster

// Convolve slides k over every channel of m and returns a new matrix of the
// same shape. Weights are applied in correlation orientation: k.At(i, j)
// multiplies the sample at offset (i-r, j-r) from the output position, where r
// is the kernel radius. Results are not clamped.
func Convolve(m *Matrix, k Kernel) *Matrix {
	out := New(m.Height, m.Width, m.Channels)
	r := k.Radius()
	size := k.Size()

	// Precompute reflected indices once per axis; the inner loop then only
	// does table lookups.
	rows := reflectTable(m.Height, r)
	cols := reflectTable(m.Width, r)

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			for c := 0; c < m.Channels; c++ {
				var sum float64
				for i := 0; i < size; i++ {
					sy := rows[y+i]
					for j := 0; j < size; j++ {
						w := k.At(i, j)
						if w == 0 {
							continue
						}
						sum += w * m.Pix[(sy*m.Width+cols[x+j])*m.Channels+c]
					}
				}
				out.Pix[(y*m.Width+x)*m.Channels+c] = sum
			}
		}
	}
	return out
}

// reflectTable maps padded positions 0..n+2r-1 (padded index p corresponds to
// source index p-r) onto in-range indices.
func reflectTable(n, r int) []int {
	t := make([]int, n+2*r)
	for p := range t {
		t[p] = Reflect101(p-r, n)
	}
	return t
}

// Reflect101 maps an index that may fall outside [0, n) back into range by
// mirroring across the edge sample without repeating it: for n=4,
// -1→1, -2→2, 4→2, 5→1.
func Reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - i
	}
	return i
}
