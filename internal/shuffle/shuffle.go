package shuffle

// DefaultPasses is the number of Fisher–Yates passes applied to a roster.
// One pass already yields a uniform permutation; the extra passes are kept so
// the output sequence for a given source stays stable across releases.
const DefaultPasses = 10

// uint32Range is 2^32, the number of distinct values a Source can yield.
const uint32Range = float64(1 << 32)

// Shuffle returns a permuted copy of seq. Each pass walks the slice from the
// end, swapping position i with a uniformly drawn j in [0, i]; later passes
// reshuffle the output of earlier ones. A nil src falls back to Crypto.
func Shuffle[T any](seq []T, passes int, src Source) []T {
	out := make([]T, len(seq))
	copy(out, seq)
	if len(out) <= 1 || passes <= 0 {
		return out
	}
	if src == nil {
		src = Crypto()
	}
	for pass := 0; pass < passes; pass++ {
		for i := len(out) - 1; i > 0; i-- {
			j := Intn(src, i+1)
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// Intn draws an integer in [0, n) as floor(u*n), where u is a Source value
// divided by 2^32. It returns 0 when n <= 1.
func Intn(src Source, n int) int {
	if n <= 1 {
		return 0
	}
	if src == nil {
		src = Crypto()
	}
	u := float64(src.Uint32()) / uint32Range
	j := int(u * float64(n))
	if j >= n {
		j = n - 1
	}
	return j
}
