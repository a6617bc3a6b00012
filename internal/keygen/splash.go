package keygen

import "math/bits"

// Parameters of the 46-bit multiplicative congruential generator used by
// the SPLASH-2 radix kernel (and, before it, the NAS parallel benchmarks).
const (
	splashSeed  = 314159265
	splashRatio = 1220703125 // 5^13

	mod46Bits = 46
	mod46Mask = 1<<mod46Bits - 1
	mod46     = 1 << mod46Bits

	// samplesPerKey is the number of generator outputs averaged into one key.
	samplesPerKey = 4
)

// productMod46 returns a*b mod 2^46. 2^46 divides 2^64, so the low word of
// the full product already carries the residue.
func productMod46(a, b uint64) uint64 {
	_, lo := bits.Mul64(a, b)
	return lo & mod46Mask
}

// ranNumInit returns b * t^k mod 2^46 by square-and-multiply: the state of a
// generator seeded with b after k steps of multiplying by t.
func ranNumInit(k, b, t uint64) uint64 {
	for k != 0 {
		if k&1 == 1 {
			b = productMod46(b, t)
		}
		t = productMod46(t, t)
		k >>= 1
	}
	return b
}

// fillSplash writes keys start..start+len(dst)-1 of the SPLASH-2 sequence.
// Key i averages generator outputs 4i+1 through 4i+4, so any range can be
// produced independently by jumping the generator ahead.
func fillSplash(dst []uint64, start int, maxKey uint64) {
	ran := ranNumInit(uint64(start)*samplesPerKey+1, splashSeed, splashRatio)
	fmax := float64(maxKey)
	for i := range dst {
		sum := float64(ran) / mod46
		for range samplesPerKey - 1 {
			ran = productMod46(ran, splashRatio)
			sum += float64(ran) / mod46
		}
		v := (sum / samplesPerKey) * fmax
		if v >= fmax {
			dst[i] = maxKey
		} else {
			dst[i] = uint64(v)
		}
		ran = productMod46(ran, splashRatio)
	}
}
