// Package keygen produces deterministic key sequences for the sort driver,
// tests and benchmarks.
//
// Every distribution is addressed by key index: key i is the same no matter
// how the sequence is split into ranges or how many goroutines generate it.
package keygen

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/spaolacci/murmur3"
	"golang.org/x/sync/errgroup"

	sorterrors "github.com/tamirms/radixsort/errors"
)

// Distribution selects how keys are drawn from [0, maxKey].
type Distribution uint8

const (
	// Splash is the SPLASH-2 radix kernel's generator: the average of four
	// 46-bit congruential samples, scaled to maxKey. Keys cluster around
	// maxKey/2. The seed is fixed.
	Splash Distribution = iota
	// Uniform draws keys uniformly with a PCG seeded per chunk.
	Uniform
	// Hashed maps key index i to murmur3(i) mod (maxKey+1).
	Hashed
)

var distributionNames = [...]string{
	Splash:  "splash",
	Uniform: "uniform",
	Hashed:  "hashed",
}

func (d Distribution) String() string {
	if int(d) < len(distributionNames) {
		return distributionNames[d]
	}
	return fmt.Sprintf("Distribution(%d)", uint8(d))
}

// ParseDistribution returns the distribution with the given name.
func ParseDistribution(name string) (Distribution, error) {
	for d, n := range distributionNames {
		if strings.EqualFold(name, n) {
			return Distribution(d), nil
		}
	}
	return 0, fmt.Errorf("%w: %q (want one of %s)",
		sorterrors.ErrUnknownDistribution, name, strings.Join(distributionNames[:], ", "))
}

// chunkSize is the unit of parallel generation and of Uniform reseeding.
const chunkSize = 1 << 16

// Generator produces keys of one distribution.
type Generator struct {
	dist   Distribution
	maxKey uint64
	seed   uint64
}

// New returns a generator for keys in [0, maxKey].
func New(dist Distribution, maxKey, seed uint64) (*Generator, error) {
	if int(dist) >= len(distributionNames) {
		return nil, fmt.Errorf("%w: %v", sorterrors.ErrUnknownDistribution, dist)
	}
	return &Generator{dist: dist, maxKey: maxKey, seed: seed}, nil
}

// MaxKey returns the upper bound of generated keys.
func (g *Generator) MaxKey() uint64 { return g.maxKey }

// Fill writes keys start..start+len(dst)-1 into dst.
//
// Splash and Hashed keys depend only on their index. Uniform reseeds at every
// call, so Uniform output is reproducible only for the same call boundaries;
// Generate always splits at multiples of an internal chunk size.
func (g *Generator) Fill(dst []uint64, start int) {
	switch g.dist {
	case Splash:
		fillSplash(dst, start, g.maxKey)
	case Uniform:
		rng := rand.New(rand.NewPCG(g.seed, uint64(start)))
		for i := range dst {
			dst[i] = bounded(rng, g.maxKey)
		}
	case Hashed:
		var buf [8]byte
		seed := uint32(g.seed) ^ uint32(g.seed>>32)
		for i := range dst {
			binary.LittleEndian.PutUint64(buf[:], uint64(start+i))
			dst[i] = reduce(murmur3.Sum64WithSeed(buf[:], seed), g.maxKey)
		}
	}
}

// bounded draws from [0, maxKey] without modulo bias.
func bounded(rng *rand.Rand, maxKey uint64) uint64 {
	if maxKey == ^uint64(0) {
		return rng.Uint64()
	}
	return rng.Uint64N(maxKey + 1)
}

func reduce(h, maxKey uint64) uint64 {
	if maxKey == ^uint64(0) {
		return h
	}
	return h % (maxKey + 1)
}

// Unsigned is the key type set Generate can produce.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint
}

// Generate returns n keys converted to K, produced by up to workers
// goroutines. The caller must pick a maxKey that fits in K.
func Generate[K Unsigned](ctx context.Context, g *Generator, n, workers int) ([]K, error) {
	if workers < 1 {
		workers = 1
	}
	keys := make([]K, n)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for lo := 0; lo < n; lo += chunkSize {
		hi := min(lo+chunkSize, n)
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			buf := make([]uint64, hi-lo)
			g.Fill(buf, lo)
			for i, v := range buf {
				keys[lo+i] = K(v)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return keys, nil
}
