// Package assign implements the deterministic auto-assignment algorithm:
// seeded ranking, per-category quotas, and the ATENDER/NO_ATENDER partition.
// The package is pure so the same algorithm serves both the transactional
// server path and the local in-memory path.
package assign

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"

	"github.com/jakechorley/flightguard/pkg/core/model"
)

// rankScore hashes seed|flightKey into a well-distributed integer. Equal
// inputs always hash equally, which is what makes a persisted seed enough
// to recompute a run's ranking for audit.
func rankScore(seed, flightKey string) uint64 {
	h := sha256.New()
	h.Write([]byte(seed))
	h.Write([]byte("|"))
	h.Write([]byte(flightKey))
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8])
}

// Rank orders flights by their seeded hash score, ascending. Hash ties fall
// back to lexicographic comparison of the flight key, so the order is a
// strict total order and re-ranking with the same seed reproduces it
// byte-for-byte. The input slice is not modified.
func Rank(flights []model.Flight, seed string) []model.Flight {
	ranked := make([]model.Flight, len(flights))
	copy(ranked, flights)

	scores := make(map[string]uint64, len(ranked))
	for _, f := range ranked {
		scores[f.FlightKey] = rankScore(seed, f.FlightKey)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := scores[ranked[i].FlightKey], scores[ranked[j].FlightKey]
		if si != sj {
			return si < sj
		}
		return ranked[i].FlightKey < ranked[j].FlightKey
	})

	return ranked
}
