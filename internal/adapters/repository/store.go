// Package repository loads observation records from the configured corpora.
package repository

import (
	"context"
	"encoding/binary"
	"math"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/okian/gatecompass/internal/domain/model"
)

// Store is a read-only source of observation records.
type Store interface {
	// Name labels the backend in logs and metrics.
	Name() string

	// Load returns the normalised records whose year falls in window.
	// Malformed records are defaulted or skipped, never fatal.
	// Returns ErrUnavailable when the backing corpus cannot be read.
	Load(ctx context.Context, window model.YearRange) ([]model.Record, error)
}

// Versioner is implemented by stores that can identify their content
// without a full load. An empty version means unknown.
type Versioner interface {
	Version(ctx context.Context) (string, error)
}

// Pinger is implemented by stores with a remote dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Fingerprint identifies a record set independently of its order.
func Fingerprint(records []model.Record) string {
	sums := make([]uint64, len(records))
	for i, r := range records {
		sums[i] = recordHash(r)
	}
	sort.Slice(sums, func(i, j int) bool { return sums[i] < sums[j] })

	d := xxhash.New()
	var buf [8]byte
	for _, s := range sums {
		binary.LittleEndian.PutUint64(buf[:], s)
		_, _ = d.Write(buf[:])
	}
	return strconv.FormatUint(d.Sum64(), 16)
}

func recordHash(r model.Record) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(r.ID)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(r.Subject)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(r.Topic)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(r.Year))
	_, _ = d.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(r.Marks))
	_, _ = d.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(r.Difficulty))
	_, _ = d.Write(buf[:])
	return d.Sum64()
}
