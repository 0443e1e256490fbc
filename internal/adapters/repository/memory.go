package repository

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/okian/gatecompass/internal/domain/model"
	"github.com/okian/gatecompass/pkg/logger"
	"github.com/okian/gatecompass/pkg/metrics"
)

//go:embed seed/gate_cse.yaml
var seedCorpus []byte

// MemoryStore is an immutable in-memory corpus.
type MemoryStore struct {
	records []model.Record
	version string
	opts    options
}

// NewMemoryStore builds a store over a copy of records. The version combines
// label with a fingerprint of the records.
func NewMemoryStore(label string, records []model.Record, opts ...Option) *MemoryStore {
	cp := make([]model.Record, len(records))
	copy(cp, records)

	version := Fingerprint(cp)
	if label != "" {
		version = label + "-" + version
	}
	return &MemoryStore{records: cp, version: version, opts: buildOptions("memory", opts)}
}

// NewMemoryStoreFromDocuments normalises every document into one store.
// Version labels are joined in document order.
func NewMemoryStoreFromDocuments(docs []Document, opts ...Option) *MemoryStore {
	var (
		raws   []model.Raw
		labels []string
	)
	for _, d := range docs {
		raws = append(raws, d.Raws()...)
		if d.Version != "" {
			labels = append(labels, d.Version)
		}
	}
	records, skipped := normalizeAll(raws)
	s := NewMemoryStore(strings.Join(labels, "+"), records, opts...)
	reportSkipped(s.opts, "documents", skipped)
	return s
}

// Seed returns the GATE CSE corpus embedded in the binary.
func Seed(opts ...Option) (*MemoryStore, error) {
	doc, err := DecodeYAML(seedCorpus)
	if err != nil {
		return nil, fmt.Errorf("seed corpus: %w", err)
	}
	return NewMemoryStoreFromDocuments([]Document{doc}, append([]Option{WithName("seed")}, opts...)...), nil
}

func (s *MemoryStore) Name() string { return s.opts.name }

// Load returns the records inside window. The result is a fresh slice.
func (s *MemoryStore) Load(ctx context.Context, window model.YearRange) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return model.Filter(s.records, window), nil
}

// Version identifies the corpus content.
func (s *MemoryStore) Version(context.Context) (string, error) { return s.version, nil }

// Len is the number of records held, regardless of window.
func (s *MemoryStore) Len() int { return len(s.records) }

func reportSkipped(o options, source string, skipped int) {
	if skipped == 0 {
		return
	}
	metrics.RecordRecordsSkipped(o.name, skipped)
	o.log.Warn(context.Background(), "skipped records without subject or year",
		logger.String("store", o.name),
		logger.String("source", source),
		logger.Int("skipped", skipped))
}
