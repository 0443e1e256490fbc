package corpustool

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/okian/gatecompass/internal/adapters/repository"
	"github.com/okian/gatecompass/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// Output formats for generated corpora.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const (
	minTopicWeight = 0.05
	hardShiftOdds  = 6 // one question in six moves a difficulty level
)

// GenerateConfig controls synthetic corpus generation.
type GenerateConfig struct {
	Seed             uint64
	From             int
	To               int
	QuestionsPerYear int
}

// CatalogTopic is a subject/topic pair questions can be drawn from.
type CatalogTopic struct {
	Subject    string
	Topic      string
	Difficulty model.Difficulty
}

// SeedCatalog lists the topics of the embedded corpus, sorted by subject
// and topic. The most common difficulty of each topic is kept.
func SeedCatalog(ctx context.Context) ([]CatalogTopic, error) {
	store, err := repository.Seed()
	if err != nil {
		return nil, err
	}
	records, err := store.Load(ctx, model.YearRange{Start: 1, End: 9999})
	if err != nil {
		return nil, err
	}

	type key struct{ subject, topic string }
	counts := map[key]map[model.Difficulty]int{}
	for _, r := range records {
		k := key{r.Subject, r.Topic}
		if counts[k] == nil {
			counts[k] = map[model.Difficulty]int{}
		}
		counts[k][r.Difficulty]++
	}

	out := make([]CatalogTopic, 0, len(counts))
	for k, byLevel := range counts {
		best, bestN := model.DifficultyMedium, -1
		for _, d := range model.Difficulties {
			if byLevel[d] > bestN {
				best, bestN = d, byLevel[d]
			}
		}
		out = append(out, CatalogTopic{Subject: k.subject, Topic: k.topic, Difficulty: best})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Subject != out[j].Subject {
			return out[i].Subject < out[j].Subject
		}
		return out[i].Topic < out[j].Topic
	})
	return out, nil
}

// Generate draws QuestionsPerYear questions for every year in [From, To].
// Each topic gets a base weight and a yearly drift so the corpus has rising
// and falling topics. The same seed and catalog always give the same corpus.
func Generate(ctx context.Context, cfg GenerateConfig, catalog []CatalogTopic) (repository.Document, error) {
	window, err := model.NewYearRange(cfg.From, cfg.To)
	if err != nil {
		return repository.Document{}, fmt.Errorf("%w: years: %w", ErrBadFlag, err)
	}
	if cfg.QuestionsPerYear <= 0 {
		return repository.Document{}, fmt.Errorf("%w: questions per year must be positive", ErrBadFlag)
	}
	if len(catalog) == 0 {
		return repository.Document{}, fmt.Errorf("%w: empty topic catalog", ErrBadFlag)
	}

	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[:], cfg.Seed)
	src := rand.NewChaCha8(seed)
	rng := rand.New(src)

	base := make([]float64, len(catalog))
	drift := make([]float64, len(catalog))
	for i := range catalog {
		base[i] = 0.5 + rng.Float64()*2
		drift[i] = (rng.Float64() - 0.5) * 0.3
	}

	doc := repository.Document{
		Version: fmt.Sprintf("synthetic-%d", cfg.Seed),
		Records: make([]map[string]any, 0, window.Len()*cfg.QuestionsPerYear),
	}
	weights := make([]float64, len(catalog))
	for _, year := range window.Years() {
		if err := ctx.Err(); err != nil {
			return repository.Document{}, err
		}
		step := float64(year - window.Start)
		total := 0.0
		for i := range catalog {
			weights[i] = max(minTopicWeight, base[i]*(1+drift[i]*step))
			total += weights[i]
		}
		for q := 0; q < cfg.QuestionsPerYear; q++ {
			t := catalog[pick(rng, weights, total)]
			id, err := uuid.NewRandomFromReader(src)
			if err != nil {
				return repository.Document{}, fmt.Errorf("record id: %w", err)
			}
			doc.Records = append(doc.Records, map[string]any{
				"id":         id.String(),
				"subject":    t.Subject,
				"topic":      t.Topic,
				"year":       year,
				"marks":      rng.IntN(2) + 1,
				"difficulty": strings.ToLower(shift(rng, t.Difficulty).String()),
			})
		}
	}
	return doc, nil
}

func pick(rng *rand.Rand, weights []float64, total float64) int {
	x := rng.Float64() * total
	for i, w := range weights {
		if x < w {
			return i
		}
		x -= w
	}
	return len(weights) - 1
}

func shift(rng *rand.Rand, d model.Difficulty) model.Difficulty {
	if rng.IntN(hardShiftOdds) != 0 {
		return d
	}
	if rng.IntN(2) == 0 && d > model.DifficultyEasy {
		return d - 1
	}
	if d < model.DifficultyHard {
		return d + 1
	}
	return d
}

// WriteDocument encodes doc to w as JSON or YAML.
func WriteDocument(w io.Writer, doc repository.Document, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: unknown format %q", ErrBadFlag, format)
}
