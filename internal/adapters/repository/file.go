package repository

import (
	"context"
	"encoding/binary"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/okian/gatecompass/internal/domain/dedupe"
	"github.com/okian/gatecompass/internal/domain/model"
	"github.com/okian/gatecompass/pkg/logger"
)

type decodeFunc func([]byte) (Document, error)

var decoders = map[string]decodeFunc{
	".yaml": DecodeYAML,
	".yml":  DecodeYAML,
	".json": DecodeJSON,
	".xlsx": DecodeXLSX,
}

// FileStore reads corpus files from a file or directory tree on every load.
type FileStore struct {
	root string
	opts options
}

// NewFileStore returns a store rooted at path.
func NewFileStore(path string, opts ...Option) *FileStore {
	return &FileStore{root: path, opts: buildOptions("file", opts)}
}

func (s *FileStore) Name() string { return s.opts.name }

// Load decodes every supported file under the root. Files that cannot be
// read or decoded are skipped with a warning.
func (s *FileStore) Load(ctx context.Context, window model.YearRange) ([]model.Record, error) {
	paths, err := s.files()
	if err != nil {
		return nil, err
	}

	var raws []model.Raw
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		doc, err := ReadFile(p)
		if err != nil {
			s.opts.log.Warn(ctx, "skipping unreadable corpus file",
				logger.String("path", p), logger.Error(err))
			continue
		}
		raws = append(raws, doc.Raws()...)
	}

	records, skipped := normalizeAll(raws)
	reportSkipped(s.opts, s.root, skipped)

	records, dropped := dedupe.Records(ctx, dedupe.NewInMemoryDeduper(), records)
	if dropped > 0 {
		s.opts.log.Debug(ctx, "dropped duplicate records", logger.Int("dropped", dropped))
	}
	return model.Filter(records, window), nil
}

// Version hashes the name, size and modification time of every corpus file.
func (s *FileStore) Version(context.Context) (string, error) {
	paths, err := s.files()
	if err != nil {
		return "", err
	}
	d := xxhash.New()
	var buf [8]byte
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		_, _ = d.WriteString(p)
		binary.LittleEndian.PutUint64(buf[:], uint64(info.Size()))
		_, _ = d.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], uint64(info.ModTime().UnixNano()))
		_, _ = d.Write(buf[:])
	}
	return "files-" + strconv.FormatUint(d.Sum64(), 16), nil
}

// Ping checks that the root is still reachable.
func (s *FileStore) Ping(context.Context) error {
	if _, err := os.Stat(s.root); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

// files lists supported files under the root in lexical order.
func (s *FileStore) files() ([]string, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if !info.IsDir() {
		return []string{s.root}, nil
	}

	var paths []string
	err = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if _, ok := decoders[strings.ToLower(filepath.Ext(path))]; ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return paths, nil
}

// ReadFile decodes one corpus file, choosing the decoder by extension.
func ReadFile(path string) (Document, error) {
	decode, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return Document{}, fmt.Errorf("%w: unsupported file type %q", ErrDecode, filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	return decode(data)
}
