package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/mmap"
)

// Skipped describes a record file that was not ingested.
type Skipped struct {
	Path string
	Err  error
}

// Set is the result of loading a record directory.
type Set struct {
	Records []RunRecord
	Skipped []Skipped
}

// Table normalizes the loaded records.
func (s *Set) Table() Table {
	return Normalize(s.Records)
}

type loadOptions struct {
	logger logrus.FieldLogger
	suffix string
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithLogger sets the logger that receives skip diagnostics.
func WithLogger(l logrus.FieldLogger) LoadOption {
	return func(o *loadOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSuffix changes the file suffix that marks a record file (default ".json").
func WithSuffix(suffix string) LoadOption {
	return func(o *loadOptions) {
		o.suffix = suffix
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Load reads every record file in dir in lexical order. Files that cannot be
// read or decoded are logged and skipped; they never abort the batch. A
// missing directory yields an empty set.
func Load(dir string, opts ...LoadOption) (*Set, error) {
	o := loadOptions{logger: discardLogger(), suffix: ".json"}
	for _, opt := range opts {
		opt(&o)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Set{}, nil
		}
		return nil, fmt.Errorf("read record dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), o.suffix) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	set := &Set{}
	seen := make(map[string]string)
	for _, path := range paths {
		rec, err := LoadFile(path)
		if err != nil {
			o.logger.WithFields(logrus.Fields{"file": path, "error": err}).Warn("skipping run record")
			set.Skipped = append(set.Skipped, Skipped{Path: path, Err: err})
			continue
		}
		name := CanonicalName(rec.Language)
		if prev, dup := seen[name]; dup {
			o.logger.WithFields(logrus.Fields{
				"file":     path,
				"replaces": prev,
				"language": name,
			}).Warn("duplicate implementation, later record wins")
		}
		seen[name] = path
		set.Records = append(set.Records, rec)
	}

	o.logger.WithFields(logrus.Fields{
		"dir":     dir,
		"loaded":  len(set.Records),
		"skipped": len(set.Skipped),
	}).Debug("run records loaded")
	return set, nil
}

// LoadFile memory-maps a record file and decodes it.
func LoadFile(path string) (RunRecord, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return RunRecord{}, fmt.Errorf("mmap file: %w", err)
	}
	defer r.Close()

	data := make([]byte, r.Len())
	if _, err := r.ReadAt(data, 0); err != nil {
		return RunRecord{}, fmt.Errorf("read mmap: %w", err)
	}
	return Decode(data)
}

// Decode parses and validates one record.
func Decode(data []byte) (RunRecord, error) {
	var rec RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return RunRecord{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := rec.Validate(); err != nil {
		return RunRecord{}, err
	}
	return rec, nil
}
