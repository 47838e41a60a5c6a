package loader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/filmcorr-cli/internal/frame"
)

// Options controls how tabular files are read.
type Options struct {
	// Delimiter for CSV. If 0, inferred from the file extension.
	Delimiter rune
	// NullMarkers are cell spellings read as missing. Empty means frame.DefaultNullMarkers.
	NullMarkers []string
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
	// Sheet selects an XLSX sheet by name. Empty means the first sheet.
	Sheet string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{NullMarkers: frame.DefaultNullMarkers}
}

func (o Options) markers() map[string]struct{} {
	if len(o.NullMarkers) == 0 {
		return frame.MarkerSet(frame.DefaultNullMarkers)
	}
	return frame.MarkerSet(o.NullMarkers)
}

// Loader reads one family of tabular files.
type Loader interface {
	CanLoad(path string) bool
	Load(path string, opt Options) (*Result, error)
}

// Result is a loaded table plus what was read.
type Result struct {
	Table *frame.Table
	// Rows is the number of data rows in the file; it exceeds Table.Len() when MaxRows truncated the read.
	Rows int
}

// Truncated reports whether MaxRows cut the read short.
func (r *Result) Truncated() bool { return r.Rows > r.Table.Len() }

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// ErrUnsupported indicates no registered loader accepts the file.
var ErrUnsupported = errors.New("unsupported file format")

// Load selects a loader based on the file name.
func Load(path string, opt Options) (*Result, error) {
	for _, l := range registry {
		if l.CanLoad(path) {
			return l.Load(path, opt)
		}
	}
	return nil, fmt.Errorf("load %s: %w (use .csv, .tsv or .xlsx)", path, ErrUnsupported)
}

func hasSuffix(path string, exts ...string) bool {
	name := strings.ToLower(path)
	for _, e := range exts {
		if strings.HasSuffix(name, e) {
			return true
		}
	}
	return false
}

// normalizeHeader trims names and fills blanks so every column is addressable.
func normalizeHeader(raw []string) []string {
	out := make([]string, len(raw))
	seen := map[string]int{}
	for i, h := range raw {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n := seen[name]; n > 0 {
			seen[name]++
			name = fmt.Sprintf("%s.%d", name, n)
		} else {
			seen[name] = 1
		}
		out[i] = name
	}
	return out
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}
