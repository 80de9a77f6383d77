// Package utility loads utility configuration documents and job context
// documents from disk. Configurations are YAML (snake_case keys) or JSON
// (camelCase keys) and are structurally validated before use; the engine
// assumes a valid configuration.
package utility

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/alexander-akhmetov/asbuilt/internal/debug"
	"github.com/alexander-akhmetov/asbuilt/internal/domain"
)

// ErrNotFound is returned when no configuration file exists for a utility code.
var ErrNotFound = errors.New("utility configuration not found")

// Format is a document encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// extensions are tried in this order when resolving a utility code.
var extensions = []string{".yaml", ".yml", ".json"}

// FormatFor returns the document format implied by a file name.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() { validate = newValidator() })
	return validate
}

// Parse decodes and validates a utility configuration.
func Parse(data []byte, format Format) (*domain.UtilityConfiguration, error) {
	var cfg domain.UtilityConfiguration
	if err := decode(data, format, &cfg); err != nil {
		return nil, fmt.Errorf("parse utility configuration: %w", err)
	}
	if err := structValidator().Struct(&cfg); err != nil {
		return nil, toValidationError(err)
	}
	return &cfg, nil
}

// Path returns the configuration file for code in dir, or ErrNotFound.
func Path(dir, code string) (string, error) {
	if code == "" || strings.ContainsAny(code, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrNotFound, code)
	}
	for _, ext := range extensions {
		p := filepath.Join(dir, code+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q in %s", ErrNotFound, code, dir)
}

// Load reads and validates the configuration for code from dir.
func Load(dir, code string) (*domain.UtilityConfiguration, error) {
	path, err := Path(dir, code)
	if err != nil {
		return nil, err
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if cfg.UtilityCode != code {
		debug.Logf("utility file %s declares code %q", path, cfg.UtilityCode)
	}
	return cfg, nil
}

// LoadFile reads and validates a configuration file.
func LoadFile(path string) (*domain.UtilityConfiguration, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied configuration
	if err != nil {
		return nil, fmt.Errorf("read utility configuration: %w", err)
	}
	cfg, err := Parse(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Entry describes one configuration file found by List.
type Entry struct {
	Code      string
	Name      string
	WorkTypes int
	Path      string
	Err       error // set when the file failed to load
}

// List returns every configuration in dir sorted by code. Files that fail to
// load are still listed with Err set. A missing directory yields no entries.
func List(dir string) ([]Entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read utilities dir: %w", err)
	}

	seen := map[string]bool{}
	var entries []Entry
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(f.Name()))
		if !isConfigExt(ext) {
			continue
		}
		code := strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))
		if seen[code] {
			continue
		}
		seen[code] = true

		path, err := Path(dir, code)
		if err != nil {
			continue
		}
		e := Entry{Code: code, Path: path}
		if cfg, err := LoadFile(path); err != nil {
			e.Err = err
		} else {
			e.Name = cfg.Name
			e.WorkTypes = len(cfg.WorkTypes)
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Code < entries[j].Code })
	return entries, nil
}

// LoadContext reads a job/user context document.
func LoadContext(path string) (*domain.Context, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-supplied context
	if err != nil {
		return nil, fmt.Errorf("read context: %w", err)
	}
	ctx, err := ParseContext(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return ctx, nil
}

// ParseContext decodes a context document. No structural validation is
// applied; every field is optional.
func ParseContext(data []byte, format Format) (*domain.Context, error) {
	var ctx domain.Context
	if err := decode(data, format, &ctx); err != nil {
		return nil, fmt.Errorf("parse context: %w", err)
	}
	return &ctx, nil
}

func decode(data []byte, format Format, v any) error {
	if format == FormatJSON {
		return json.Unmarshal(data, v)
	}
	return yaml.Unmarshal(data, v)
}

func isConfigExt(ext string) bool {
	for _, e := range extensions {
		if e == ext {
			return true
		}
	}
	return false
}
