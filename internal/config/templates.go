package config

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
)

//go:embed defaults/templates/*.md
var templatesFS embed.FS

// Templates holds the loaded text/template sources used to render
// human-readable output.
type Templates struct {
	Review string // Markdown review summary shown before submission
}

// templateLoader handles loading templates with fallback chain.
type templateLoader struct {
	embedFS embed.FS
}

// LoadTemplates loads all templates with fallback chain: local → global → embedded.
// localDir can be empty to skip local lookup.
func LoadTemplates(globalDir, localDir string) (*Templates, error) {
	loader := &templateLoader{embedFS: templatesFS}
	return loader.Load(globalDir, localDir)
}

// Load loads all template files with fallback chain: local → global → embedded.
func (t *templateLoader) Load(globalDir, localDir string) (*Templates, error) {
	var templates Templates
	var err error

	templates.Review, err = t.loadWithLocalFallback(localDir, globalDir, "review.md")
	if err != nil {
		return nil, fmt.Errorf("load review template: %w", err)
	}

	return &templates, nil
}

func (t *templateLoader) loadWithLocalFallback(localDir, globalDir, filename string) (string, error) {
	if localDir != "" {
		content, err := t.loadFile(filepath.Join(localDir, "templates", filename))
		if err != nil {
			// Non-fatal: fall through to global/embedded
			log.Printf("warning: failed to load local template %s: %v (falling back to global/embedded)", filename, err)
		} else if content != "" {
			return content, nil
		}
	}

	if globalDir != "" {
		content, err := t.loadFile(filepath.Join(globalDir, "templates", filename))
		if err != nil {
			return "", err
		}
		if content != "" {
			return content, nil
		}
	}

	return t.loadFromEmbedFS("defaults/templates/" + filename)
}

// loadFile reads a template file from disk.
// Returns empty string (not error) if file doesn't exist.
func (t *templateLoader) loadFile(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is constructed internally
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read template file %s: %w", path, err)
	}
	return strings.TrimSpace(normalizeNewlines(string(data))), nil
}

// loadFromEmbedFS reads a template file from the embedded filesystem.
func (t *templateLoader) loadFromEmbedFS(path string) (string, error) {
	data, err := t.embedFS.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read embedded template %s: %w", path, err)
	}
	return strings.TrimSpace(normalizeNewlines(string(data))), nil
}

// normalizeNewlines converts CRLF line endings to LF.
func normalizeNewlines(content string) string {
	return strings.ReplaceAll(content, "\r\n", "\n")
}
