// Package writer serialises a site configuration for the static-site
// framework's config loader.
package writer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	kberrors "git.home.luguber.info/inful/kbsite/internal/errors"
	"git.home.luguber.info/inful/kbsite/internal/site"
)

// Format names an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Stdout is the output path that selects standard output.
const Stdout = "-"

// ParseFormat accepts a format name case-insensitively. "yml" is an alias
// for yaml and the empty string selects json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", kberrors.ValidationFailed("format", fmt.Sprintf("unsupported output format %q (want json, yaml or toml)", s))
}

// FormatFromPath infers the format from a file extension, falling back to json.
func FormatFromPath(path string) Format {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return FormatJSON
	}
	return f
}

// Marshal encodes v, a site.Config or any part of one, in format f.
func Marshal(v any, f Format) ([]byte, error) {
	var buf bytes.Buffer
	switch f {
	case FormatJSON, "":
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("marshal json: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("marshal yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("marshal yaml: %w", err)
		}
	case FormatTOML:
		enc := toml.NewEncoder(&buf)
		enc.Indent = ""
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("marshal toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported output format %q", f)
	}
	return buf.Bytes(), nil
}

// Write encodes cfg and stores it at path. Files are replaced atomically via
// a temporary sibling; parent directories are created as needed. Path "-"
// writes to stdout.
func Write(path string, cfg site.Config, f Format) error {
	return WriteTo(path, os.Stdout, cfg, f)
}

// WriteTo is Write with an explicit stream for the "-" path.
func WriteTo(path string, stdout io.Writer, cfg site.Config, f Format) error {
	data, err := Marshal(cfg, f)
	if err != nil {
		return kberrors.InternalError("encode site configuration", err)
	}
	if path == "" || path == Stdout {
		if _, err := stdout.Write(data); err != nil {
			return kberrors.OutputFailed(Stdout, err)
		}
		return nil
	}
	if err := writeAtomic(path, data); err != nil {
		return kberrors.OutputFailed(path, err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}
