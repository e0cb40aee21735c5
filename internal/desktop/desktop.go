// Package desktop loads application descriptors (.desktop files) and
// extracts the fields that matter for default application handling.
package desktop

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"mimesync/internal/keyfile"
	"mimesync/internal/models"
	"mimesync/internal/scanner"
)

const (
	// EntrySection is the main group of a descriptor
	EntrySection = "Desktop Entry"
	mimeTypeKey  = "MimeType"
	hiddenKey    = "Hidden"
)

// ErrInvalidBool is returned when Hidden holds something other than a
// recognised boolean
var ErrInvalidBool = errors.New("invalid boolean value")

// ParseError reports a descriptor that could not be read or parsed
type ParseError struct {
	ID    string // Descriptor identifier
	Path  string // File path, empty for in-memory sources
	cause error
}

func (e *ParseError) Error() string {
	where := e.ID
	if e.Path != "" {
		where = e.Path
	}
	return fmt.Sprintf("failed to parse descriptor %s: %v", where, e.cause)
}

func (e *ParseError) Unwrap() error {
	return e.cause
}

// Parse reads one descriptor from r. The reader is consumed fully.
func Parse(id string, r io.Reader) (*models.Descriptor, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{ID: id, cause: err}
	}

	f, err := keyfile.Parse(relevantLines(data))
	if err != nil {
		return nil, &ParseError{ID: id, cause: err}
	}

	d := &models.Descriptor{ID: id, MimeTypes: []string{}}
	if !f.HasSection(EntrySection) {
		return d, nil
	}
	sec := f.Section(EntrySection)

	if sec.HasKey(mimeTypeKey) {
		d.MimeTypes = keyfile.SplitList(sec.Key(mimeTypeKey).Value(), false)
	}

	if sec.HasKey(hiddenKey) {
		hidden, err := parseBool(sec.Key(hiddenKey).Value())
		if err != nil {
			return nil, &ParseError{
				ID:    id,
				cause: fmt.Errorf("%s=%q: %w", hiddenKey, sec.Key(hiddenKey).Value(), ErrInvalidBool),
			}
		}
		d.Hidden = hidden
	}

	return d, nil
}

// parseBool accepts 1/t/y/yes/true/on and 0/f/n/no/false/off in any
// letter case
func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "y", "yes", "true", "on":
		return true, nil
	case "0", "f", "n", "no", "false", "off":
		return false, nil
	}
	return false, ErrInvalidBool
}

// relevantLines keeps group headers and the MimeType and Hidden entries.
// Other values are free text that the key file parser may reject, such as
// an unbalanced leading quote in Comment or Exec.
func relevantLines(data []byte) []byte {
	var out bytes.Buffer
	for _, line := range bytes.Split(data, []byte("\n")) {
		trimmed := bytes.TrimSpace(line)
		if bytes.HasPrefix(trimmed, []byte("[")) {
			out.Write(trimmed)
			out.WriteByte('\n')
			continue
		}
		i := bytes.IndexByte(trimmed, '=')
		if i < 0 {
			continue
		}
		switch string(bytes.TrimSpace(trimmed[:i])) {
		case mimeTypeKey, hiddenKey:
			out.Write(trimmed)
			out.WriteByte('\n')
		}
	}
	return out.Bytes()
}

// Load reads the descriptor provided by src
func Load(src scanner.Source) (*models.Descriptor, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, &ParseError{ID: src.ID(), Path: src.Path(), cause: err}
	}
	defer rc.Close()

	d, err := Parse(src.ID(), rc)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = src.Path()
		}
		return nil, err
	}
	d.Path = src.Path()
	return d, nil
}

// LoadOptions controls LoadAll
type LoadOptions struct {
	SkipInvalid bool         // Log and skip bad descriptors instead of failing
	Logger      *slog.Logger // Defaults to slog.Default()
}

// LoadAll loads every source into a DescriptorSet. Without SkipInvalid the
// first ParseError aborts loading.
func LoadAll(sources []scanner.Source, opts LoadOptions) (models.DescriptorSet, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	set := make(models.DescriptorSet, len(sources))
	for _, src := range sources {
		d, err := Load(src)
		if err != nil {
			if !opts.SkipInvalid {
				return nil, err
			}
			logger.Warn("skipping invalid descriptor", "id", src.ID(), "error", err)
			continue
		}
		set.Add(d)
	}

	logger.Debug("loaded descriptors", "count", len(set))
	return set, nil
}
