// Package mimeapps reads and edits the default application associations
// stored in a mimeapps.list file.
//
// A Registry is owned by a single caller. ApplyFilter and AppendDesktop
// must not run while the caller iterates a snapshot taken from the same
// Registry.
package mimeapps

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"mimesync/internal/keyfile"

	"gopkg.in/ini.v1"
)

// DefaultPath is the system-wide association file
const DefaultPath = "/usr/share/applications/mimeapps.list"

// DefaultSection holds the preferred handler per MIME type
const DefaultSection = "Default Applications"

// Association is one MIME type and its preferred descriptors, most
// preferred first
type Association struct {
	Mime        string
	Descriptors []string
}

// Predicate decides whether descriptor id may stay associated with mime
type Predicate func(mime, id string) bool

// Registry is the in-memory form of a mimeapps.list file
type Registry struct {
	path     string
	file     *ini.File
	section  *ini.Section
	original []byte
}

// Load reads the association file at path. A missing file yields an empty
// registry; the file itself is not touched.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return newRegistry(path, keyfile.Empty()), nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	f, err := keyfile.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	reg := newRegistry(path, f)
	reg.original = data
	return reg, nil
}

// Parse builds a registry from r
func Parse(r io.Reader) (*Registry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f, err := keyfile.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse associations: %w", err)
	}
	return newRegistry("", f), nil
}

func newRegistry(path string, f *ini.File) *Registry {
	sec, err := f.GetSection(DefaultSection)
	if err != nil {
		// Only created in memory; written out with the rest of the file
		sec, _ = f.NewSection(DefaultSection)
	}
	return &Registry{path: path, file: f, section: sec}
}

// Original returns the file content as it was loaded, nil for a new file
func (r *Registry) Original() []byte {
	return r.original
}

// Digest returns the hex SHA256 of data
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ShortDigest returns the first 8 characters of a digest for display
func ShortDigest(digest string) string {
	if len(digest) > 8 {
		return digest[:8]
	}
	return digest
}

// Path returns the file the registry was loaded from
func (r *Registry) Path() string {
	return r.path
}

// Get returns the descriptors associated with mime
func (r *Registry) Get(mime string) []string {
	if !r.section.HasKey(mime) {
		return nil
	}
	return keyfile.SplitList(r.section.Key(mime).Value(), false)
}

// Associations returns a snapshot of the section in file order
func (r *Registry) Associations() []Association {
	keys := r.section.Keys()
	result := make([]Association, 0, len(keys))
	for _, k := range keys {
		result = append(result, Association{
			Mime:        k.Name(),
			Descriptors: keyfile.SplitList(k.Value(), false),
		})
	}
	return result
}

// AppendDesktop adds id to the end of mime's list unless already present.
// Existing entries keep their order.
func (r *Registry) AppendDesktop(mime, id string) {
	if !r.section.HasKey(mime) || r.section.Key(mime).Value() == "" {
		r.section.Key(mime).SetValue(id)
		return
	}

	key := r.section.Key(mime)
	ids := keyfile.SplitList(key.Value(), false)
	for _, existing := range ids {
		if existing == id {
			return
		}
	}
	key.SetValue(keyfile.JoinList(append(ids, id)))
}

// ApplyFilter keeps only the descriptors accepted by keep. The predicate is
// called once per original token. A MIME type left without descriptors is
// removed from the section.
func (r *Registry) ApplyFilter(keep Predicate) {
	// Copy the names first; DeleteKey mutates the key list
	names := r.section.KeyStrings()

	for _, mime := range names {
		key := r.section.Key(mime)

		var kept []string
		for _, token := range keyfile.SplitList(key.Value(), true) {
			if keep(mime, token) {
				kept = append(kept, token)
			}
		}

		if len(kept) > 0 {
			key.SetValue(keyfile.JoinList(kept))
		} else {
			r.section.DeleteKey(mime)
		}
	}
}

// WriteTo serializes the whole file to w. With pretty set the '=' delimiter
// is padded with spaces.
func (r *Registry) WriteTo(w io.Writer, pretty bool) error {
	return keyfile.Write(r.file, w, pretty)
}

// Bytes returns the serialized file
func (r *Registry) Bytes(pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.WriteTo(&buf, pretty); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the file to path through a temporary file and a rename, so
// readers see either the old or the new content. The existing file mode is
// kept. Concurrent writers are not coordinated; the last rename wins.
func (r *Registry) Save(path string, pretty bool) error {
	data, err := r.Bytes(pretty)
	if err != nil {
		return err
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
