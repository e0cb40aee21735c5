package models

import "sort"

// Descriptor represents a parsed application descriptor (.desktop file)
type Descriptor struct {
	ID        string   // File name, e.g. "firefox.desktop"
	Path      string   // Full path on system, empty for in-memory sources
	Hidden    bool     // Hidden=true in the Desktop Entry section
	MimeTypes []string // MimeType list in declared order
}

// HandlesMime reports whether the descriptor declares the given MIME type
func (d *Descriptor) HandlesMime(mime string) bool {
	for _, m := range d.MimeTypes {
		if m == mime {
			return true
		}
	}
	return false
}

// DescriptorSet maps descriptor IDs to parsed descriptors
type DescriptorSet map[string]*Descriptor

// Add stores a descriptor under its ID, replacing any previous one
func (s DescriptorSet) Add(d *Descriptor) {
	s[d.ID] = d
}

// SortedIDs returns descriptor IDs in ascending lexicographic order
func (s DescriptorSet) SortedIDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Verdict explains why an association is or isn't valid
type Verdict int

const (
	VerdictValid      Verdict = iota
	VerdictMissing            // No descriptor with that ID
	VerdictHidden             // Descriptor is marked Hidden
	VerdictMismatched         // Descriptor doesn't list the MIME type
	VerdictDuplicate          // Listed earlier for the same MIME type
)

// String returns a string description of the verdict
func (v Verdict) String() string {
	switch v {
	case VerdictValid:
		return "valid"
	case VerdictMissing:
		return "missing"
	case VerdictHidden:
		return "hidden"
	case VerdictMismatched:
		return "mismatched"
	case VerdictDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Check classifies the association of mime with the descriptor id
func (s DescriptorSet) Check(mime, id string) Verdict {
	d, ok := s[id]
	if !ok {
		return VerdictMissing
	}
	if d.Hidden {
		return VerdictHidden
	}
	if !d.HandlesMime(mime) {
		return VerdictMismatched
	}
	return VerdictValid
}

// Valid reports whether id exists, is visible and lists mime
func (s DescriptorSet) Valid(mime, id string) bool {
	return s.Check(mime, id) == VerdictValid
}
