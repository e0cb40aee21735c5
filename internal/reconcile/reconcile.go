// Package reconcile brings a mimeapps.list registry in line with the
// installed application descriptors: stale associations are pruned, then
// missing ones are appended in a stable order.
package reconcile

import (
	"mimesync/internal/mimeapps"
	"mimesync/internal/models"
)

// Change is a single association added or removed by Run
type Change struct {
	Mime   string
	ID     string
	Reason models.Verdict // Why a removed association was invalid
}

// Report lists what Run changed, in the order it happened
type Report struct {
	Removed []Change
	Added   []Change
}

// Changed reports whether Run modified any association
func (r *Report) Changed() bool {
	return len(r.Removed) > 0 || len(r.Added) > 0
}

// Run prunes associations that reference a missing, hidden or mismatched
// descriptor, along with repeated entries, then appends every visible
// descriptor's MIME types. Descriptors are visited in ID order. Entries that
// were already valid keep their relative order.
func Run(set models.DescriptorSet, reg *mimeapps.Registry) *Report {
	report := &Report{}

	seen := make(map[[2]string]bool)
	reg.ApplyFilter(func(mime, id string) bool {
		verdict := set.Check(mime, id)
		if verdict == models.VerdictValid {
			if !seen[[2]string{mime, id}] {
				seen[[2]string{mime, id}] = true
				return true
			}
			verdict = models.VerdictDuplicate
		}
		// Empty tokens come from stray separators, not real entries
		if id != "" {
			report.Removed = append(report.Removed, Change{Mime: mime, ID: id, Reason: verdict})
		}
		return false
	})

	for _, id := range set.SortedIDs() {
		d := set[id]
		if d.Hidden {
			continue
		}
		for _, mime := range d.MimeTypes {
			before := len(reg.Get(mime))
			reg.AppendDesktop(mime, id)
			if len(reg.Get(mime)) > before {
				report.Added = append(report.Added, Change{Mime: mime, ID: id, Reason: models.VerdictValid})
			}
		}
	}

	return report
}
