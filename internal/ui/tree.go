package ui

import (
	"github.com/disiqueira/gotree/v3"

	"mimesync/internal/mimeapps"
)

// RenderTree renders associations as a tree rooted at label, one branch per
// MIME type with its descriptors in preference order
func RenderTree(label string, assocs []mimeapps.Association) string {
	tree := gotree.New(label)
	for _, a := range assocs {
		branch := tree.Add(a.Mime)
		for _, id := range a.Descriptors {
			branch.Add(id)
		}
	}
	return tree.Print()
}
