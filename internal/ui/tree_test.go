package ui

import (
	"strings"
	"testing"

	"mimesync/internal/mimeapps"
)

func TestRenderTree(t *testing.T) {
	assocs := []mimeapps.Association{
		{Mime: "image/png", Descriptors: []string{"eog.desktop", "gimp.desktop"}},
		{Mime: "text/plain", Descriptors: []string{"gedit.desktop"}},
	}

	got := RenderTree("mimeapps.list", assocs)

	if !strings.HasPrefix(got, "mimeapps.list") {
		t.Errorf("tree should start with root label, got %q", got)
	}
	for _, want := range []string{"image/png", "eog.desktop", "gimp.desktop", "text/plain", "gedit.desktop"} {
		if !strings.Contains(got, want) {
			t.Errorf("tree should contain %q, got %q", want, got)
		}
	}
	if strings.Index(got, "eog.desktop") > strings.Index(got, "gimp.desktop") {
		t.Error("descriptors should keep preference order")
	}
	if strings.Index(got, "image/png") > strings.Index(got, "text/plain") {
		t.Error("MIME types should keep file order")
	}
}

func TestRenderTree_Empty(t *testing.T) {
	got := RenderTree("mimeapps.list", nil)
	if strings.TrimSpace(got) != "mimeapps.list" {
		t.Errorf("empty tree = %q, want root only", got)
	}
}
