package reconcile

import (
	"bytes"
	"strings"
	"testing"

	"mimesync/internal/desktop"
	"mimesync/internal/mimeapps"
	"mimesync/internal/models"
	"mimesync/internal/scanner"
)

func loadSet(t *testing.T, files map[string]string) models.DescriptorSet {
	t.Helper()
	set, err := desktop.LoadAll(scanner.MemSources(files), desktop.LoadOptions{})
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	return set
}

func parseRegistry(t *testing.T, content string) *mimeapps.Registry {
	t.Helper()
	r, err := mimeapps.Parse(strings.NewReader(content))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return r
}

func reconciled(t *testing.T, files map[string]string, registry string) (string, *Report) {
	t.Helper()
	reg := parseRegistry(t, registry)
	report := Run(loadSet(t, files), reg)
	out, err := reg.Bytes(false)
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	return string(out), report
}

func TestRun_AddsNewAssociation(t *testing.T) {
	out, report := reconciled(t, map[string]string{
		"a.desktop": "[Desktop Entry]\nMimeType=text/plain;\n",
	}, "")

	if !strings.Contains(out, "[Default Applications]\ntext/plain=a.desktop\n") {
		t.Errorf("expected text/plain=a.desktop, got %q", out)
	}
	if len(report.Added) != 1 || report.Added[0].ID != "a.desktop" {
		t.Errorf("unexpected Added: %+v", report.Added)
	}
}

func TestRun_RemovesMissingKeepsOrder(t *testing.T) {
	out, report := reconciled(t, map[string]string{
		"a.desktop": "[Desktop Entry]\nMimeType=text/plain;\n",
	}, "[Default Applications]\ntext/plain=missing.desktop;a.desktop\n")

	if !strings.Contains(out, "text/plain=a.desktop\n") {
		t.Errorf("expected text/plain=a.desktop, got %q", out)
	}
	if len(report.Removed) != 1 {
		t.Fatalf("expected 1 removal, got %+v", report.Removed)
	}
	if report.Removed[0].ID != "missing.desktop" || report.Removed[0].Reason != models.VerdictMissing {
		t.Errorf("unexpected removal %+v", report.Removed[0])
	}
	if len(report.Added) != 0 {
		t.Errorf("a.desktop was already present, got Added %+v", report.Added)
	}
}

func TestRun_HiddenSoleEntryRemovesKey(t *testing.T) {
	out, report := reconciled(t, map[string]string{
		"a.desktop": "[Desktop Entry]\nMimeType=text/plain;\nHidden=true\n",
	}, "[Default Applications]\ntext/plain=a.desktop\n")

	if strings.Contains(out, "text/plain") {
		t.Errorf("text/plain should be removed entirely, got %q", out)
	}
	if len(report.Removed) != 1 || report.Removed[0].Reason != models.VerdictHidden {
		t.Errorf("unexpected Removed: %+v", report.Removed)
	}
}

func TestRun_NewEntriesSortedByID(t *testing.T) {
	out, _ := reconciled(t, map[string]string{
		"b.desktop": "[Desktop Entry]\nMimeType=image/png;\n",
		"a.desktop": "[Desktop Entry]\nMimeType=image/png;\n",
	}, "")

	if !strings.Contains(out, "image/png=a.desktop;b.desktop\n") {
		t.Errorf("expected image/png=a.desktop;b.desktop, got %q", out)
	}
}

func TestRun_MismatchedRemoved(t *testing.T) {
	out, report := reconciled(t, map[string]string{
		"a.desktop": "[Desktop Entry]\nMimeType=text/plain;\n",
	}, "[Default Applications]\nimage/png=a.desktop\n")

	if strings.Contains(out, "image/png") {
		t.Errorf("image/png should be removed, got %q", out)
	}
	if len(report.Removed) != 1 || report.Removed[0].Reason != models.VerdictMismatched {
		t.Errorf("unexpected Removed: %+v", report.Removed)
	}
}

func TestRun_DuplicatesCollapsed(t *testing.T) {
	out, report := reconciled(t, map[string]string{
		"a.desktop": "[Desktop Entry]\nMimeType=text/plain;\n",
		"b.desktop": "[Desktop Entry]\nMimeType=text/plain;\n",
	}, "[Default Applications]\ntext/plain=b.desktop;a.desktop;b.desktop\n")

	if !strings.Contains(out, "text/plain=b.desktop;a.desktop\n") {
		t.Errorf("expected duplicates removed in place, got %q", out)
	}
	if len(report.Removed) != 1 || report.Removed[0].Reason != models.VerdictDuplicate {
		t.Errorf("unexpected Removed: %+v", report.Removed)
	}
}

func TestRun_PreservesExistingOrderAndAppends(t *testing.T) {
	out, report := reconciled(t, map[string]string{
		"a.desktop": "[Desktop Entry]\nMimeType=text/plain;text/html;\n",
		"c.desktop": "[Desktop Entry]\nMimeType=text/plain;\n",
		"z.desktop": "[Desktop Entry]\nMimeType=text/plain;\n",
	}, "[Default Applications]\ntext/plain=z.desktop;stale.desktop;a.desktop\n")

	if !strings.Contains(out, "text/plain=z.desktop;a.desktop;c.desktop\n") {
		t.Errorf("existing valid entries must keep their order, got %q", out)
	}
	if !strings.Contains(out, "text/html=a.desktop\n") {
		t.Errorf("expected text/html=a.desktop, got %q", out)
	}

	var added []string
	for _, c := range report.Added {
		added = append(added, c.Mime+"="+c.ID)
	}
	want := "text/html=a.desktop,text/plain=c.desktop"
	if strings.Join(added, ",") != want {
		t.Errorf("Added = %s, want %s", strings.Join(added, ","), want)
	}
}

func TestRun_MimeOrderWithinDescriptor(t *testing.T) {
	reg := parseRegistry(t, "")
	Run(loadSet(t, map[string]string{
		"a.desktop": "[Desktop Entry]\nMimeType=text/x-b;text/x-a;\n",
	}), reg)

	assocs := reg.Associations()
	if len(assocs) != 2 || assocs[0].Mime != "text/x-b" || assocs[1].Mime != "text/x-a" {
		t.Errorf("keys should follow the descriptor's MIME order, got %+v", assocs)
	}
}

func TestRun_Idempotent(t *testing.T) {
	files := map[string]string{
		"a.desktop": "[Desktop Entry]\nMimeType=text/plain;image/png;\n",
		"b.desktop": "[Desktop Entry]\nMimeType=image/png;\n",
		"h.desktop": "[Desktop Entry]\nMimeType=image/png;\nHidden=true\n",
	}
	first, _ := reconciled(t, files, "[Default Applications]\nimage/png=h.desktop;b.desktop;gone.desktop\n")
	second, report := reconciled(t, files, first)

	if first != second {
		t.Errorf("second run changed output:\n%s\nvs\n%s", first, second)
	}
	if report.Changed() {
		t.Errorf("second run should report no changes, got %+v", report)
	}
}

func TestRun_Invariants(t *testing.T) {
	files := map[string]string{
		"a.desktop": "[Desktop Entry]\nMimeType=text/plain;image/png;image/png;\n",
		"b.desktop": "[Desktop Entry]\nMimeType=image/png;video/mp4;\n",
		"c.desktop": "[Desktop Entry]\nMimeType=video/mp4;\nHidden=1\n",
		"d.desktop": "[Desktop Entry]\nName=No MIME\n",
	}
	set := loadSet(t, files)
	reg := parseRegistry(t, `[Default Applications]
text/plain=d.desktop;a.desktop;x.desktop
video/mp4=c.desktop;b.desktop
audio/ogg=c.desktop
`)
	Run(set, reg)

	// Every listed descriptor exists, is visible and handles the MIME type
	for _, assoc := range reg.Associations() {
		seen := map[string]bool{}
		for _, id := range assoc.Descriptors {
			if !set.Valid(assoc.Mime, id) {
				t.Errorf("%s lists invalid descriptor %s", assoc.Mime, id)
			}
			if seen[id] {
				t.Errorf("%s lists %s twice", assoc.Mime, id)
			}
			seen[id] = true
		}
	}

	// Every visible descriptor is listed for each MIME type it handles
	for id, d := range set {
		if d.Hidden {
			continue
		}
		for _, mime := range d.MimeTypes {
			found := false
			for _, listed := range reg.Get(mime) {
				if listed == id {
					found = true
				}
			}
			if !found {
				t.Errorf("%s missing from %s", id, mime)
			}
		}
	}
}

func TestReport_Changed(t *testing.T) {
	r := &Report{}
	if r.Changed() {
		t.Error("empty report should not be changed")
	}
	r.Added = append(r.Added, Change{Mime: "text/plain", ID: "a.desktop"})
	if !r.Changed() {
		t.Error("report with additions should be changed")
	}
}

func TestRun_OutputStableAcrossInputOrder(t *testing.T) {
	files := map[string]string{
		"b.desktop": "[Desktop Entry]\nMimeType=image/png;\n",
		"a.desktop": "[Desktop Entry]\nMimeType=image/png;\n",
	}

	var outputs [][]byte
	for i := 0; i < 3; i++ {
		set := models.DescriptorSet{}
		for _, src := range scanner.MemSources(files) {
			d, err := desktop.Load(src)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			set.Add(d)
		}
		reg := parseRegistry(t, "")
		Run(set, reg)
		out, _ := reg.Bytes(true)
		outputs = append(outputs, out)
	}

	for i := 1; i < len(outputs); i++ {
		if !bytes.Equal(outputs[0], outputs[i]) {
			t.Errorf("run %d differs from run 0", i)
		}
	}
}
