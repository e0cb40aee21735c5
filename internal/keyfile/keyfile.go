// Package keyfile holds the ini.v1 settings shared by .desktop descriptors
// and mimeapps.list, plus helpers for their semicolon-separated lists.
package keyfile

import (
	"io"
	"strings"
	"sync"

	"gopkg.in/ini.v1"
)

// ListSeparator separates items inside list values like MimeType
const ListSeparator = ";"

// Options returns the load options matching the freedesktop key file
// syntax: '=' is the only delimiter, ';' and '#' inside a value are data,
// a trailing backslash is not a continuation and quotes are kept verbatim.
func Options() ini.LoadOptions {
	return ini.LoadOptions{
		KeyValueDelimiters:       "=",
		KeyValueDelimiterOnWrite: "=",
		IgnoreInlineComment:      true,
		IgnoreContinuation:       true,
		PreserveSurroundedQuote:  true,
	}
}

// Parse parses key file content
func Parse(data []byte) (*ini.File, error) {
	return ini.LoadSources(Options(), data)
}

// Empty returns a key file with no sections
func Empty() *ini.File {
	return ini.Empty(Options())
}

// ini.v1 controls delimiter padding through package globals
var writeMu sync.Mutex

// Write serializes f to w. With pretty set, '=' is padded with one space on
// each side; keys are never aligned.
func Write(f *ini.File, w io.Writer, pretty bool) error {
	writeMu.Lock()
	defer writeMu.Unlock()

	prevFormat, prevEqual := ini.PrettyFormat, ini.PrettyEqual
	ini.PrettyFormat = false
	ini.PrettyEqual = pretty
	defer func() {
		ini.PrettyFormat, ini.PrettyEqual = prevFormat, prevEqual
	}()

	_, err := f.WriteTo(w)
	return err
}

// SplitList splits a list value on ';' and trims every item. Empty items
// are kept when keepEmpty is set.
func SplitList(value string, keepEmpty bool) []string {
	parts := strings.Split(value, ListSeparator)
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" && !keepEmpty {
			continue
		}
		items = append(items, p)
	}
	return items
}

// JoinList joins list items with ';' and no trailing separator
func JoinList(items []string) string {
	return strings.Join(items, ListSeparator)
}
