// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rollover

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/engagement-letters/pkg/types"
)

const fallbackSuffix = "_updated"

var (
	letterMarker = regexp.MustCompile(`(?i)engagement letter`)

	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
)

// DeriveFilename returns the name of the rolled-over copy of base, a
// filename without directory. Every year matched by the date rule is
// incremented and stale suffixes after "Engagement Letter" are dropped.
//
// When base contains no year the result is base with "_updated" before the
// extension, returned together with a *FilenameWarning.
func DeriveFilename(base string, date Rule) (string, error) {
	out, matched, err := date.apply(base, types.RateOptions{})
	if err != nil {
		return "", err
	}
	if !matched {
		ext := filepath.Ext(base)
		fallback := strings.TrimSuffix(base, ext) + fallbackSuffix + ext
		return fallback, &FilenameWarning{Original: base, Fallback: fallback}
	}
	return CleanupFilename(out), nil
}

// CleanupFilename truncates everything between the last "Engagement Letter"
// (any case) and the extension. Names without the marker are returned as is.
// CleanupFilename(CleanupFilename(x)) == CleanupFilename(x).
func CleanupFilename(name string) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	locs := letterMarker.FindAllStringIndex(stem, -1)
	if locs == nil {
		return name
	}
	end := locs[len(locs)-1][1]
	return stem[:end] + ext
}

// SanitizeFilename turns an uploaded filename into a safe single path
// element: Unicode is decomposed and reduced to ASCII, path separators and
// whitespace runs become underscores, and anything outside [A-Za-z0-9_.-]
// is dropped. The result may be empty.
func SanitizeFilename(name string) string {
	name = norm.NFKD.String(name)
	var b strings.Builder
	for _, r := range name {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	name = strings.NewReplacer("/", " ", `\`, " ").Replace(b.String())
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// DisplayFilename reverses the whitespace part of SanitizeFilename so the
// date and cleanup rules see the name as the user wrote it.
func DisplayFilename(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}
