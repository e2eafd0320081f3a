// Package assets derives download URLs on the IRPF update host from the
// edition and archive filenames.
package assets

import (
	"strconv"
	"strings"
)

// DefaultTemplate points at the government download host serving the
// update assets for every edition. Placeholders: {edition}, {path}.
const DefaultTemplate = "https://downloadirpf.receita.fazenda.gov.br/irpf/{edition}/irpf/update/{path}"

// UserAgent mimics the Java updater bundled with IRPF itself; the host
// is known to serve Java clients.
const UserAgent = "Java/11.0.22"

// IndexPath is the per-edition index document listing the ZIP archives.
const IndexPath = "latest.xml"

// MinEdition is the oldest supported edition; earlier years use a
// different asset layout.
const MinEdition = 2020

// ValidEdition reports whether the edition year is supported.
func ValidEdition(edition int) bool {
	return edition >= MinEdition
}

// Locator resolves asset paths into absolute URLs. Resolution is pure
// string substitution: the same (template, edition, path) always yields
// the same URL.
type Locator struct {
	Template string
	Edition  int
}

// NewLocator builds a locator for the given edition using the default
// template.
func NewLocator(edition int) Locator {
	return Locator{Template: DefaultTemplate, Edition: edition}
}

// URL substitutes the edition and path into the template.
func (l Locator) URL(path string) string {
	template := l.Template
	if template == "" {
		template = DefaultTemplate
	}
	out := strings.ReplaceAll(template, "{edition}", strconv.Itoa(l.Edition))
	return strings.ReplaceAll(out, "{path}", path)
}

// IndexURL is the URL of the latest.xml index for this edition.
func (l Locator) IndexURL() string {
	return l.URL(IndexPath)
}

// ArchiveURL is the download URL for one archive filename from the
// index.
func (l Locator) ArchiveURL(name string) string {
	return l.URL(name)
}

// VersionTemplate is the URL template the external data checker uses to
// resolve a detected version of the archive with the given id.
func (l Locator) VersionTemplate(id string) string {
	return l.URL(id + "__$version.zip")
}

// VersionPattern matches versioned archive filenames for the given id
// in the index page, capturing the version component.
func VersionPattern(id string) string {
	return id + `__([\d_]+)\.zip`
}
