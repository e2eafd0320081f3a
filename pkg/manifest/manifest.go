// Package manifest renders the enriched descriptor list as a Flatpak
// sources fragment on stdout.
package manifest

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"irpfgen/pkg/assets"
	"irpfgen/pkg/index"
)

// Options selects the shape of the rendered sources.
type Options struct {
	// DirectSources emits archive sources extracted at build time
	// instead of extra-data ones downloaded at install time.
	DirectSources bool
	// DataChecker appends an x-checker-data block per source so the
	// external data checker can detect new versions.
	DataChecker bool
	// Locator resolves the index URL and version URL templates for the
	// checker blocks.
	Locator assets.Locator
}

// Render writes one source block per descriptor, blank-line separated,
// indented for inclusion under a Flatpak module's sources list. The
// descriptors must already carry url, sha256 and size.
func Render(w io.Writer, descs []index.Descriptor, opts Options) error {
	var out strings.Builder

	for k, desc := range descs {
		if opts.DirectSources {
			out.WriteString("  - type: archive\n")
			fmt.Fprintf(&out, "    dest-filename: %s\n", desc.DestFilename())
			fmt.Fprintf(&out, "    url: %s\n", desc.URL)
			fmt.Fprintf(&out, "    sha256: %s\n", desc.SHA256)
			out.WriteString("    strip-components: 2\n")
		} else {
			out.WriteString("  - type: extra-data\n")
			fmt.Fprintf(&out, "    filename: %s\n", desc.DestFilename())
			fmt.Fprintf(&out, "    url: %s\n", desc.URL)
			fmt.Fprintf(&out, "    size: %d\n", desc.Size)
			fmt.Fprintf(&out, "    sha256: %s\n", desc.SHA256)
		}

		if opts.DataChecker {
			out.WriteString("    x-checker-data:\n")
			out.WriteString("      type: html\n")
			fmt.Fprintf(&out, "      url: %s\n", opts.Locator.IndexURL())
			fmt.Fprintf(&out, "      version-pattern: %s\n", assets.VersionPattern(desc.ID))
			fmt.Fprintf(&out, "      url-template: %s\n", opts.Locator.VersionTemplate(desc.ID))
		}

		if k+1 < len(descs) {
			out.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, out.String())
	return err
}

// Signature writes a comment header recording how the sources list was
// produced, so regenerating it later is a copy-paste away.
func Signature(w io.Writer, argv0 string, args []string) error {
	quoted := make([]string, len(args))
	for i, arg := range args {
		quoted[i] = shellQuote(arg)
	}

	var out strings.Builder
	out.WriteString("# This sources list was generated by irpfgen\n")
	command := strings.TrimSpace(argv0 + " " + strings.Join(quoted, " "))
	fmt.Fprintf(&out, "# Command used: %s\n\n", command)

	_, err := io.WriteString(w, out.String())
	return err
}

var shellSafe = regexp.MustCompile(`^[\w@%+=:,./-]+$`)

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if shellSafe.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
