// Package index parses the remote latest.xml index into archive
// descriptors.
package index

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"irpfgen/pkg/logging"
)

// ArchiveSuffix is the only archive type the index is expected to list.
const ArchiveSuffix = ".zip"

// Descriptor is the in-memory record for one remote ZIP archive. It is
// built incrementally: Parse fills ID and Name, the resolver fills URL,
// the download phase fills SHA256 and Size.
type Descriptor struct {
	ID     string
	Name   string
	URL    string
	SHA256 string
	Size   int64
}

// DestFilename is the local filename the manifest installs the archive
// under, derived from the stable file id.
func (d Descriptor) DestFilename() string {
	return d.ID + ArchiveSuffix
}

// ParseError reports a malformed index document, distinct from fetch
// failures.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse index xml: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// DuplicateIDError reports two index entries sharing a file id. The
// remote data contract guarantees ids are unique, so this is an
// unrecoverable fault rather than a skippable entry.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate file id %q in index", e.ID)
}

type fileNode struct {
	Name *string `xml:"filePackageName"`
	ID   *string `xml:"fileId"`
}

// Parse extracts every extra/files/file entry from the document and
// returns the valid ones sorted ascending by id. Entries lacking a
// filename or id, or whose filename is not a ZIP, are skipped with a
// warning. The stdlib decoder runs in strict mode and resolves no
// entities, so untrusted documents cannot trigger entity expansion or
// external fetches.
func Parse(ctx context.Context, data []byte) ([]Descriptor, error) {
	logger := logging.GetLogger(ctx)

	decoder := xml.NewDecoder(bytes.NewReader(data))

	var (
		path    []string
		seen    = map[string]bool{}
		zips    []Descriptor
		ordinal int
	)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Err: err}
		}

		switch tok := token.(type) {
		case xml.StartElement:
			if tok.Name.Local == "file" && pathEndsWith(path, "extra", "files") {
				ordinal++

				var node fileNode
				if err := decoder.DecodeElement(&node, &tok); err != nil {
					return nil, &ParseError{Err: err}
				}

				if node.Name == nil {
					logger.Warn("file node lacks a filePackageName child, skipping", "ordinal", ordinal)
					continue
				}
				name := *node.Name

				if !strings.HasSuffix(name, ArchiveSuffix) {
					logger.Warn("file node is not a zip file, skipping", "name", name)
					continue
				}

				if node.ID == nil {
					logger.Warn("file node lacks a fileId child, skipping", "name", name)
					continue
				}
				id := *node.ID

				if seen[id] {
					return nil, &DuplicateIDError{ID: id}
				}
				seen[id] = true

				zips = append(zips, Descriptor{ID: id, Name: name, Size: -1})
				continue
			}
			path = append(path, tok.Name.Local)
		case xml.EndElement:
			if len(path) > 0 {
				path = path[:len(path)-1]
			}
		}
	}

	sort.Slice(zips, func(i, j int) bool { return zips[i].ID < zips[j].ID })

	return zips, nil
}

func pathEndsWith(path []string, names ...string) bool {
	if len(path) < len(names) {
		return false
	}
	tail := path[len(path)-len(names):]
	for i := range names {
		if tail[i] != names[i] {
			return false
		}
	}
	return true
}
