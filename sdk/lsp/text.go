// Copyright 2022, Pulumi Corporation.  All rights reserved.

package lsp

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"
	"go.lsp.dev/protocol"
)

// A thread-safe text document designed to handle incremental updates.
//
// Every update produces a new immutable Text, so a Text handed out by Snapshot
// stays valid (and consistent) while the document keeps changing.
type Document struct {
	// Any method that reads `text` needs to acquire a read lock of `m`. To
	// replace `text`, a write lock is required.
	text *Text
	// NOTE: uri should be considered immutable. This allows us to fetch is
	// without a lock.
	uri protocol.DocumentURI
	m   *sync.RWMutex

	version    int32
	languageID protocol.LanguageIdentifier
}

// Create a new document from a TextDocumentItem.
func NewDocument(item protocol.TextDocumentItem) Document {
	return Document{
		text:       NewText(item.Text),
		uri:        item.URI,
		version:    item.Version,
		languageID: item.LanguageID,

		m: new(sync.RWMutex),
	}
}

// TextChange is one entry of the contentChanges of a didChange notification.
// A change without a Range replaces the whole document.
type TextChange struct {
	Range *protocol.Range `json:"range,omitempty"`
	Text  string          `json:"text"`
}

// Update the document with the given changes.
func (d *Document) AcceptChanges(changes []TextChange) error {
	d.m.Lock()
	defer d.m.Unlock()
	for _, change := range changes {
		next, err := d.text.apply(change)
		if err != nil {
			return err
		}
		d.text = next
	}
	return nil
}

// Retrieve the URI of the Document.
func (d *Document) URI() protocol.DocumentURI {
	return d.uri
}

// The language the client reported when the document was opened.
func (d *Document) LanguageID() protocol.LanguageIdentifier {
	return d.languageID
}

// Returns the whole document as a string.
func (d *Document) String() string {
	return d.Snapshot().String()
}

// Snapshot returns the current text of the document.
func (d *Document) Snapshot() *Text {
	d.m.RLock()
	defer d.m.RUnlock()
	return d.text
}

// Text is an immutable view of a document's contents, indexed by line.
// Offsets are byte offsets into the UTF-8 text; positions follow the LSP
// convention of zero based lines and UTF-16 code unit columns.
type Text struct {
	text string
	// The byte offset at which each line starts. lineStarts[0] is always 0.
	lineStarts []int
}

const lineDeliminator = "\n"

func NewText(s string) *Text {
	starts := []int{0}
	for i := 0; i < len(s); i++ {
		if s[i] == lineDeliminator[0] {
			starts = append(starts, i+1)
		}
	}
	return &Text{text: s, lineStarts: starts}
}

func (t *Text) String() string {
	return t.text
}

func (t *Text) Len() int {
	return len(t.text)
}

// TextInRange returns the text in [start, end). The range is clamped to the
// bounds of the text, so it never fails.
func (t *Text) TextInRange(start, end int) string {
	start = clamp(start, 0, len(t.text))
	end = clamp(end, start, len(t.text))
	return t.text[start:end]
}

// LineStart returns the offset of the first byte of the line holding offset.
func (t *Text) LineStart(offset int) int {
	return t.lineStarts[t.lineOf(offset)]
}

// Offset converts a protocol position into a byte offset.
func (t *Text) Offset(pos protocol.Position) (int, error) {
	line := int(pos.Line)
	if line >= len(t.lineStarts) {
		return 0, newInvalidPosition(pos, "line %d out of bounds for document with %d lines", line, len(t.lineStarts))
	}
	l := t.line(line)
	units := int(pos.Character)
	i := 0
	for units > 0 {
		if i >= len(l) {
			return 0, newInvalidPosition(pos, "character %d out of bound on line %d", pos.Character, line)
		}
		r, size := utf8.DecodeRuneInString(l[i:])
		units -= utf16.RuneLen(r)
		i += size
	}
	return t.lineStarts[line] + i, nil
}

// Position converts a byte offset into a protocol position. Offsets outside
// of the text are clamped.
func (t *Text) Position(offset int) protocol.Position {
	offset = clamp(offset, 0, len(t.text))
	line := t.lineOf(offset)
	var units int
	for _, r := range t.text[t.lineStarts[line]:offset] {
		units += utf16.RuneLen(r)
	}
	return protocol.Position{
		Line:      uint32(line),
		Character: uint32(units),
	}
}

func (t *Text) lineOf(offset int) int {
	// The first line start strictly greater than offset is one past our line.
	return sort.SearchInts(t.lineStarts, offset+1) - 1
}

func (t *Text) line(i int) string {
	end := len(t.text)
	if i+1 < len(t.lineStarts) {
		end = t.lineStarts[i+1] - len(lineDeliminator)
	}
	return strings.TrimSuffix(t.text[t.lineStarts[i]:end], "\r")
}

// apply implements a change, returning the new text.
func (t *Text) apply(change TextChange) (*Text, error) {
	if change.Range == nil {
		return NewText(change.Text), nil
	}
	r := *change.Range
	if err := validateRange(r); err != nil {
		return nil, err
	}
	start, err := t.Offset(r.Start)
	if err != nil {
		return nil, newInvalidRange(r, "%s", err.Error())
	}
	end, err := t.Offset(r.End)
	if err != nil {
		return nil, newInvalidRange(r, "%s", err.Error())
	}
	contract.Assertf(start <= end, "validated range must not be inverted")
	return NewText(t.text[:start] + change.Text + t.text[end:]), nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func validateRange(r protocol.Range) error {
	if r.Start.Line > r.End.Line {
		return newInvalidRange(r, "start line %d > end line %d", r.Start.Line, r.End.Line)
	}
	if r.Start.Line == r.End.Line &&
		r.Start.Character > r.End.Character {
		return newInvalidRange(r, "start char %d > end char %d", r.Start.Character, r.End.Character)
	}
	return nil
}

func newInvalidRange(r protocol.Range, msg string, a ...interface{}) error {
	return invalidRange{r, fmt.Sprintf(msg, a...)}
}

func newInvalidPosition(p protocol.Position, msg string, a ...interface{}) error {
	return invalidRange{protocol.Range{Start: p, End: p}, fmt.Sprintf(msg, a...)}
}

type invalidRange struct {
	r      protocol.Range
	reason string
}

func (ir invalidRange) Error() string {
	return "Invalid range: " + ir.reason
}
