// Copyright 2022, Pulumi Corporation.  All rights reserved.

package complete

// Context is the lexical position of a cursor, as far as completion is
// concerned.
type Context int

const (
	// Outside of any tag, in markup text.
	ContextOutside Context = iota
	// Directly after the `<` of an opening tag: a tag name is being typed.
	ContextInsideTagBeforeFirstSpace
	// After whitespace inside an opening tag: an attribute name is being typed.
	ContextInsideTagAttributePosition
	// Anywhere else inside a tag, e.g. halfway through a tag or attribute name.
	// Nothing is offered, but fallback completion is held back too.
	ContextInsideTagInterior
)

func (c Context) String() string {
	switch c {
	case ContextOutside:
		return "outside"
	case ContextInsideTagBeforeFirstSpace:
		return "tag name"
	case ContextInsideTagAttributePosition:
		return "attribute"
	case ContextInsideTagInterior:
		return "tag interior"
	default:
		return "unknown"
	}
}

// InsideTag reports whether the context is any of the in-tag contexts.
func (c Context) InsideTag() bool {
	return c != ContextOutside
}

// Classify decides the context from the oracle's in-tag verdict and the
// character directly before the typed prefix. preceding is 0 at the start of the
// document.
func Classify(insideTag bool, preceding rune) Context {
	switch {
	case !insideTag:
		return ContextOutside
	case preceding == '<':
		return ContextInsideTagBeforeFirstSpace
	case isSpace(preceding):
		return ContextInsideTagAttributePosition
	default:
		return ContextInsideTagInterior
	}
}

// CursorContext is what a single cursor contributes to a request.
type CursorContext struct {
	// The cursor, after the typed prefix.
	Offset int
	// The character before the typed prefix.
	Preceding rune
	Context   Context
	insideTag bool
}

func (c CursorContext) afterOpen() bool {
	return c.Preceding == '<'
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return false
}
