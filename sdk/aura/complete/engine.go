// Copyright 2022, Pulumi Corporation.  All rights reserved.

// Package complete computes tag and attribute completions for component
// markup. It works on raw text around the cursor, without a parser, so it
// copes with documents that are incomplete or invalid while being typed.
package complete

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/pulumi/aura-lsp/sdk/aura/registry"
)

// Oracle classifies document offsets. Hosts usually answer from their own
// syntax highlighting.
type Oracle interface {
	// InTextRegion reports whether completion applies at offset at all. It is
	// false in strings, comments and embedded code.
	InTextRegion(offset int) bool
	// InsideTag reports whether offset is inside an opening tag, past its `<`.
	InsideTag(offset int) bool
}

// Buffer gives access to the raw document text. Offsets are byte offsets.
type Buffer interface {
	// TextInRange returns the text in [start, end), clamped to the document.
	TextInRange(start, end int) string
	// LineStart returns the offset at which the line holding offset starts.
	LineStart(offset int) int
}

// Flags hold back other sources of completion in the client.
type Flags uint8

const (
	// Suppress completions derived from the words in the document.
	InhibitWordCompletions Flags = 1 << iota
	// Suppress any other explicit completion source.
	InhibitExplicitCompletions

	Inhibit = InhibitWordCompletions | InhibitExplicitCompletions
)

// Has reports whether every flag of g is set.
func (f Flags) Has(g Flags) bool {
	return f&g == g
}

// Request is a single completion request, possibly for several cursors.
type Request struct {
	// The text typed so far, directly before each cursor. May be empty.
	Prefix string
	// The cursors, each positioned after the prefix. The first one is the
	// primary cursor.
	Locations []int
	Oracle    Oracle
	Buffer    Buffer
}

// Result is the answer to a Request. One candidate list is shared by every
// cursor.
type Result struct {
	Candidates []Candidate
	Flags      Flags
	// The number of bytes before the typed prefix that the candidates also
	// replace. It covers the rest of an identifier such as `aura:` or an
	// expression such as `td.total`.
	Replace int
}

func suppressed() Result {
	return Result{Flags: Inhibit}
}

// Engine answers completion requests against a fixed registry. It holds no
// per-request state and is safe for concurrent use.
type Engine struct {
	registry *registry.Registry
	index    *Index
	window   int
	logger   *zap.SugaredLogger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger traces every request at debug level.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithWindow changes how many bytes around the cursor are inspected. Values
// below 1 keep DefaultWindow.
func WithWindow(window int) Option {
	return func(e *Engine) {
		if window > 0 {
			e.window = window
		}
	}
}

// New builds an engine and its index. A nil registry is treated as empty.
func New(reg *registry.Registry, opts ...Option) *Engine {
	if reg == nil {
		reg = registry.Empty()
	}
	e := &Engine{
		registry: reg,
		window:   DefaultWindow,
		logger:   zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.index = NewIndex(reg)
	e.logger.Debugf("Indexed %d tag completions for %d tags", e.index.Len(), reg.Len())
	return e
}

// Registry returns the registry the engine completes from.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Window returns how many bytes around the cursor are inspected.
func (e *Engine) Window() int {
	return e.window
}

// Complete answers a request. It never fails: anything it cannot make sense of
// yields no candidates.
func (e *Engine) Complete(req Request) Result {
	if len(req.Locations) == 0 {
		return Result{}
	}
	for _, loc := range req.Locations {
		if !req.Oracle.InTextRegion(loc) {
			return Result{}
		}
	}

	prefix := req.Prefix
	cursors := make([]CursorContext, len(req.Locations))
	for i, loc := range req.Locations {
		inside := req.Oracle.InsideTag(loc)
		preceding := precedingRune(req.Buffer, loc-len(prefix))
		cursors[i] = CursorContext{
			Offset:    loc,
			Preceding: preceding,
			Context:   Classify(inside, preceding),
			insideTag: inside,
		}
	}

	var replace int
	if slices.ContainsFunc(cursors, func(c CursorContext) bool { return c.Preceding == ':' }) {
		ident, ok := e.sharedIdentifier(req)
		if !ok {
			e.logger.Debugf("cursors disagree on the identifier before %q", prefix)
			return suppressed()
		}
		if strings.HasSuffix(ident, prefix) {
			replace = len(ident) - len(prefix)
			prefix = ident
			for i := range cursors {
				c := &cursors[i]
				c.Preceding = precedingRune(req.Buffer, c.Offset-len(ident))
				c.Context = Classify(c.insideTag, c.Preceding)
			}
		}
	}

	first := cursors[0]
	for _, c := range cursors[1:] {
		if c.Context != first.Context || c.afterOpen() != first.afterOpen() {
			e.logger.Debugf("cursors disagree: %s at %d, %s at %d",
				first.Context, first.Offset, c.Context, c.Offset)
			return suppressed()
		}
	}

	var result Result
	switch first.Context {
	case ContextInsideTagInterior:
		result = suppressed()
	case ContextInsideTagAttributePosition:
		result = withReplace(e.attributes(req, prefix, cursors), replace)
	case ContextInsideTagBeforeFirstSpace:
		result = withReplace(e.tags(prefix, first, Inhibit), replace)
	case ContextOutside:
		expr, ok, agree := e.expression(req)
		switch {
		case !agree:
			e.logger.Debugf("cursors disagree on the expression before %q", req.Prefix)
			result = suppressed()
		case ok:
			result = e.expand(expr, req.Prefix)
		default:
			result = withReplace(e.tags(prefix, first, 0), replace)
		}
	}

	e.logger.Debugf("%s completion for %q at %d: %d candidates, flags %b",
		first.Context, prefix, first.Offset, len(result.Candidates), result.Flags)
	return result
}

func withReplace(r Result, replace int) Result {
	if len(r.Candidates) > 0 {
		r.Replace = replace
	}
	return r
}

// sharedIdentifier recovers the identifier before every cursor. They must all
// be the same, so a cursor after `aura:a` and one after a bare `a` disagree.
func (e *Engine) sharedIdentifier(req Request) (string, bool) {
	ident := Identifier(req.Buffer, req.Locations[0], e.window)
	for _, loc := range req.Locations[1:] {
		if Identifier(req.Buffer, loc, e.window) != ident {
			return "", false
		}
	}
	return ident, ident != ""
}

// expression looks for an expression before every cursor. agree is false when
// the cursors see different expressions.
func (e *Engine) expression(req Request) (expr Expression, ok, agree bool) {
	expr, ok = ParseExpression(req.Buffer, req.Locations[0], e.window)
	for _, loc := range req.Locations[1:] {
		other, otherOk := ParseExpression(req.Buffer, loc, e.window)
		if otherOk != ok || other != expr {
			return Expression{}, false, false
		}
	}
	return expr, ok, true
}

func (e *Engine) expand(expr Expression, prefix string) Result {
	text := expr.String()
	var replace int
	if strings.HasSuffix(text, prefix) {
		replace = len(text) - len(prefix)
	}
	var attrs []registry.Attribute
	if tag, ok := e.registry.Tag(expr.Tag); ok {
		attrs = tag.Attributes
	} else {
		e.logger.Debugf("expanding %q with no metadata for %q", expr, expr.Tag)
	}
	return Result{
		Candidates: []Candidate{ExpressionSnippet(expr, attrs)},
		Flags:      Inhibit,
		Replace:    replace,
	}
}

func (e *Engine) tags(prefix string, c CursorContext, flags Flags) Result {
	if prefix == "" {
		return suppressed()
	}
	bucket := e.index.Lookup(prefix)
	var candidates []Candidate
	if c.afterOpen() {
		candidates = slices.Clone(bucket)
	} else {
		candidates = make([]Candidate, len(bucket))
		for i, candidate := range bucket {
			candidates[i] = Candidate{Label: candidate.Label, Template: "<" + candidate.Template}
		}
	}
	return Result{Candidates: candidates, Flags: flags}
}

func (e *Engine) attributes(req Request, prefix string, cursors []CursorContext) Result {
	tag, ok := EnclosingTag(req.Buffer, cursors[0].Offset, len(prefix), e.window)
	if !ok {
		return suppressed()
	}
	for _, c := range cursors[1:] {
		if other, _ := EnclosingTag(req.Buffer, c.Offset, len(prefix), e.window); other != tag {
			e.logger.Debugf("cursors disagree on the enclosing tag: %q and %q", tag, other)
			return suppressed()
		}
	}

	attrs := e.registry.Lookup(tag)
	if len(attrs) == 0 {
		return suppressed()
	}
	suffix := TagSuffix(req.Buffer, cursors[0].Offset, e.window)
	candidates := make([]Candidate, len(attrs))
	for i, attr := range attrs {
		candidates[i] = AttributeSnippet(attr.Name, attr.Type, suffix)
	}
	return Result{Candidates: candidates, Flags: Inhibit}
}
