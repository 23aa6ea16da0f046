// Copyright 2022, Pulumi Corporation.  All rights reserved.

package aura

import (
	"strings"

	"github.com/pulumi/aura-lsp/sdk/aura/complete"
)

// Oracle answers the lexical questions of the completion engine from the raw
// text, for clients that do not send any scope information.
//
// It lexes forward from the last `<` or `>` found before the window of bytes
// preceding the offset, looking back at most one more window for it. Past
// that, the start of the lexed text is assumed to be markup text. Only tags,
// quoted attribute values, comments and `{!...}` or `{#...}` expressions are
// recognized.
type Oracle struct {
	buf    complete.Buffer
	window int
}

var _ complete.Oracle = Oracle{}

func NewOracle(buf complete.Buffer, window int) Oracle {
	if window <= 0 {
		window = complete.DefaultWindow
	}
	return Oracle{buf: buf, window: window}
}

// InTextRegion is false inside quoted values, comments and expressions.
func (o Oracle) InTextRegion(offset int) bool {
	st := o.lex(offset)
	return st.quote == 0 && !st.comment && st.expr == 0
}

// InsideTag is true between a `<` and its `>`.
func (o Oracle) InsideTag(offset int) bool {
	st := o.lex(offset)
	return st.inTag && !st.comment
}

type lexState struct {
	inTag   bool
	quote   byte
	comment bool
	// Brace depth of an expression.
	expr int
}

// start is where lexing for offset begins. A window boundary that falls
// within a long opening tag is moved back to the tag's `<`.
func (o Oracle) start(offset int) int {
	start := max(0, offset-o.window)
	if start == 0 {
		return 0
	}
	before := o.buf.TextInRange(max(0, start-o.window), start)
	if i := strings.LastIndexAny(before, "<>"); i >= 0 {
		return start - len(before) + i
	}
	return start
}

func (o Oracle) lex(offset int) lexState {
	s := o.buf.TextInRange(o.start(offset), offset)
	var st lexState
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case st.comment:
			if strings.HasPrefix(s[i:], "-->") {
				st.comment = false
				i += 2
			}
		case st.quote != 0:
			if c == st.quote {
				st.quote = 0
			}
		case st.expr > 0:
			switch c {
			case '{':
				st.expr++
			case '}':
				st.expr--
			}
		case st.inTag:
			switch c {
			case '"', '\'':
				st.quote = c
			case '>':
				st.inTag = false
			}
		case strings.HasPrefix(s[i:], "<!--"):
			st.comment = true
			i += 3
		case c == '<':
			st.inTag = true
		case c == '{' && i+1 < len(s) && (s[i+1] == '!' || s[i+1] == '#'):
			st.expr = 1
			i++
		}
	}
	return st
}
