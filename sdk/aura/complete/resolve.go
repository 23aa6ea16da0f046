// Copyright 2022, Pulumi Corporation.  All rights reserved.

package complete

import (
	"unicode"
	"unicode/utf8"
)

// DefaultWindow is how far, in bytes, the resolvers look around the cursor.
// It bounds the cost of every request independently of the document size.
const DefaultWindow = 500

// precedingRune returns the character that ends at offset end, or 0 when there
// is none.
func precedingRune(buf Buffer, end int) rune {
	if end <= 0 {
		return 0
	}
	s := buf.TextInRange(max(0, end-utf8.UTFMax), end)
	if s == "" {
		return 0
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}

// EnclosingTag finds the name of the tag whose opening `<` is nearest before the
// cursor at loc. The scan starts prefixLen+window bytes back. The name runs from
// the `<` to the first whitespace after it.
func EnclosingTag(buf Buffer, loc, prefixLen, window int) (string, bool) {
	head := buf.TextInRange(max(0, loc-prefixLen-window), loc)
	end := len(head)
	for i := len(head) - 1; i >= 0; i-- {
		c := head[i]
		if c == '<' {
			name := head[i+1 : end]
			return name, name != ""
		}
		if c < utf8.RuneSelf && isSpace(rune(c)) {
			end = i
		}
	}
	return "", false
}

// TagSuffix decides what must follow an attribute inserted at loc:
//
//   - ">" when the tag is not closed before the next `<` (or the window ends),
//   - "" when it is closed and the text after loc already starts with a space
//     or `>`,
//   - " " when it is closed but something else follows directly.
func TagSuffix(buf Buffer, loc, window int) string {
	tail := buf.TextInRange(loc, loc+window)
	suffix := ">"
	for i := 0; i < len(tail); i++ {
		if tail[i] == '>' {
			suffix = ""
			break
		}
		if tail[i] == '<' {
			break
		}
	}
	if suffix == "" && tail[0] != ' ' && tail[0] != '>' {
		suffix = " "
	}
	return suffix
}

// Identifier returns the run of identifier characters (letters, digits, `_` and
// `:`) that ends at loc, e.g. "aura:it" for `<aura:it|`. The scan stays on the
// line of loc and within window bytes.
func Identifier(buf Buffer, loc, window int) string {
	line := lineBefore(buf, loc, window)
	i := scanBack(line, len(line), isIdentRune)
	return line[i:]
}

// WordBefore returns the run of letters, digits and `_` that ends at loc, on
// the line of loc. This is the prefix an editor reports as typed.
func WordBefore(buf Buffer, loc, window int) string {
	line := lineBefore(buf, loc, window)
	return line[scanBack(line, len(line), isWordRune):]
}

// Expression is a shorthand such as `td.total` or `div#main`, which expands
// into a tag with its class or id set.
type Expression struct {
	Tag string
	// Either '.' (class) or '#' (id).
	Sigil byte
	Value string
}

func (e Expression) String() string {
	return e.Tag + string(e.Sigil) + e.Value
}

// Attribute is the attribute the expression sets.
func (e Expression) Attribute() string {
	if e.Sigil == '#' {
		return "id"
	}
	return "class"
}

// ParseExpression recognizes an expression ending at loc. Only text on the
// line of loc, and within window bytes, is considered.
func ParseExpression(buf Buffer, loc, window int) (Expression, bool) {
	line := lineBefore(buf, loc, window)
	valueStart := scanBack(line, len(line), isValueRune)
	if valueStart == len(line) || valueStart == 0 {
		return Expression{}, false
	}
	sigil := line[valueStart-1]
	if sigil != '.' && sigil != '#' {
		return Expression{}, false
	}
	tagStart := scanBack(line, valueStart-1, isIdentRune)
	tag := line[tagStart : valueStart-1]
	// Tags start with a letter, which keeps numbers like 1.5 out.
	if first, _ := utf8.DecodeRuneInString(tag); !unicode.IsLetter(first) {
		return Expression{}, false
	}
	return Expression{
		Tag:   tag,
		Sigil: sigil,
		Value: line[valueStart:],
	}, true
}

func lineBefore(buf Buffer, loc, window int) string {
	return buf.TextInRange(max(buf.LineStart(loc), loc-window), loc)
}

// scanBack walks back from end while ok holds, returning the start of the run.
func scanBack(s string, end int, ok func(rune) bool) int {
	for end > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:end])
		if r == utf8.RuneError && size <= 1 || !ok(r) {
			break
		}
		end -= size
	}
	return end
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isIdentRune(r rune) bool {
	return r == ':' || isWordRune(r)
}

func isValueRune(r rune) bool {
	return r == '-' || isWordRune(r)
}
