// Copyright 2022, Pulumi Corporation.  All rights reserved.

package complete

import (
	"strconv"
	"strings"

	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"

	"github.com/pulumi/aura-lsp/sdk/aura/registry"
)

// Candidate is a single completion: a label shown to the user and the snippet
// text to insert.
//
// The label may carry a type hint after a tab, e.g. "aura:if\tTag" or
// "isTrue\tBoolean". The template uses numbered placeholder fields: $0 is where
// the cursor finally rests, ${N:default} and $N are visited in order.
type Candidate struct {
	Label    string
	Template string
}

const tagHint = "Tag"

// TagSnippet renders the full completion for a tag. Every required attribute is
// pre-filled with a placeholder labeled by its type, in declaration order:
//
//	aura:if isTrue="${1:Boolean}" $2>$0</aura:if>
//
// A tag with no attribute metadata keeps the minimal form `name $0 ></name>`.
func TagSnippet(name string, attrs []registry.Attribute) Candidate {
	label := name + "\t" + tagHint
	name = escapeSnippet(name)
	if len(attrs) == 0 {
		return Candidate{Label: label, Template: name + " $0 ></" + name + ">"}
	}

	var b strings.Builder
	b.WriteString(name)
	field := 1
	for _, attr := range registry.Required(attrs) {
		b.WriteByte(' ')
		writeAttribute(&b, attr, field)
		field++
	}
	b.WriteString(" $")
	b.WriteString(strconv.Itoa(field))
	b.WriteString(">$0</")
	b.WriteString(name)
	b.WriteByte('>')

	c := Candidate{Label: label, Template: b.String()}
	assertFields(c, field)
	return c
}

// AttributeSnippet renders the completion for a single attribute. trailing is
// appended after the closing quote; see TagSuffix.
func AttributeSnippet(name, typ, trailing string) Candidate {
	return Candidate{
		Label:    name + "\t" + typ,
		Template: escapeSnippet(name) + `="${0:` + escapeSnippet(typ) + `}"` + trailing,
	}
}

// ExpressionSnippet expands a tag.value or tag#value expression into a tag with
// the class (or id) set. Other required attributes of the tag follow, then the
// body field.
//
//	td.total -> <td class="total">$1</td>$0
func ExpressionSnippet(expr Expression, attrs []registry.Attribute) Candidate {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(expr.Tag)
	b.WriteByte(' ')
	b.WriteString(expr.Attribute())
	b.WriteString(`="`)
	b.WriteString(expr.Value)
	b.WriteByte('"')
	field := 1
	for _, attr := range registry.Required(attrs) {
		if attr.Name == expr.Attribute() {
			continue
		}
		b.WriteByte(' ')
		writeAttribute(&b, attr, field)
		field++
	}
	b.WriteString(">$")
	b.WriteString(strconv.Itoa(field))
	b.WriteString("</")
	b.WriteString(expr.Tag)
	b.WriteString(">$0")

	c := Candidate{Label: expr.String(), Template: b.String()}
	assertFields(c, field)
	return c
}

func writeAttribute(b *strings.Builder, attr registry.Attribute, field int) {
	b.WriteString(escapeSnippet(attr.Name))
	b.WriteString(`="${`)
	b.WriteString(strconv.Itoa(field))
	b.WriteByte(':')
	b.WriteString(escapeSnippet(attr.Type))
	b.WriteString(`}"`)
}

var snippetEscaper = strings.NewReplacer(`\`, `\\`, `$`, `\$`, `}`, `\}`)

// escapeSnippet quotes the characters the snippet grammar reserves, so registry
// names and types are always inserted literally.
func escapeSnippet(s string) string {
	return snippetEscaper.Replace(s)
}

// fieldNumbers lists the placeholder fields of a template in the order they
// appear. Escaped dollars are skipped.
func fieldNumbers(template string) []int {
	var fields []int
	for i := 0; i < len(template); i++ {
		switch template[i] {
		case '\\':
			i++
		case '$':
			j := i + 1
			if j < len(template) && template[j] == '{' {
				j++
			}
			k := j
			for k < len(template) && template[k] >= '0' && template[k] <= '9' {
				k++
			}
			if k == j {
				continue
			}
			n, err := strconv.Atoi(template[j:k])
			contract.AssertNoErrorf(err, "digits must parse")
			fields = append(fields, n)
			i = k - 1
		}
	}
	return fields
}

// assertFields checks that c numbers its fields 0..last, each exactly once.
func assertFields(c Candidate, last int) {
	fields := fieldNumbers(c.Template)
	seen := make(map[int]bool, len(fields))
	for _, f := range fields {
		contract.Assertf(!seen[f], "field $%d repeated in %q", f, c.Template)
		contract.Assertf(f >= 0 && f <= last, "field $%d out of range in %q", f, c.Template)
		seen[f] = true
	}
	contract.Assertf(len(seen) == last+1, "%q must number fields 0 to %d", c.Template, last)
}
