// Copyright 2022, Pulumi Corporation.  All rights reserved.

package complete

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pulumi/aura-lsp/sdk/aura/registry"
)

// text is a Buffer over a string.
type text string

func (t text) TextInRange(start, end int) string {
	start = min(max(start, 0), len(t))
	end = min(max(end, start), len(t))
	return string(t[start:end])
}

func (t text) LineStart(offset int) int {
	offset = min(max(offset, 0), len(t))
	return strings.LastIndexByte(string(t[:offset]), '\n') + 1
}

type fakeOracle struct {
	notText map[int]bool
	inside  map[int]bool
}

func (o fakeOracle) InTextRegion(offset int) bool {
	return !o.notText[offset]
}

func (o fakeOracle) InsideTag(offset int) bool {
	return o.inside[offset]
}

func insideAt(offsets ...int) fakeOracle {
	o := fakeOracle{inside: map[int]bool{}}
	for _, off := range offsets {
		o.inside[off] = true
	}
	return o
}

func fixture() *registry.Registry {
	return registry.New(
		registry.Tag{Name: "table"},
		registry.Tag{Name: "tbody"},
		registry.Tag{Name: "td", Attributes: []registry.Attribute{
			{Name: "class", Type: "String"},
			{Name: "colspan", Type: "Integer"},
		}},
		registry.Tag{Name: "tr"},
		registry.Tag{Name: "head"},
		registry.Tag{Name: "header"},
		registry.Tag{Name: "h1"},
		registry.Tag{Name: "H2"},
		registry.Tag{Name: "aura:if", Attributes: []registry.Attribute{
			{Name: "isTrue", Type: "Boolean", Required: true},
			{Name: "else", Type: "Component[]"},
		}},
		registry.Tag{Name: "aura:iteration", Attributes: []registry.Attribute{
			{Name: "items", Type: "List", Required: true},
			{Name: "var", Type: "String", Required: true},
			{Name: "indexVar", Type: "String"},
		}},
		registry.Tag{Name: "ui:button", Attributes: []registry.Attribute{
			{Name: "label", Type: "String"},
			{Name: "press", Type: "Action", Required: true},
		}},
	)
}

const row = `<tr><td class="a">td.class</td></tr>`

func newEngine(t *testing.T) *Engine {
	return New(fixture(), WithLogger(zaptest.NewLogger(t).Sugar()))
}

func complete(e *Engine, doc, prefix string, oracle Oracle, locations ...int) Result {
	return e.Complete(Request{
		Prefix:    prefix,
		Locations: locations,
		Oracle:    oracle,
		Buffer:    text(doc),
	})
}

func TestTagsOutsideTag(t *testing.T) {
	e := newEngine(t)
	r := complete(e, row, "tab", insideAt(), 0)

	require.Len(t, r.Candidates, 4)
	assert.Equal(t, Candidate{Label: "table\tTag", Template: "<table $0 ></table>"}, r.Candidates[0])
	assert.Equal(t, Candidate{Label: "tbody\tTag", Template: "<tbody $0 ></tbody>"}, r.Candidates[1])
	// Word completion stays available.
	assert.Equal(t, Flags(0), r.Flags)
	assert.Zero(t, r.Replace)
}

func TestTagsAfterOpen(t *testing.T) {
	e := newEngine(t)
	for _, tc := range []struct {
		prefix string
		loc    int
	}{{"h", 6}, {"he", 7}} {
		r := complete(e, row, tc.prefix, insideAt(tc.loc), tc.loc)
		require.Len(t, r.Candidates, 3, tc.prefix)
		assert.Equal(t, Candidate{Label: "head\tTag", Template: "head $0 ></head>"}, r.Candidates[0])
		assert.Equal(t, Candidate{Label: "header\tTag", Template: "header $0 ></header>"}, r.Candidates[1])
		assert.Equal(t, "h1\tTag", r.Candidates[2].Label)
		assert.Equal(t, Inhibit, r.Flags)
	}
}

func TestInsideTagInterior(t *testing.T) {
	r := complete(newEngine(t), row, "h", insideAt(8), 8)
	assert.Empty(t, r.Candidates)
	assert.Equal(t, Inhibit, r.Flags)
}

func TestExpressionExpansion(t *testing.T) {
	r := complete(newEngine(t), row, "", insideAt(), 26)
	assert.Equal(t, []Candidate{{Label: "td.class", Template: `<td class="class">$1</td>$0`}}, r.Candidates)
	assert.Equal(t, Inhibit, r.Flags)
	assert.Equal(t, len("td.class"), r.Replace)

	// The typed prefix is part of the expression.
	doc := "<p>aura:iteration#row"
	r = complete(newEngine(t), doc, "row", insideAt(), len(doc))
	require.Len(t, r.Candidates, 1)
	assert.Equal(t,
		`<aura:iteration id="row" items="${1:List}" var="${2:String}">$3</aura:iteration>$0`,
		r.Candidates[0].Template)
	assert.Equal(t, len("aura:iteration#"), r.Replace)
}

func TestEmptyPrefixOutsideTag(t *testing.T) {
	r := complete(newEngine(t), "some text ", "", insideAt(), 10)
	assert.Empty(t, r.Candidates)
	assert.Equal(t, Inhibit, r.Flags)
}

func TestOutsideTextRegion(t *testing.T) {
	oracle := fakeOracle{notText: map[int]bool{3: true}}
	r := complete(newEngine(t), "<p>", "", oracle, 3)
	assert.Equal(t, Result{}, r)

	// A single cursor outside of text is enough.
	r = complete(newEngine(t), "<p>t\n<p>t", "t", oracle, 9, 3)
	assert.Equal(t, Result{}, r)

	assert.Equal(t, Result{}, complete(newEngine(t), "<p>", "", oracle))
}

func TestAttributes(t *testing.T) {
	e := newEngine(t)
	for _, tc := range []struct {
		name   string
		doc    string
		suffix string
	}{
		{"unterminated", `<ui:button `, ">"},
		{"before next tag", `<ui:button <p>`, ">"},
		{"before close", `<ui:button >`, ""},
		{"before space", `<ui:button  label="x">`, ""},
		{"before attribute", `<ui:button label="x">`, " "},
	} {
		t.Run(tc.name, func(t *testing.T) {
			loc := len("<ui:button ")
			r := complete(e, tc.doc, "", insideAt(loc), loc)
			assert.Equal(t, []Candidate{
				{Label: "label\tString", Template: `label="${0:String}"` + tc.suffix},
				{Label: "press\tAction", Template: `press="${0:Action}"` + tc.suffix},
			}, r.Candidates)
			assert.Equal(t, Inhibit, r.Flags)
		})
	}
}

func TestAttributesAcrossLines(t *testing.T) {
	doc := "<aura:if\n\tisTrue=\"{!v.ok}\"\n\tel"
	r := complete(newEngine(t), doc, "el", insideAt(len(doc)), len(doc))
	require.Len(t, r.Candidates, 2)
	assert.Equal(t, "isTrue\tBoolean", r.Candidates[0].Label)
	assert.Equal(t, `else="${0:Component[]}">`, r.Candidates[1].Template)
}

func TestAttributesOfUnknownTag(t *testing.T) {
	doc := "<c:custom "
	r := complete(newEngine(t), doc, "", insideAt(len(doc)), len(doc))
	assert.Empty(t, r.Candidates)
	assert.Equal(t, Inhibit, r.Flags)
}

func TestQualifiedIdentifier(t *testing.T) {
	e := newEngine(t)

	doc := "Hello aura:i"
	r := complete(e, doc, "i", insideAt(), len(doc))
	require.Len(t, r.Candidates, 2)
	assert.Equal(t, Candidate{
		Label:    "aura:if\tTag",
		Template: `<aura:if isTrue="${1:Boolean}" $2>$0</aura:if>`,
	}, r.Candidates[0])
	assert.Equal(t, "aura:iteration\tTag", r.Candidates[1].Label)
	assert.Equal(t, Flags(0), r.Flags)
	assert.Equal(t, len("aura:"), r.Replace)

	doc = "<aura:i"
	r = complete(e, doc, "i", insideAt(len(doc)), len(doc))
	require.Len(t, r.Candidates, 2)
	assert.Equal(t, `aura:if isTrue="${1:Boolean}" $2>$0</aura:if>`, r.Candidates[0].Template)
	assert.Equal(t, Inhibit, r.Flags)
	assert.Equal(t, len("aura:"), r.Replace)

	// Nothing typed after the separator yet.
	doc = "<p>aura:"
	r = complete(e, doc, "", insideAt(), len(doc))
	require.Len(t, r.Candidates, 2)
	assert.Equal(t, len("aura:"), r.Replace)
}

func TestMultipleCursors(t *testing.T) {
	e := newEngine(t)

	same := "<ui:button \n<ui:button "
	r := complete(e, same, "", insideAt(11, 23), 11, 23)
	assert.Len(t, r.Candidates, 2)

	for _, tc := range []struct {
		name      string
		doc       string
		prefix    string
		oracle    fakeOracle
		locations []int
	}{
		{"enclosing tag", "<aura:if \n<ui:button ", "", insideAt(9, 21), []int{9, 21}},
		{"identifier", "aura:i\nui:i", "i", insideAt(), []int{6, 11}},
		{"plain word then identifier", "a\naura:a", "a", insideAt(), []int{1, 8}},
		{"identifier then plain word", "a\naura:a", "a", insideAt(), []int{8, 1}},
		{"expression", "td.a\ntr.b", "", insideAt(), []int{4, 9}},
		{"expression and none", "td.a\ntr t", "t", insideAt(), []int{4, 9}},
		{"context", "<ui:button t\n<p> t", "t", insideAt(12), []int{12, 18}},
		{"opening bracket", "<t\n t", "t", insideAt(), []int{2, 5}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := complete(e, tc.doc, tc.prefix, tc.oracle, tc.locations...)
			assert.Empty(t, r.Candidates)
			assert.Equal(t, Inhibit, r.Flags)

			// Either cursor alone would get an answer.
			for _, loc := range tc.locations {
				alone := complete(e, tc.doc, tc.prefix, tc.oracle, loc)
				assert.NotEmpty(t, alone.Candidates, "cursor at %d", loc)
			}
		})
	}
}

func TestCompleteIsIdempotent(t *testing.T) {
	e := newEngine(t)
	first := complete(e, row, "h", insideAt(6), 6)
	first.Candidates[0].Template = "changed"
	second := complete(e, row, "h", insideAt(6), 6)
	third := complete(e, row, "h", insideAt(6), 6)
	assert.Equal(t, second, third)
	assert.Equal(t, "head $0 ></head>", second.Candidates[0].Template)
}

func TestNewEngine(t *testing.T) {
	e := New(nil, WithWindow(0))
	assert.Equal(t, DefaultWindow, e.Window())
	assert.Equal(t, 0, e.Registry().Len())

	e = New(fixture(), WithWindow(4))
	assert.Equal(t, 4, e.Window())
	// The `<` is out of reach.
	doc := "<ui:button "
	r := complete(e, doc, "", insideAt(len(doc)), len(doc))
	assert.Empty(t, r.Candidates)
	assert.Equal(t, Inhibit, r.Flags)
}
