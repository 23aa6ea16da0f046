// Copyright 2022, Pulumi Corporation.  All rights reserved.

package complete

import (
	"strings"
	"unicode/utf8"

	"github.com/pulumi/aura-lsp/sdk/aura/registry"
)

// Index buckets the tag completions by the first character of their label.
// Narrowing by the rest of the prefix is left to the client, which filters
// the labels it is sent.
type Index struct {
	buckets map[rune][]Candidate
	size    int
}

// NewIndex registers every tag of reg in declaration order, each followed by
// its upper-cased spelling when that differs.
func NewIndex(reg *registry.Registry) *Index {
	ix := &Index{buckets: map[rune][]Candidate{}}
	for _, tag := range reg.Tags() {
		ix.add(TagSnippet(tag.Name, tag.Attributes))
		if upper := strings.ToUpper(tag.Name); upper != tag.Name {
			ix.add(TagSnippet(upper, tag.Attributes))
		}
	}
	return ix
}

func (ix *Index) add(c Candidate) {
	first, _ := utf8.DecodeRuneInString(c.Label)
	ix.buckets[first] = append(ix.buckets[first], c)
	ix.size++
}

// Lookup returns the bucket for the first character of prefix. The bucket is
// shared and must not be modified.
func (ix *Index) Lookup(prefix string) []Candidate {
	if prefix == "" {
		return nil
	}
	first, _ := utf8.DecodeRuneInString(prefix)
	return ix.buckets[first]
}

// Len is the number of indexed candidates.
func (ix *Index) Len() int {
	return ix.size
}
