// Copyright 2022, Pulumi Corporation.  All rights reserved.

package complete

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pulumi/aura-lsp/sdk/aura/registry"
	"github.com/pulumi/aura-lsp/sdk/util"
)

func labels(cs []Candidate) []string {
	return util.MapOver(cs, func(c Candidate) string { return c.Label })
}

func TestIndexBuckets(t *testing.T) {
	ix := NewIndex(fixture())

	assert.Equal(t, []string{"head\tTag", "header\tTag", "h1\tTag"}, labels(ix.Lookup("h")))
	// Only the first character selects the bucket.
	assert.Equal(t, labels(ix.Lookup("h")), labels(ix.Lookup("hzz")))
	assert.Equal(t, []string{"HEAD\tTag", "HEADER\tTag", "H1\tTag", "H2\tTag"}, labels(ix.Lookup("H")))
	assert.Equal(t, []string{"aura:if\tTag", "aura:iteration\tTag"}, labels(ix.Lookup("aura:")))
	assert.Equal(t,
		`AURA:IF isTrue="${1:Boolean}" $2>$0</AURA:IF>`,
		ix.Lookup("A")[0].Template)

	assert.Nil(t, ix.Lookup(""))
	assert.Nil(t, ix.Lookup("z"))
	// H2 is registered once.
	assert.Equal(t, 2*fixture().Len()-1, ix.Len())
}

func TestIndexOfDefaultRegistry(t *testing.T) {
	reg := registry.Default()
	ix := NewIndex(reg)
	assert.Equal(t, 2*reg.Len(), ix.Len())

	bucket := ix.Lookup("a")
	if assert.NotEmpty(t, bucket) {
		assert.Equal(t, "aura:attribute\tTag", bucket[0].Label)
		assert.Equal(t,
			`aura:attribute name="${1:String}" type="${2:String}" $3>$0</aura:attribute>`,
			bucket[0].Template)
	}
}
