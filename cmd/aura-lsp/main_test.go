// Copyright 2022, Pulumi Corporation.  All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulumi/aura-lsp/sdk/version"
)

func run(t *testing.T, args ...string) string {
	var out bytes.Buffer
	cmd := newLSPCommand()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestVersionCmd(t *testing.T) {
	assert.Equal(t, version.Version+"\n", run(t, "version"))
}

func TestCompleteCmd(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "list.cmp")
	require.NoError(t, os.WriteFile(file, []byte("<aura:component>\n  <aura:if "), 0o600))

	out := run(t, "complete", file, "--color", "never")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "isTrue")
	assert.Contains(t, lines[0], `isTrue="${0:Boolean}">`)
	assert.Equal(t,
		`1 candidates for "" at 2:12 (inhibit word completions, inhibit explicit completions, replacing 0 more bytes)`,
		lines[1])

	registry := filepath.Join(dir, "tags.yaml")
	require.NoError(t, os.WriteFile(registry, []byte(`tags: {"c:card": {title: {type: String, required: true}}}`), 0o600))
	out = run(t, "--registry", registry, "complete", file, "--color", "never", "--offset", "19", "--prefix", "c")
	assert.Contains(t, out, `c:card title="${1:String}" $2>$0</c:card>`)
	assert.Contains(t, out, "1 candidates")
}

func TestCompleteCmdRejectsColor(t *testing.T) {
	cmd := newLSPCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"complete", "missing.cmp", "--color", "sometimes"})
	assert.ErrorContains(t, cmd.Execute(), "invalid --color")
}
