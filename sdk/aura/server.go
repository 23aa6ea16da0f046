// Copyright 2022, Pulumi Corporation.  All rights reserved.

// Package aura serves component markup completions over the language server
// protocol.
package aura

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/pulumi/aura-lsp/sdk/aura/complete"
	"github.com/pulumi/aura-lsp/sdk/aura/registry"
	"github.com/pulumi/aura-lsp/sdk/lsp"
	"github.com/pulumi/aura-lsp/sdk/step"
	"github.com/pulumi/aura-lsp/sdk/util"
	"github.com/pulumi/aura-lsp/sdk/version"
)

// TriggerCharacters ask the client for completions as soon as a tag, a
// namespace or an attribute list is started.
var TriggerCharacters = []string{"<", ":", " "}

// Config controls how the engine is built.
type Config struct {
	// A registry file. The embedded registry is used when empty.
	RegistryPath string
	// Bytes inspected around the cursor. Zero means complete.DefaultWindow.
	Window int
	Logger *zap.SugaredLogger
}

// LoadEngine reads the registry and indexes it in the background. A registry
// that cannot be read leaves the engine empty.
func LoadEngine(ctx context.Context, config Config) *step.Step[*complete.Engine] {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return step.New(ctx, func() (*complete.Engine, bool) {
		reg := registry.LoadOrEmpty(config.RegistryPath, registry.WithLogger(logger))
		logger.Infof("Loaded %d tags (registry version %s)", reg.Len(), reg.Version())
		return complete.New(reg,
			complete.WithWindow(config.Window),
			complete.WithLogger(logger)), true
	})
}

type server struct {
	docs map[protocol.DocumentURI]*lsp.Document
	m    sync.RWMutex

	engine *step.Step[*complete.Engine]
}

func Methods(engine *step.Step[*complete.Engine]) *lsp.Methods {
	server := &server{
		docs:   map[protocol.DocumentURI]*lsp.Document{},
		engine: engine,
	}
	return lsp.Methods{
		InitializedFunc: server.initialized,
		DidOpenFunc:     server.didOpen,
		DidCloseFunc:    server.didClose,
		DidChangeFunc:   server.didChange,
		CompletionFunc:  server.completion,
	}.DefaultInitializer("aura-lsp", version.Version, TriggerCharacters...)
}

func (s *server) getDocument(uri protocol.DocumentURI) (*lsp.Document, bool) {
	s.m.RLock()
	defer s.m.RUnlock()
	d, ok := s.docs[uri]
	return d, ok
}

func (s *server) initialized(client lsp.Client, params *protocol.InitializedParams) error {
	step.After(s.engine, func(e *complete.Engine) {
		client.LogInfof("Completing %d tags", e.Registry().Len())
	})
	return nil
}

func (s *server) didOpen(client lsp.Client, params *protocol.DidOpenTextDocumentParams) error {
	doc := lsp.NewDocument(params.TextDocument)
	s.m.Lock()
	s.docs[doc.URI()] = &doc
	s.m.Unlock()
	return client.LogDebugf("Opened file %s (%s)", doc.URI().Filename(), doc.LanguageID())
}

func (s *server) didClose(client lsp.Client, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.m.Lock()
	_, ok := s.docs[uri]
	delete(s.docs, uri)
	s.m.Unlock()
	if !ok {
		return client.LogWarningf("Attempted to close unopened file %s", uri.Filename())
	}
	return client.LogDebugf("Closing file %s", uri.Filename())
}

func (s *server) didChange(client lsp.Client, params *lsp.DidChangeParams) error {
	uri := params.TextDocument.URI
	doc, ok := s.getDocument(uri)
	if !ok {
		return fmt.Errorf("could not find document %s(%s)", uri.Filename(), uri)
	}
	if err := doc.AcceptChanges(params.ContentChanges); err != nil {
		client.LogErrorf("Dropped changes to %s (version %d): %s",
			uri.Filename(), params.TextDocument.Version, err.Error())
		return err
	}
	return nil
}

func (s *server) completion(client lsp.Client, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	uri := params.TextDocument.URI
	doc, ok := s.getDocument(uri)
	if !ok {
		return nil, fmt.Errorf("could not find an opened document %s", uri.Filename())
	}
	engine, ok := s.engine.TryGetResult()
	if !ok {
		client.LogDebugf("Waiting for the tag registry")
		if engine, ok = s.engine.GetResult(); !ok {
			return nil, fmt.Errorf("the tag registry is not available")
		}
	}

	text := doc.Snapshot()
	offset, err := text.Offset(params.Position)
	if err != nil {
		return nil, err
	}
	prefix := complete.WordBefore(text, offset, engine.Window())
	result := engine.Complete(complete.Request{
		Prefix:    prefix,
		Locations: []int{offset},
		Oracle:    NewOracle(text, engine.Window()),
		Buffer:    text,
	})
	client.LogDebugf("Completing %q at %d:%d: %d candidates",
		prefix, params.Position.Line, params.Position.Character, len(result.Candidates))
	return completionList(text, offset, prefix, result), nil
}

// completionList converts a result for the client. The client has no notion of
// suppressing its other completion sources, so a result that would suppress
// them is sent as complete, and any other result as incomplete: the client
// then asks again as typing continues.
func completionList(text *lsp.Text, offset int, prefix string, result complete.Result) *protocol.CompletionList {
	edit := protocol.Range{
		Start: text.Position(offset - len(prefix) - result.Replace),
		End:   text.Position(offset),
	}
	i := 0
	items := util.MapOver(result.Candidates, func(c complete.Candidate) protocol.CompletionItem {
		item := completionItem(c, edit)
		item.SortText = fmt.Sprintf("%05d", i)
		i++
		return item
	})
	return &protocol.CompletionList{
		IsIncomplete: !result.Flags.Has(complete.Inhibit),
		Items:        items,
	}
}

func completionItem(c complete.Candidate, edit protocol.Range) protocol.CompletionItem {
	name, hint, _ := strings.Cut(c.Label, "\t")
	kind := protocol.CompletionItemKindProperty
	switch hint {
	case "Tag":
		kind = protocol.CompletionItemKindClass
	case "":
		kind = protocol.CompletionItemKindSnippet
	}
	return protocol.CompletionItem{
		Label:            name,
		Detail:           hint,
		FilterText:       name,
		Kind:             kind,
		InsertTextFormat: protocol.InsertTextFormatSnippet,
		InsertTextMode:   protocol.InsertTextModeAsIs,
		TextEdit: &protocol.TextEdit{
			Range:   edit,
			NewText: c.Template,
		},
	}
}
