// Copyright 2022, Pulumi Corporation.  All rights reserved.

package lsp

import (
	"context"
	"fmt"

	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"
	"github.com/segmentio/encoding/json"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

// Methods provides the interface to define methods for the LSP server. Only the
// requests a completion server answers can be hooked; every other request is
// logged and answered with an empty result.
type Methods struct {
	// A pointer back to the server
	server *Server
	// And a channel to indicate that the server has exited
	closer chan<- struct{}

	InitializeFunc  func(client Client, params *protocol.InitializeParams) (result *protocol.InitializeResult, err error)
	InitializedFunc func(client Client, params *protocol.InitializedParams) (err error)
	ShutdownFunc    func(client Client) (err error)
	ExitFunc        func(client Client) (err error)
	CompletionFunc  func(client Client, params *protocol.CompletionParams) (result *protocol.CompletionList, err error)
	DidChangeFunc   func(client Client, params *DidChangeParams) (err error)
	DidCloseFunc    func(client Client, params *protocol.DidCloseTextDocumentParams) (err error)
	DidOpenFunc     func(client Client, params *protocol.DidOpenTextDocumentParams) (err error)
}

// DidChangeParams are the parameters of a didChange notification. Unlike
// protocol.DidChangeTextDocumentParams, they tell a change that replaces the
// whole document apart from an insertion at the start of it.
type DidChangeParams struct {
	TextDocument   protocol.VersionedTextDocumentIdentifier `json:"textDocument"`
	ContentChanges []TextChange                             `json:"contentChanges"`
}

// Guess what capabilities should be enabled from what functions are registered.
// The trigger characters are advertised to the client when completion is
// provided.
//
// This function will panic if a `InitializeFunc` is already set.
func (m Methods) DefaultInitializer(name, version string, triggers ...string) *Methods {
	contract.Assertf(m.InitializeFunc == nil, "Won't override an already set initializer")
	m.InitializeFunc = func(client Client, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
		var completion *protocol.CompletionOptions
		if m.CompletionFunc != nil {
			completion = &protocol.CompletionOptions{
				TriggerCharacters: triggers,
			}
		}
		return &protocol.InitializeResult{
			Capabilities: protocol.ServerCapabilities{
				TextDocumentSync: &protocol.TextDocumentSyncOptions{
					OpenClose: m.DidOpenFunc != nil || m.DidCloseFunc != nil,
					Change:    protocol.TextDocumentSyncKindIncremental,
					Save: &protocol.SaveOptions{
						IncludeText: false,
					},
				},
				CompletionProvider: completion,
			},
			ServerInfo: &protocol.ServerInfo{
				Name:    name,
				Version: version,
			},
		}, nil
	}
	return &m
}

func (m *methods) client(ctx context.Context) Client {
	return Client{
		inner: m.server.client,
		ctx:   ctx,
	}
}

func (m *Methods) serve() *methods {
	return &methods{m}
}

// The actual implementer of the protocol.Server trait. We do this to prevent
// calling a method on `Methods`, and to keep auto-complete uncluttered.
type methods struct {
	*Methods
}

var _ protocol.Server = (*methods)(nil)

func (m *methods) warnUninitialized(name string) {
	m.server.Logger.Debugf("'%s' was called but no handler was provided", name)
}

func (m *methods) Initialize(ctx context.Context, params *protocol.InitializeParams) (result *protocol.InitializeResult, err error) {
	if m.InitializeFunc != nil {
		result, err = m.InitializeFunc(m.client(ctx), params)
	} else {
		m.warnUninitialized("initialize")
	}
	m.server.isInitialized = true
	return
}
func (m *methods) Initialized(ctx context.Context, params *protocol.InitializedParams) (err error) {
	if m.InitializedFunc != nil {
		err = m.InitializedFunc(m.client(ctx), params)
	} else {
		m.warnUninitialized("initialized")
	}
	return
}
func (m *methods) Shutdown(ctx context.Context) (err error) {
	if m.ShutdownFunc != nil {
		err = m.ShutdownFunc(m.client(ctx))
	} else {
		m.warnUninitialized("shutdown")
	}
	return
}
func (m *methods) Exit(ctx context.Context) (err error) {
	if m.ExitFunc != nil {
		err = m.ExitFunc(m.client(ctx))
	} else {
		m.warnUninitialized("exit")
	}
	m.closer <- struct{}{}
	return
}
func (m *methods) Completion(ctx context.Context, params *protocol.CompletionParams) (result *protocol.CompletionList, err error) {
	if m.CompletionFunc != nil {
		result, err = m.CompletionFunc(m.client(ctx), params)
	} else {
		m.warnUninitialized("completion")
	}
	return
}

// didChange handles didChange notifications before the protocol package
// decodes them, so that changes without a range stay recognizable.
func (m *methods) didChange(next jsonrpc2.Handler) jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		if req.Method() != protocol.MethodTextDocumentDidChange {
			return next(ctx, reply, req)
		}
		var params DidChangeParams
		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, fmt.Errorf("%s: %w", jsonrpc2.ErrParse, err))
		}
		return reply(ctx, nil, m.acceptChanges(ctx, &params))
	}
}

func (m *methods) acceptChanges(ctx context.Context, params *DidChangeParams) (err error) {
	if m.DidChangeFunc != nil {
		err = m.DidChangeFunc(m.client(ctx), params)
	} else {
		m.warnUninitialized("didChange")
	}
	return
}

// DidChange is only reached when a notification bypasses the didChange
// handler. Every change is then taken to carry its range.
func (m *methods) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	changes := make([]TextChange, len(params.ContentChanges))
	for i, change := range params.ContentChanges {
		r := change.Range
		changes[i] = TextChange{Range: &r, Text: change.Text}
	}
	return m.acceptChanges(ctx, &DidChangeParams{
		TextDocument:   params.TextDocument,
		ContentChanges: changes,
	})
}
func (m *methods) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) (err error) {
	if m.DidCloseFunc != nil {
		err = m.DidCloseFunc(m.client(ctx), params)
	} else {
		m.warnUninitialized("didClose")
	}
	return
}
func (m *methods) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) (err error) {
	if m.DidOpenFunc != nil {
		err = m.DidOpenFunc(m.client(ctx), params)
	} else {
		m.warnUninitialized("didOpen")
	}
	return
}

// Requests below are never hooked by a completion server.

func (m *methods) Hover(context.Context, *protocol.HoverParams) (*protocol.Hover, error) {
	m.warnUninitialized("hover")
	return nil, nil
}
func (m *methods) DidSave(context.Context, *protocol.DidSaveTextDocumentParams) error {
	m.warnUninitialized("didSave")
	return nil
}
func (m *methods) CompletionResolve(context.Context, *protocol.CompletionItem) (*protocol.CompletionItem, error) {
	m.warnUninitialized("completionResolve")
	return nil, nil
}
func (m *methods) SetTrace(context.Context, *protocol.SetTraceParams) error {
	m.warnUninitialized("setTrace")
	return nil
}
func (m *methods) WorkDoneProgressCancel(context.Context, *protocol.WorkDoneProgressCancelParams) error {
	m.warnUninitialized("workDoneProgressCancel")
	return nil
}
func (m *methods) LogTrace(context.Context, *protocol.LogTraceParams) error {
	m.warnUninitialized("logTrace")
	return nil
}
func (m *methods) CodeAction(context.Context, *protocol.CodeActionParams) ([]protocol.CodeAction, error) {
	m.warnUninitialized("codeAction")
	return nil, nil
}
func (m *methods) CodeLens(context.Context, *protocol.CodeLensParams) ([]protocol.CodeLens, error) {
	m.warnUninitialized("codeLens")
	return nil, nil
}
func (m *methods) CodeLensResolve(context.Context, *protocol.CodeLens) (*protocol.CodeLens, error) {
	m.warnUninitialized("codeLensResolve")
	return nil, nil
}
func (m *methods) ColorPresentation(context.Context, *protocol.ColorPresentationParams) ([]protocol.ColorPresentation, error) {
	m.warnUninitialized("colorPresentation")
	return nil, nil
}
func (m *methods) Declaration(context.Context, *protocol.DeclarationParams) ([]protocol.Location, error) {
	m.warnUninitialized("declaration")
	return nil, nil
}
func (m *methods) Definition(context.Context, *protocol.DefinitionParams) ([]protocol.Location, error) {
	m.warnUninitialized("definition")
	return nil, nil
}
func (m *methods) DidChangeConfiguration(context.Context, *protocol.DidChangeConfigurationParams) error {
	m.warnUninitialized("didChangeConfiguration")
	return nil
}
func (m *methods) DidChangeWatchedFiles(context.Context, *protocol.DidChangeWatchedFilesParams) error {
	m.warnUninitialized("didChangeWatchedFiles")
	return nil
}
func (m *methods) DidChangeWorkspaceFolders(context.Context, *protocol.DidChangeWorkspaceFoldersParams) error {
	m.warnUninitialized("didChangeWorkspaceFolders")
	return nil
}
func (m *methods) DocumentColor(context.Context, *protocol.DocumentColorParams) ([]protocol.ColorInformation, error) {
	m.warnUninitialized("documentColor")
	return nil, nil
}
func (m *methods) DocumentHighlight(context.Context, *protocol.DocumentHighlightParams) ([]protocol.DocumentHighlight, error) {
	m.warnUninitialized("documentHighlight")
	return nil, nil
}
func (m *methods) DocumentLink(context.Context, *protocol.DocumentLinkParams) ([]protocol.DocumentLink, error) {
	m.warnUninitialized("documentLink")
	return nil, nil
}
func (m *methods) DocumentLinkResolve(context.Context, *protocol.DocumentLink) (*protocol.DocumentLink, error) {
	m.warnUninitialized("documentLinkResolve")
	return nil, nil
}
func (m *methods) DocumentSymbol(context.Context, *protocol.DocumentSymbolParams) ([]interface{}, error) {
	m.warnUninitialized("documentSymbol")
	return nil, nil
}
func (m *methods) ExecuteCommand(context.Context, *protocol.ExecuteCommandParams) (interface{}, error) {
	m.warnUninitialized("executeCommand")
	return nil, nil
}
func (m *methods) FoldingRanges(context.Context, *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	m.warnUninitialized("foldingRanges")
	return nil, nil
}
func (m *methods) Formatting(context.Context, *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	m.warnUninitialized("formatting")
	return nil, nil
}
func (m *methods) Implementation(context.Context, *protocol.ImplementationParams) ([]protocol.Location, error) {
	m.warnUninitialized("implementation")
	return nil, nil
}
func (m *methods) OnTypeFormatting(context.Context, *protocol.DocumentOnTypeFormattingParams) ([]protocol.TextEdit, error) {
	m.warnUninitialized("onTypeFormatting")
	return nil, nil
}
func (m *methods) PrepareRename(context.Context, *protocol.PrepareRenameParams) (*protocol.Range, error) {
	m.warnUninitialized("prepareRename")
	return nil, nil
}
func (m *methods) RangeFormatting(context.Context, *protocol.DocumentRangeFormattingParams) ([]protocol.TextEdit, error) {
	m.warnUninitialized("rangeFormatting")
	return nil, nil
}
func (m *methods) References(context.Context, *protocol.ReferenceParams) ([]protocol.Location, error) {
	m.warnUninitialized("references")
	return nil, nil
}
func (m *methods) Rename(context.Context, *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	m.warnUninitialized("rename")
	return nil, nil
}
func (m *methods) SignatureHelp(context.Context, *protocol.SignatureHelpParams) (*protocol.SignatureHelp, error) {
	m.warnUninitialized("signatureHelp")
	return nil, nil
}
func (m *methods) Symbols(context.Context, *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	m.warnUninitialized("symbols")
	return nil, nil
}
func (m *methods) TypeDefinition(context.Context, *protocol.TypeDefinitionParams) ([]protocol.Location, error) {
	m.warnUninitialized("typeDefinition")
	return nil, nil
}
func (m *methods) WillSave(context.Context, *protocol.WillSaveTextDocumentParams) error {
	m.warnUninitialized("willSave")
	return nil
}
func (m *methods) WillSaveWaitUntil(context.Context, *protocol.WillSaveTextDocumentParams) ([]protocol.TextEdit, error) {
	m.warnUninitialized("willSaveWaitUntil")
	return nil, nil
}
func (m *methods) ShowDocument(context.Context, *protocol.ShowDocumentParams) (*protocol.ShowDocumentResult, error) {
	m.warnUninitialized("showDocument")
	return nil, nil
}
func (m *methods) WillCreateFiles(context.Context, *protocol.CreateFilesParams) (*protocol.WorkspaceEdit, error) {
	m.warnUninitialized("willCreateFiles")
	return nil, nil
}
func (m *methods) DidCreateFiles(context.Context, *protocol.CreateFilesParams) error {
	m.warnUninitialized("didCreateFiles")
	return nil
}
func (m *methods) WillRenameFiles(context.Context, *protocol.RenameFilesParams) (*protocol.WorkspaceEdit, error) {
	m.warnUninitialized("willRenameFiles")
	return nil, nil
}
func (m *methods) DidRenameFiles(context.Context, *protocol.RenameFilesParams) error {
	m.warnUninitialized("didRenameFiles")
	return nil
}
func (m *methods) WillDeleteFiles(context.Context, *protocol.DeleteFilesParams) (*protocol.WorkspaceEdit, error) {
	m.warnUninitialized("willDeleteFiles")
	return nil, nil
}
func (m *methods) DidDeleteFiles(context.Context, *protocol.DeleteFilesParams) error {
	m.warnUninitialized("didDeleteFiles")
	return nil
}
func (m *methods) CodeLensRefresh(context.Context) error {
	m.warnUninitialized("codeLensRefresh")
	return nil
}
func (m *methods) PrepareCallHierarchy(context.Context, *protocol.CallHierarchyPrepareParams) ([]protocol.CallHierarchyItem, error) {
	m.warnUninitialized("prepareCallHierarchy")
	return nil, nil
}
func (m *methods) IncomingCalls(context.Context, *protocol.CallHierarchyIncomingCallsParams) ([]protocol.CallHierarchyIncomingCall, error) {
	m.warnUninitialized("incomingCalls")
	return nil, nil
}
func (m *methods) OutgoingCalls(context.Context, *protocol.CallHierarchyOutgoingCallsParams) ([]protocol.CallHierarchyOutgoingCall, error) {
	m.warnUninitialized("outgoingCalls")
	return nil, nil
}
func (m *methods) SemanticTokensFull(context.Context, *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	m.warnUninitialized("semanticTokensFull")
	return nil, nil
}
func (m *methods) SemanticTokensFullDelta(context.Context, *protocol.SemanticTokensDeltaParams) (interface{}, error) {
	m.warnUninitialized("semanticTokensFullDelta")
	return nil, nil
}
func (m *methods) SemanticTokensRange(context.Context, *protocol.SemanticTokensRangeParams) (*protocol.SemanticTokens, error) {
	m.warnUninitialized("semanticTokensRange")
	return nil, nil
}
func (m *methods) SemanticTokensRefresh(context.Context) error {
	m.warnUninitialized("semanticTokensRefresh")
	return nil
}
func (m *methods) LinkedEditingRange(context.Context, *protocol.LinkedEditingRangeParams) (*protocol.LinkedEditingRanges, error) {
	m.warnUninitialized("linkedEditingRange")
	return nil, nil
}
func (m *methods) Moniker(context.Context, *protocol.MonikerParams) ([]protocol.Moniker, error) {
	m.warnUninitialized("moniker")
	return nil, nil
}
func (m *methods) Request(ctx context.Context, method string, params interface{}) (interface{}, error) {
	m.warnUninitialized(method)
	return nil, nil
}
