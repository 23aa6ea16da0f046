// Copyright 2022, Pulumi Corporation.  All rights reserved.

// The lsp package implements a convenience wrapper around the
// go.lsp.dev/protocol package. It handles setting up a server that replies to
// only some lsp requests, as well as providing other helpful LSP intrinsics.

package lsp

import (
	"context"
	"io"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

// A Server combines a set of LSP methods with the infrastructure needed to
// fullfill the server side of the LSP contract.
type Server struct {
	methods       *Methods
	conn          io.ReadWriteCloser
	cancel        <-chan struct{}
	isInitialized bool
	client        protocol.Client

	// The logger used by the server.
	Logger *zap.SugaredLogger
}

// Create a new server backed by `Methods`. The server reads requests and writes
// responses via `conn`.
func NewServer(methods *Methods, conn io.ReadWriteCloser) Server {
	return Server{
		methods: methods,
		conn:    conn,
	}
}

// Synchronously run the server. The server is rooted in the given context,
// which can be used to cancel the server. Run returns once the client asks the
// server to exit or the connection is closed.
func (s *Server) Run(ctx context.Context) error {
	if s.Logger == nil {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		s.Logger = logger.Sugar()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	conn := s.run(ctx)
	select {
	case <-s.cancel:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-conn.Done():
		return conn.Err()
	}
}

// Actually kick off the server
func (s *Server) run(ctx context.Context) jsonrpc2.Conn {
	closer := make(chan struct{})

	s.cancel = closer
	s.methods.server = s
	s.methods.closer = closer

	logger := s.Logger.Desugar()
	conn := jsonrpc2.NewConn(jsonrpc2.NewStream(s.conn))
	client := protocol.ClientDispatcher(conn, logger.Named("client"))
	ctx = protocol.WithClient(ctx, client)
	ctx = protocol.WithLogger(ctx, logger)
	srv := s.methods.serve()
	conn.Go(ctx, protocol.Handlers(
		srv.didChange(protocol.ServerHandler(srv, jsonrpc2.MethodNotFoundHandler))))
	s.client = client
	return conn
}
