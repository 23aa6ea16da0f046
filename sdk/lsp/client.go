// Copyright 2022, Pulumi Corporation.  All rights reserved.

package lsp

import (
	"context"
	"fmt"

	"go.lsp.dev/protocol"
)

// Client represents a LSP client to a Server. It is passed to all methods and
// is used to post non-requested responses to the server.
type Client struct {
	inner protocol.Client
	ctx   context.Context
}

func (c *Client) logMessage(level protocol.MessageType, txt string) error {
	if c.inner == nil {
		// Not connected, which only happens when methods are driven directly.
		return nil
	}
	err := c.inner.LogMessage(c.ctx, &protocol.LogMessageParams{
		Message: txt,
		Type:    level,
	})

	if err != nil {
		err = c.inner.LogMessage(c.ctx, &protocol.LogMessageParams{
			Message: fmt.Sprintf(`Failed to send message "%s" at level %s: %s`,
				txt, level.String(), err.Error()),
			Type: protocol.MessageTypeError,
		})
	}
	return err
}

func (c *Client) LogErrorf(msg string, args ...interface{}) error {
	return c.logMessage(protocol.MessageTypeError, fmt.Sprintf(msg, args...))
}

func (c *Client) LogWarningf(msg string, args ...interface{}) error {
	return c.logMessage(protocol.MessageTypeWarning, fmt.Sprintf(msg, args...))
}

func (c *Client) LogInfof(msg string, args ...interface{}) error {
	return c.logMessage(protocol.MessageTypeInfo, fmt.Sprintf(msg, args...))
}

func (c *Client) LogDebugf(msg string, args ...interface{}) error {
	return c.logMessage(protocol.MessageTypeLog, fmt.Sprintf(msg, args...))
}

// NewClient creates a Client that is not attached to a connection. Log
// messages sent through it are dropped. It is meant for driving Methods
// outside of a running Server.
func NewClient(ctx context.Context) Client {
	return Client{ctx: ctx}
}
