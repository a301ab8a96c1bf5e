package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"wikiterm/document"
	"wikiterm/markdown"
	"wikiterm/viewport"
)

// router sends local identifiers to the Markdown loader and everything
// else to the encyclopedia.
type router struct {
	local  document.Fetcher
	remote document.Fetcher
}

func (r *router) Fetch(ctx context.Context, identifier string) (*document.Document, error) {
	if markdown.IsLocal(identifier) {
		return r.local.Fetch(ctx, identifier)
	}
	return r.remote.Fetch(ctx, identifier)
}

// dispatcher runs navigation requests off the input loop. Starting a new
// request cancels the one in flight; its late response is dropped by the
// controller as stale.
type dispatcher struct {
	ctx       context.Context
	fetcher   document.Fetcher
	responses chan viewport.Response
	cancel    context.CancelFunc
	logger    *slog.Logger
}

func newDispatcher(ctx context.Context, f document.Fetcher, logger *slog.Logger) *dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &dispatcher{
		ctx:       ctx,
		fetcher:   f,
		responses: make(chan viewport.Response, 1),
		logger:    logger,
	}
}

func (d *dispatcher) dispatch(req viewport.NavigationRequest) {
	if d.cancel != nil {
		d.cancel()
	}
	ctx, cancel := context.WithCancel(d.ctx)
	d.cancel = cancel

	go func() {
		start := time.Now()
		doc, err := d.fetcher.Fetch(ctx, req.Identifier)
		d.logger.Debug("fetch finished", "id", req.ID, "identifier", req.Identifier, "duration", time.Since(start), "error", err)
		resp := viewport.Response{ID: req.ID, Document: doc, Err: err}
		if err != nil {
			resp.Document = nil
		}
		select {
		case d.responses <- resp:
		case <-d.ctx.Done():
		}
	}()
}

// stop cancels the request in flight.
func (d *dispatcher) stop() {
	if d.cancel != nil {
		d.cancel()
	}
}
