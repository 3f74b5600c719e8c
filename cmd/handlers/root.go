// Package handlers implements the pivotnote subcommands.
package handlers

import (
	"context"
	"fmt"

	"pivotnote/internal/config"
	"pivotnote/internal/llm"
	"pivotnote/internal/pipeline"
	"pivotnote/internal/prompts"
	"pivotnote/internal/store"
)

// appEnv bundles the wired application for one command invocation.
type appEnv struct {
	cfg     *config.Config
	store   *store.Store
	prompts *prompts.Store
	pipe    *pipeline.Pipeline
}

// buildEnv loads config and wires the store, prompt store and pipeline.
// needLLM controls whether a provider client is constructed; prompt-only
// commands work without an API key.
func buildEnv(ctx context.Context, needLLM bool) (*appEnv, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	st, err := store.NewStore(cfg.App.DataDir)
	if err != nil {
		return nil, nil, err
	}

	promptStore, err := prompts.NewStore(cfg.Prompts.Directory)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	env := &appEnv{cfg: cfg, store: st, prompts: promptStore}
	if needLLM {
		if err := env.withLLM(ctx); err != nil {
			st.Close()
			return nil, nil, err
		}
	}

	cleanup := func() { st.Close() }
	return env, cleanup, nil
}

// withLLM creates the provider client and wires the pipeline. Separate from
// buildEnv so prompt-only paths never demand an API key.
func (e *appEnv) withLLM(ctx context.Context) error {
	client, err := llm.NewClient(ctx, e.cfg)
	if err != nil {
		return fmt.Errorf("failed to create provider client: %w", err)
	}
	e.pipe = pipeline.New(e.cfg, e.store, e.prompts, client)
	return nil
}
