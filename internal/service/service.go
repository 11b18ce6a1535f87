// Package service wires the registry, dispatcher, audit store, admission
// policy and callback notifier together behind the transport layer.
package service

import (
	"sync"

	"github.com/acsgmao/mcp/internal/adapter/callback"
	"github.com/acsgmao/mcp/internal/config"
	"github.com/acsgmao/mcp/internal/dispatch"
	"github.com/acsgmao/mcp/internal/registry"
	"github.com/acsgmao/mcp/internal/store"
	"github.com/acsgmao/mcp/policy"
)

// Service implements the MCP operations.
type Service struct {
	registry   *registry.Registry
	dispatcher *dispatch.Dispatcher
	store      store.Store
	notifier   *callback.Client
	policy     *policy.Engine
	cfg        *config.Config

	// in-flight asynchronous forwards, waited on during shutdown
	forwards sync.WaitGroup
}

// New creates the service.
func New(reg *registry.Registry, disp *dispatch.Dispatcher, st store.Store, notifier *callback.Client, engine *policy.Engine, cfg *config.Config) *Service {
	return &Service{
		registry:   reg,
		dispatcher: disp,
		store:      st,
		notifier:   notifier,
		policy:     engine,
		cfg:        cfg,
	}
}

// Registry exposes the agent registry to the transport layer.
func (s *Service) Registry() *registry.Registry {
	return s.registry
}

// Store exposes the audit store to the transport layer.
func (s *Service) Store() store.Store {
	return s.store
}

// Config exposes the loaded configuration.
func (s *Service) Config() *config.Config {
	return s.cfg
}

// Drain blocks until all in-flight asynchronous forwards complete.
func (s *Service) Drain() {
	s.forwards.Wait()
}
