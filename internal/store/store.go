// Package store defines the audit store interface and its SQLite
// implementation. The audit trail records accepted incidents and completed
// dispatches for observability; the registry itself stays in memory.
package store

import (
	"context"

	"github.com/acsgmao/mcp/internal/domain"
)

// Store defines the interface for audit persistence.
type Store interface {
	// Incident tracking
	CreateIncident(ctx context.Context, rec *domain.IncidentRecord) error
	GetIncident(ctx context.Context, trackingID string) (*domain.IncidentRecord, error)
	UpdateIncidentStatus(ctx context.Context, trackingID string, status domain.IncidentStatus, attempts int, lastError string) error

	// Dispatch log
	CreateDispatch(ctx context.Context, rec *domain.DispatchRecord) error
	GetDispatch(ctx context.Context, messageID string) (*domain.DispatchRecord, error)

	// Lifecycle
	Close() error
}
