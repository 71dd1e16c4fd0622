package triage

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists triage records.
type Repository interface {
	Create(ctx context.Context, r *TriageRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*TriageRecord, error)
	GetByIDIncludeDeleted(ctx context.Context, id uuid.UUID) (*TriageRecord, error)
	Update(ctx context.Context, r *TriageRecord) error
	SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*TriageRecord, int, error)
	// ListByLevel returns non-deleted records at the given acuity, most
	// recent first.
	ListByLevel(ctx context.Context, level, limit, offset int) ([]*TriageRecord, int, error)
}
