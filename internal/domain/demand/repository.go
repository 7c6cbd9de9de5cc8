package demand

import "context"

// FeatureRepository defines the interface for demand-feature persistence
type FeatureRepository interface {
	// FindAll returns the feature rows of every item
	FindAll(ctx context.Context) ([]Feature, error)

	// UpsertAll creates or replaces feature rows keyed by item identifier
	UpsertAll(ctx context.Context, features []Feature) error
}
