package repository

import (
	"context"
	"time"

	"github.com/vostuff/vostuff/internal/domain"
)

const (
	orgByIDKeyPrefix = "org:id:"
	orgCacheTTL      = 5 * time.Minute
)

// CachedOrganizationRepository wraps MongoOrganizationRepository with Redis
// caching for organization display reads. Membership lookups always go to
// the store: roles feed token issuance and must reflect current state.
type CachedOrganizationRepository struct {
	mongo *MongoOrganizationRepository
	cache domain.CacheRepository
}

// NewCachedOrganizationRepository creates a new cached organization repository
func NewCachedOrganizationRepository(mongo *MongoOrganizationRepository, cache domain.CacheRepository) *CachedOrganizationRepository {
	return &CachedOrganizationRepository{mongo: mongo, cache: cache}
}

// GetByID retrieves an organization with caching.
func (r *CachedOrganizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	key := orgByIDKeyPrefix + id

	var org domain.Organization
	if err := r.cache.Get(ctx, key, &org); err == nil {
		return &org, nil
	}

	result, err := r.mongo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Store in cache (ignore cache errors)
	_ = r.cache.Set(ctx, key, result, orgCacheTTL)

	return result, nil
}

func (r *CachedOrganizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	return r.mongo.Create(ctx, org)
}

func (r *CachedOrganizationRepository) AddMember(ctx context.Context, m *domain.Membership) error {
	return r.mongo.AddMember(ctx, m)
}

func (r *CachedOrganizationRepository) ListForUser(ctx context.Context, userID string) ([]*domain.MembershipView, error) {
	return r.mongo.ListForUser(ctx, userID)
}

func (r *CachedOrganizationRepository) FindMembership(ctx context.Context, userID, orgID string) (*domain.Membership, error) {
	return r.mongo.FindMembership(ctx, userID, orgID)
}
