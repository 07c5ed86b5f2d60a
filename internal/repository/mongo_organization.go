package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vostuff/vostuff/internal/domain"
)

// MongoOrganizationRepository implements domain.OrganizationRepository over
// two collections: organizations and memberships (the user<->org relation
// with its per-membership role set).
type MongoOrganizationRepository struct {
	orgs        *mongo.Collection
	memberships *mongo.Collection
}

func NewMongoOrganizationRepository(db *mongo.Database) *MongoOrganizationRepository {
	orgs := db.Collection("organizations")
	memberships := db.Collection("memberships")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// One membership per (user, org) pair.
	_, _ = memberships.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "organization_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "organization_id", Value: 1}}},
	})

	return &MongoOrganizationRepository{orgs: orgs, memberships: memberships}
}

func (r *MongoOrganizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	objID := primitive.NewObjectID()
	org.ID = objID.Hex()
	org.CreatedAt = time.Now()
	org.UpdatedAt = time.Now()

	doc := bson.M{
		"_id":         objID,
		"name":        org.Name,
		"description": org.Description,
		"created_at":  org.CreatedAt,
		"updated_at":  org.UpdatedAt,
	}
	if _, err := r.orgs.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

func (r *MongoOrganizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var raw bson.M
	if err := r.orgs.FindOne(ctx, bson.M{"_id": objID}).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return mapBsonToOrganization(raw), nil
}

func (r *MongoOrganizationRepository) AddMember(ctx context.Context, m *domain.Membership) error {
	objID := primitive.NewObjectID()
	m.ID = objID.Hex()
	m.CreatedAt = time.Now()

	roles := m.Roles
	if roles == nil {
		roles = []string{}
	}

	doc := bson.M{
		"_id":             objID,
		"user_id":         m.UserID,
		"organization_id": m.OrganizationID,
		"roles":           roles,
		"created_at":      m.CreatedAt,
	}
	if _, err := r.memberships.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// ListForUser joins the user's memberships with organization display data and
// returns them ordered by organization name, so any list a client renders is
// deterministic.
func (r *MongoOrganizationRepository) ListForUser(ctx context.Context, userID string) ([]*domain.MembershipView, error) {
	cursor, err := r.memberships.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer cursor.Close(ctx)

	rolesByOrg := make(map[string][]string)
	var orgIDs []primitive.ObjectID
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode membership: %w", err)
		}
		orgID := getString(raw, "organization_id")
		objID, err := primitive.ObjectIDFromHex(orgID)
		if err != nil {
			continue
		}
		rolesByOrg[orgID] = getStringSlice(raw, "roles")
		orgIDs = append(orgIDs, objID)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate memberships: %w", err)
	}

	views := []*domain.MembershipView{}
	if len(orgIDs) == 0 {
		return views, nil
	}

	orgCursor, err := r.orgs.Find(ctx, bson.M{"_id": bson.M{"$in": orgIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to load organizations: %w", err)
	}
	defer orgCursor.Close(ctx)

	for orgCursor.Next(ctx) {
		var raw bson.M
		if err := orgCursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode organization: %w", err)
		}
		org := mapBsonToOrganization(raw)
		views = append(views, &domain.MembershipView{
			OrganizationID: org.ID,
			Name:           org.Name,
			Description:    org.Description,
			Roles:          rolesByOrg[org.ID],
		})
	}
	if err := orgCursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate organizations: %w", err)
	}

	sort.Slice(views, func(i, j int) bool {
		if views[i].Name != views[j].Name {
			return views[i].Name < views[j].Name
		}
		return views[i].OrganizationID < views[j].OrganizationID
	})
	return views, nil
}

func (r *MongoOrganizationRepository) FindMembership(ctx context.Context, userID, orgID string) (*domain.Membership, error) {
	var raw bson.M
	err := r.memberships.FindOne(ctx, bson.M{"user_id": userID, "organization_id": orgID}).Decode(&raw)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}

	m := &domain.Membership{
		UserID:         getString(raw, "user_id"),
		OrganizationID: getString(raw, "organization_id"),
		Roles:          getStringSlice(raw, "roles"),
	}
	if objID, ok := raw["_id"].(primitive.ObjectID); ok {
		m.ID = objID.Hex()
	}
	if t, ok := raw["created_at"].(primitive.DateTime); ok {
		m.CreatedAt = t.Time()
	}
	return m, nil
}

func mapBsonToOrganization(raw bson.M) *domain.Organization {
	org := &domain.Organization{
		Name:        getString(raw, "name"),
		Description: getString(raw, "description"),
	}
	if objID, ok := raw["_id"].(primitive.ObjectID); ok {
		org.ID = objID.Hex()
	}
	if t, ok := raw["created_at"].(primitive.DateTime); ok {
		org.CreatedAt = t.Time()
	}
	if t, ok := raw["updated_at"].(primitive.DateTime); ok {
		org.UpdatedAt = t.Time()
	}
	return org
}

func getStringSlice(raw bson.M, key string) []string {
	arr, ok := raw[key].(primitive.A)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
