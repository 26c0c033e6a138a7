package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nurtura-health/nurtura-backend/internal/database"
)

const (
	AdminAuditCollection     = "admin_audit_logs"
	TherapistAuditCollection = "therapist_audit_logs"
)

// AuditEntry is one append-only action record. Entries are never mutated or
// deleted; there is no update path anywhere in the codebase.
type AuditEntry struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ActorID    string             `bson:"actor_id" json:"actor_id"`
	ActionType string             `bson:"action_type" json:"action_type"`
	TargetType string             `bson:"target_type" json:"target_type"`
	TargetID   string             `bson:"target_id" json:"target_id"`
	Details    bson.M             `bson:"details,omitempty" json:"details,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}

// EnsureAuditIndexes configures indexes for the audit collections.
// Called on startup from main after Mongo has connected.
func EnsureAuditIndexes(ctx context.Context) error {
	for _, name := range []string{AdminAuditCollection, TherapistAuditCollection} {
		col := database.MongoDB.Collection(name)
		models := []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_created_at"),
			},
			{
				Keys: bson.D{
					{Key: "target_type", Value: 1},
					{Key: "target_id", Value: 1},
				},
				Options: options.Index().SetName("idx_target"),
			},
		}
		for _, m := range models {
			if _, err := col.Indexes().CreateOne(ctx, m); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordAdminAction appends an entry to the admin audit log.
func RecordAdminAction(ctx context.Context, actorID uuid.UUID, actionType, targetType, targetID string, details bson.M) error {
	return record(ctx, AdminAuditCollection, actorID, actionType, targetType, targetID, details)
}

// RecordTherapistAction appends an entry to the therapist audit log.
func RecordTherapistAction(ctx context.Context, actorID uuid.UUID, actionType, targetType, targetID string, details bson.M) error {
	return record(ctx, TherapistAuditCollection, actorID, actionType, targetType, targetID, details)
}

func record(ctx context.Context, collection string, actorID uuid.UUID, actionType, targetType, targetID string, details bson.M) error {
	entry := AuditEntry{
		ActorID:    actorID.String(),
		ActionType: actionType,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	}
	_, err := database.MongoDB.Collection(collection).InsertOne(ctx, entry)
	return err
}

// LoadAuditEntries returns paginated audit history, newest first. before
// narrows the page for infinite scrolling; targetType/targetID filter when
// non-empty.
func LoadAuditEntries(ctx context.Context, collection string, targetType, targetID string, before *time.Time, limit int64) ([]AuditEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	filter := bson.M{}
	if targetType != "" {
		filter["target_type"] = targetType
	}
	if targetID != "" {
		filter["target_id"] = targetID
	}
	if before != nil {
		filter["created_at"] = bson.M{"$lt": *before}
	}

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(limit)

	cursor, err := database.MongoDB.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []AuditEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
