package mongodb

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/vendorrisk/golang_services/internal/campaign_service/domain"
	"github.com/vendorrisk/golang_services/internal/campaign_service/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AuditLogCollection is the collection holding the activity trail.
const AuditLogCollection = "auditLogs"

type auditLogDocument struct {
	TenantID    string    `bson:"tenantId"`
	EntityName  string    `bson:"entityName"`
	EntityID    string    `bson:"entityId"`
	Action      string    `bson:"action"`
	Values      any       `bson:"values,omitempty"`
	CreatedByID string    `bson:"createdById"`
	Timestamp   time.Time `bson:"timestamp"`
}

type auditLogRepository struct {
	coll *mongo.Collection
}

// NewAuditLogRepository stores audit entries in coll.
func NewAuditLogRepository(coll *mongo.Collection) repository.AuditLogRepository {
	return &auditLogRepository{coll: coll}
}

// EnsureIndexes creates the lookup index used by the activity screens.
func EnsureIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "entityName", Value: 1}, {Key: "entityId", Value: 1}, {Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("tenant_entity_timestamp"),
	})
	return err
}

func (r *auditLogRepository) Log(ctx context.Context, entry domain.AuditLog) error {
	values, err := documentValues(entry.Values)
	if err != nil {
		return err
	}
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	doc := auditLogDocument{
		TenantID:    entry.TenantID.String(),
		EntityName:  entry.EntityName,
		EntityID:    entry.EntityID.String(),
		Action:      string(entry.Action),
		Values:      values,
		CreatedByID: entry.CreatedByID.String(),
		Timestamp:   ts.UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// documentValues stores values with their JSON field names rather than the
// driver's default lowercased Go field names.
func documentValues(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode audit values: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode audit values: %w", err)
	}
	return out, nil
}

type logAuditLogRepository struct {
	logger *slog.Logger
}

// NewLogAuditLogRepository writes audit entries to the service log. It is used
// when no MongoDB URI is configured.
func NewLogAuditLogRepository(logger *slog.Logger) repository.AuditLogRepository {
	return &logAuditLogRepository{logger: logger.With("component", "audit_log")}
}

func (r *logAuditLogRepository) Log(ctx context.Context, entry domain.AuditLog) error {
	r.logger.InfoContext(ctx, "audit",
		"tenant_id", entry.TenantID,
		"entity", entry.EntityName,
		"entity_id", entry.EntityID,
		"action", entry.Action,
		"created_by", entry.CreatedByID,
	)
	return nil
}
