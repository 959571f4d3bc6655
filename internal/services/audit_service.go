package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"mlmadmin/internal/models/db_models"
	resp "mlmadmin/internal/models/response_models"
	"mlmadmin/internal/repositories"
	"mlmadmin/pkg/utils"
)

type AuditEntry struct {
	ActorID    *uuid.UUID
	Action     string
	EntityType string
	EntityID   string
	IP         string
	Metadata   map[string]any
}

type AuditServiceInterface interface {
	// Record never fails the caller's request; write errors are logged.
	Record(ctx context.Context, entry AuditEntry)
	List(ctx context.Context, filter repositories.AuditFilter, page, pageSize int) ([]resp.AuditLogResponse, int64, error)
}

type AuditService struct {
	repo repositories.AuditRepository
}

func NewAuditService(repo repositories.AuditRepository) AuditServiceInterface {
	return &AuditService{repo: repo}
}

func (s *AuditService) Record(ctx context.Context, entry AuditEntry) {
	meta := []byte("{}")
	if len(entry.Metadata) > 0 {
		if b, err := json.Marshal(entry.Metadata); err == nil {
			meta = b
		}
	}

	err := s.repo.Insert(ctx, &db_models.AuditLog{
		ActorID:    entry.ActorID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		IP:         entry.IP,
		Metadata:   meta,
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"action":      entry.Action,
			"entity_type": entry.EntityType,
			"entity_id":   entry.EntityID,
		}).WithError(err).Error("write audit log")
	}
}

func (s *AuditService) List(ctx context.Context, filter repositories.AuditFilter, page, pageSize int) ([]resp.AuditLogResponse, int64, error) {
	rows, total, err := s.repo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, 0, utils.ErrDatabaseError
	}

	out := make([]resp.AuditLogResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, resp.AuditLogResponse{
			ID:         r.ID,
			ActorID:    r.ActorID,
			Action:     r.Action,
			EntityType: r.EntityType,
			EntityID:   r.EntityID,
			IP:         r.IP,
			Metadata:   []byte(r.Metadata),
			CreatedAt:  r.CreatedAt,
		})
	}
	return out, total, nil
}
