package response_models

import (
	"encoding/json"

	"github.com/google/uuid"
)

type AuditLogResponse struct {
	ID         uuid.UUID       `json:"id"`
	ActorID    *uuid.UUID      `json:"actor_id,omitempty"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	IP         string          `json:"ip"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	CreatedAt  int64           `json:"created_at"`
}

type AdminNoteResponse struct {
	ID              uuid.UUID  `json:"id"`
	AuthorID        uuid.UUID  `json:"author_id"`
	SubjectMemberID *uuid.UUID `json:"subject_member_id,omitempty"`
	Body            string     `json:"body"`
	Pinned          bool       `json:"pinned"`
	CreatedAt       int64      `json:"created_at"`
	UpdatedAt       int64      `json:"updated_at"`
}
