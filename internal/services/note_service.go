package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mlmadmin/internal/models/db_models"
	resp "mlmadmin/internal/models/response_models"
	"mlmadmin/internal/repositories"
	"mlmadmin/pkg/utils"
)

type NoteServiceInterface interface {
	AddNote(ctx context.Context, authorID uuid.UUID, subjectMemberID *uuid.UUID, body string, pinned bool) (*resp.AdminNoteResponse, error)
	UpdateNote(ctx context.Context, id uuid.UUID, body string, pinned bool) (*resp.AdminNoteResponse, error)
	DeleteNote(ctx context.Context, id uuid.UUID) error
	GetNotes(ctx context.Context, subjectMemberID *uuid.UUID, page, pageSize int) ([]resp.AdminNoteResponse, int64, error)
}

type NoteService struct {
	noteRepo repositories.NoteRepositoryInterface
}

func NewNoteService(noteRepo repositories.NoteRepositoryInterface) NoteServiceInterface {
	return &NoteService{noteRepo: noteRepo}
}

func (s *NoteService) AddNote(ctx context.Context, authorID uuid.UUID, subjectMemberID *uuid.UUID, body string, pinned bool) (*resp.AdminNoteResponse, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, utils.ErrInvalidInput
	}

	note := &db_models.AdminNote{
		AuthorID:        authorID,
		SubjectMemberID: subjectMemberID,
		Body:            body,
		Pinned:          pinned,
	}
	if err := s.noteRepo.CreateNote(ctx, note); err != nil {
		return nil, utils.ErrDatabaseError
	}
	return toNoteResponse(note), nil
}

func (s *NoteService) UpdateNote(ctx context.Context, id uuid.UUID, body string, pinned bool) (*resp.AdminNoteResponse, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, utils.ErrInvalidInput
	}

	note, err := s.noteRepo.FindNote(ctx, id)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if note == nil {
		return nil, utils.RecordNotFound
	}

	note.Body = body
	note.Pinned = pinned
	if err := s.noteRepo.SaveNote(ctx, note); err != nil {
		return nil, utils.ErrDatabaseError
	}
	return toNoteResponse(note), nil
}

func (s *NoteService) DeleteNote(ctx context.Context, id uuid.UUID) error {
	if err := s.noteRepo.DeleteNote(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.RecordNotFound
		}
		return utils.ErrDatabaseError
	}
	return nil
}

func (s *NoteService) GetNotes(ctx context.Context, subjectMemberID *uuid.UUID, page, pageSize int) ([]resp.AdminNoteResponse, int64, error) {
	notes, total, err := s.noteRepo.ListNotes(ctx, subjectMemberID, page, pageSize)
	if err != nil {
		return nil, 0, utils.ErrDatabaseError
	}

	out := make([]resp.AdminNoteResponse, 0, len(notes))
	for i := range notes {
		out = append(out, *toNoteResponse(&notes[i]))
	}
	return out, total, nil
}

func toNoteResponse(n *db_models.AdminNote) *resp.AdminNoteResponse {
	return &resp.AdminNoteResponse{
		ID:              n.ID,
		AuthorID:        n.AuthorID,
		SubjectMemberID: n.SubjectMemberID,
		Body:            n.Body,
		Pinned:          n.Pinned,
		CreatedAt:       n.CreatedAt,
		UpdatedAt:       n.UpdatedAt,
	}
}
