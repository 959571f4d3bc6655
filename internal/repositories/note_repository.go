package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mlmadmin/internal/models/db_models"
)

type NoteRepositoryInterface interface {
	CreateNote(ctx context.Context, note *db_models.AdminNote) error
	FindNote(ctx context.Context, id uuid.UUID) (*db_models.AdminNote, error)
	SaveNote(ctx context.Context, note *db_models.AdminNote) error
	DeleteNote(ctx context.Context, id uuid.UUID) error
	ListNotes(ctx context.Context, subjectMemberID *uuid.UUID, page, pageSize int) ([]db_models.AdminNote, int64, error)
}

type NoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) CreateNote(ctx context.Context, note *db_models.AdminNote) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *NoteRepository) FindNote(ctx context.Context, id uuid.UUID) (*db_models.AdminNote, error) {
	var note db_models.AdminNote
	err := r.db.WithContext(ctx).First(&note, "id = ?", id).Error
	return notFoundAsNil(&note, err)
}

func (r *NoteRepository) SaveNote(ctx context.Context, note *db_models.AdminNote) error {
	return r.db.WithContext(ctx).Save(note).Error
}

func (r *NoteRepository) DeleteNote(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&db_models.AdminNote{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListNotes returns pinned notes first, newest first within each group.
func (r *NoteRepository) ListNotes(ctx context.Context, subjectMemberID *uuid.UUID, page, pageSize int) ([]db_models.AdminNote, int64, error) {
	q := r.db.WithContext(ctx).Model(&db_models.AdminNote{})
	if subjectMemberID != nil {
		q = q.Where("subject_member_id = ?", *subjectMemberID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notes []db_models.AdminNote
	err := q.Limit(pageSize).
		Offset((page - 1) * pageSize).
		Order("pinned DESC").
		Order("created_at DESC").
		Find(&notes).Error
	return notes, total, err
}
