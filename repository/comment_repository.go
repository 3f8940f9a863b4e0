package repository

import (
	"errors"
	"fmt"

	"musewave/model"

	"gorm.io/gorm"
)

// CommentRepository covers track comments. Implemented on GORM alongside the
// playlist module.
type CommentRepository interface {
	CreateComment(comment *model.Comment) (int64, error)
	GetCommentByID(id int64) (*model.Comment, error)
	ListCommentsByTrack(trackID int64) ([]*model.Comment, error)
	DeleteComment(id int64) error
}

type gormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new gormCommentRepository.
func NewGormCommentRepository(db *gorm.DB) CommentRepository {
	return &gormCommentRepository{db: db}
}

func (r *gormCommentRepository) CreateComment(comment *model.Comment) (int64, error) {
	if err := r.db.Create(comment).Error; err != nil {
		return 0, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment.ID, nil
}

func (r *gormCommentRepository) GetCommentByID(id int64) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load comment %d: %w", id, err)
	}
	return &comment, nil
}

func (r *gormCommentRepository) ListCommentsByTrack(trackID int64) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.Where("track_id = ?", trackID).Order("created_at DESC").Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments for track %d: %w", trackID, err)
	}
	return comments, nil
}

func (r *gormCommentRepository) DeleteComment(id int64) error {
	res := r.db.Delete(&model.Comment{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete comment %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
