package filestructure

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/CodeIvet/patanaa/internal/model"
)

// gormStore loads reconciler input from Postgres.
type gormStore struct {
	db *gorm.DB
}

// NewStore wraps a GORM connection as a reconciler Store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) BoardMeeting(ctx context.Context, id int64) (*model.BoardMeeting, error) {
	var meeting model.BoardMeeting
	err := s.db.WithContext(ctx).First(&meeting, `"ID" = ?`, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &meeting, nil
}

func (s *gormStore) AgendaItems(ctx context.Context, meetingID int64) ([]model.AgendaItem, error) {
	var items []model.AgendaItem
	err := s.db.WithContext(ctx).
		Where(`"BoardMeeting" = ?`, meetingID).
		Order(`"OrderIndex" ASC`).
		Find(&items).Error
	return items, err
}

func (s *gormStore) OrphanedAgendaItems(ctx context.Context) ([]model.AgendaItem, error) {
	var items []model.AgendaItem
	err := s.db.WithContext(ctx).
		Where(`"BoardMeeting" IS NULL`).
		Find(&items).Error
	return items, err
}
