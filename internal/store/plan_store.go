package store

import (
	"context"

	"github.com/aliumairdev/saaskit/internal/domain"
	"gorm.io/gorm"
)

type PlanStore struct{ db *gorm.DB }

func (s *Store) Plans() *PlanStore { return &PlanStore{db: s.DB} }

func (p *PlanStore) ListVisible(ctx context.Context) ([]domain.Plan, error) {
	var plans []domain.Plan
	err := p.db.WithContext(ctx).
		Where("NOT hidden").
		Order("amount").
		Find(&plans).Error
	if err != nil {
		return nil, translate(err)
	}
	return plans, nil
}

func (p *PlanStore) GetByID(ctx context.Context, id domain.PlanID) (*domain.Plan, error) {
	var plan domain.Plan
	if err := p.db.WithContext(ctx).First(&plan, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &plan, nil
}
