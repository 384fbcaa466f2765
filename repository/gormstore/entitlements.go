package gormstore

import (
	"context"

	"go-market-backend/models"
)

func (s *Store) CreateEntitlement(ctx context.Context, ent *models.Entitlement) error {
	return translateError(s.db.WithContext(ctx).Create(ent).Error)
}

func (s *Store) GetEntitlement(ctx context.Context, userID, productID string) (*models.Entitlement, error) {
	var ent models.Entitlement
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&ent).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &ent, nil
}

func (s *Store) ListEntitlementsByUser(ctx context.Context, userID string) ([]models.Entitlement, error) {
	var ents []models.Entitlement
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("granted_at DESC").Find(&ents).Error
	if err != nil {
		return nil, translateError(err)
	}
	return ents, nil
}

func (s *Store) RecordDownload(ctx context.Context, event *models.DownloadEvent) error {
	return translateError(s.db.WithContext(ctx).Create(event).Error)
}
