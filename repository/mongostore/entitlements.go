package mongostore

import (
	"context"

	"go-market-backend/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) CreateEntitlement(ctx context.Context, ent *models.Entitlement) error {
	_, err := s.entitlements().InsertOne(ctx, ent)
	return translateError(err)
}

func (s *Store) GetEntitlement(ctx context.Context, userID, productID string) (*models.Entitlement, error) {
	var ent models.Entitlement
	err := s.entitlements().FindOne(ctx, bson.M{"userId": userID, "productId": productID}).Decode(&ent)
	if err != nil {
		return nil, translateError(err)
	}
	return &ent, nil
}

func (s *Store) ListEntitlementsByUser(ctx context.Context, userID string) ([]models.Entitlement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "grantedAt", Value: -1}})
	cur, err := s.entitlements().Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, translateError(err)
	}
	var ents []models.Entitlement
	if err := cur.All(ctx, &ents); err != nil {
		return nil, translateError(err)
	}
	return ents, nil
}

func (s *Store) RecordDownload(ctx context.Context, event *models.DownloadEvent) error {
	_, err := s.downloads().InsertOne(ctx, event)
	return translateError(err)
}
