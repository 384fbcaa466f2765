package mongostore

import (
	"context"
	"regexp"
	"sort"

	"go-market-backend/models"
	"go-market-backend/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	_, err := s.products().InsertOne(ctx, product)
	return translateError(err)
}

func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	res, err := s.products().ReplaceOne(ctx, bson.M{"_id": product.ID}, product)
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.products().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translateError(err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.findProduct(ctx, bson.M{"_id": id})
}

func (s *Store) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return s.findProduct(ctx, bson.M{"slug": slug})
}

func (s *Store) findProduct(ctx context.Context, filter bson.M) (*models.Product, error) {
	var product models.Product
	if err := s.products().FindOne(ctx, filter).Decode(&product); err != nil {
		return nil, translateError(err)
	}
	return &product, nil
}

func (s *Store) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]models.Product, int64, error) {
	query := productQuery(filter)

	total, err := s.products().CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, translateError(err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if filter.Skip > 0 {
		opts.SetSkip(int64(filter.Skip))
	}
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cur, err := s.products().Find(ctx, query, opts)
	if err != nil {
		return nil, 0, translateError(err)
	}
	var products []models.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, 0, translateError(err)
	}
	return products, total, nil
}

// productQuery turns a filter into a find document.
func productQuery(filter repository.ProductFilter) bson.M {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.IsPaid != nil {
		query["isPaid"] = *filter.IsPaid
	}
	if len(filter.Tags) > 0 {
		query["tags"] = bson.M{"$in": filter.Tags}
	}
	if filter.Search != "" {
		re := bson.M{"$regex": regexp.QuoteMeta(filter.Search), "$options": "i"}
		query["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"shortDescription": re},
			bson.M{"tags": re},
		}
	}
	return query
}

func (s *Store) CountProducts(ctx context.Context, isPaid *bool) (int64, error) {
	query := bson.M{}
	if isPaid != nil {
		query["isPaid"] = *isPaid
	}
	n, err := s.products().CountDocuments(ctx, query)
	return n, translateError(err)
}

func (s *Store) ProductCategories(ctx context.Context) ([]string, error) {
	values, err := s.products().Distinct(ctx, "category", bson.M{"category": bson.M{"$ne": ""}})
	if err != nil {
		return nil, translateError(err)
	}
	return sortedStrings(values), nil
}

func (s *Store) ProductTags(ctx context.Context) ([]string, error) {
	values, err := s.products().Distinct(ctx, "tags", bson.M{})
	if err != nil {
		return nil, translateError(err)
	}
	return sortedStrings(values), nil
}

func sortedStrings(values []interface{}) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
