package gormstore

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"go-market-backend/models"
	"go-market-backend/repository"

	"gorm.io/gorm"
)

func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	return translateError(s.db.WithContext(ctx).Create(product).Error)
}

func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	res := s.db.WithContext(ctx).Model(product).Select("*").Updates(product)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, translateError(err)
	}
	return &product, nil
}

func (s *Store) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&product).Error; err != nil {
		return nil, translateError(err)
	}
	return &product, nil
}

func (s *Store) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]models.Product, int64, error) {
	var total int64
	if err := s.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	q := s.filtered(ctx, filter).Order("created_at DESC").Order("id DESC")
	if filter.Skip > 0 {
		q = q.Offset(filter.Skip)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, 0, translateError(err)
	}
	return products, total, nil
}

// filtered returns a fresh query with every filter condition applied.
func (s *Store) filtered(ctx context.Context, filter repository.ProductFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Product{})

	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.IsPaid != nil {
		q = q.Where("is_paid = ?", *filter.IsPaid)
	}
	if len(filter.Tags) > 0 {
		// Tags are a JSON array; match the quoted element.
		clauses := make([]string, 0, len(filter.Tags))
		args := make([]interface{}, 0, len(filter.Tags))
		for _, tag := range filter.Tags {
			quoted, _ := json.Marshal(tag)
			clauses = append(clauses, `tags LIKE ? ESCAPE '\'`)
			args = append(args, "%"+escapeLike(string(quoted))+"%")
		}
		q = q.Where(strings.Join(clauses, " OR "), args...)
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.Search)) + "%"
		q = q.Where(
			`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(short_description) LIKE ? ESCAPE '\' OR LOWER(tags) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern,
		)
	}
	return q
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (s *Store) CountProducts(ctx context.Context, isPaid *bool) (int64, error) {
	var count int64
	q := s.db.WithContext(ctx).Model(&models.Product{})
	if isPaid != nil {
		q = q.Where("is_paid = ?", *isPaid)
	}
	err := q.Count(&count).Error
	return count, translateError(err)
}

func (s *Store) ProductCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := s.db.WithContext(ctx).Model(&models.Product{}).
		Distinct().
		Where("category <> ''").
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, translateError(err)
	}
	return categories, nil
}

func (s *Store) ProductTags(ctx context.Context) ([]string, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Select("id", "tags").Find(&products).Error; err != nil {
		return nil, translateError(err)
	}

	seen := make(map[string]struct{})
	tags := []string{}
	for _, p := range products {
		for _, tag := range p.Tags {
			if _, ok := seen[tag]; ok || tag == "" {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags, nil
}
