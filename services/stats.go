package services

import (
	"context"

	"go-market-backend/auth"
	"go-market-backend/models"
	"go-market-backend/repository"
)

const recentLimit = 5

// Stats backs the admin dashboard.
type Stats struct {
	TotalProducts  int64             `json:"totalProducts"`
	TotalUsers     int64             `json:"totalUsers"`
	PaidProducts   int64             `json:"paidProducts"`
	FreeProducts   int64             `json:"freeProducts"`
	RecentProducts []*models.Product `json:"recentProducts"`
	RecentUsers    []models.User     `json:"recentUsers"`
}

type StatsService struct {
	db Database
}

func NewStatsService(db Database) *StatsService {
	return &StatsService{db: db}
}

func (s *StatsService) Get(ctx context.Context, caller *auth.Claims) (*Stats, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	store, err := s.db.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}

	paid, free := true, false
	var st Stats
	if st.TotalProducts, err = store.CountProducts(ctx, nil); err != nil {
		return nil, err
	}
	if st.PaidProducts, err = store.CountProducts(ctx, &paid); err != nil {
		return nil, err
	}
	if st.FreeProducts, err = store.CountProducts(ctx, &free); err != nil {
		return nil, err
	}
	if st.TotalUsers, err = store.CountUsers(ctx); err != nil {
		return nil, err
	}

	products, _, err := store.ListProducts(ctx, repository.ProductFilter{Limit: recentLimit})
	if err != nil {
		return nil, err
	}
	st.RecentProducts = make([]*models.Product, 0, len(products))
	for i := range products {
		st.RecentProducts = append(st.RecentProducts, withoutSecretValues(&products[i]))
	}

	users, err := store.RecentUsers(ctx, recentLimit)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	st.RecentUsers = users
	return &st, nil
}
