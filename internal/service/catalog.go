package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/flicky/coffeebar-pos/internal/catalog"
	"github.com/flicky/coffeebar-pos/internal/dto"
	"github.com/flicky/coffeebar-pos/internal/model"
	"github.com/flicky/coffeebar-pos/internal/repository"
)

const categoriesCacheKey = "catalog:categories"

// CatalogService serves the customer menu. The category list is cached in
// Redis when a client is configured; products are always read fresh so that
// availability toggles show up immediately.
type CatalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	redisClient  *redis.Client
	cacheTTL     time.Duration
}

func NewCatalogService(categoryRepo repository.CategoryRepository, productRepo repository.ProductRepository, redisClient *redis.Client, cacheTTL time.Duration) *CatalogService {
	return &CatalogService{categoryRepo: categoryRepo, productRepo: productRepo, redisClient: redisClient, cacheTTL: cacheTTL}
}

func (s *CatalogService) Categories(ctx context.Context) ([]dto.CategoryResponse, error) {
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, categoriesCacheKey).Bytes(); err == nil {
			var resp []dto.CategoryResponse
			if json.Unmarshal(cached, &resp) == nil {
				return resp, nil
			}
		}
	}

	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, storageErr("list categories", err)
	}
	resp := make([]dto.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, dto.CategoryResponse{ID: c.ID, Name: c.Name})
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(resp); err == nil {
			s.redisClient.Set(ctx, categoriesCacheKey, data, s.cacheTTL)
		}
	}
	return resp, nil
}

// Browse lists available products of one category (0 for all), filtered by
// a free-text query and ordered by the requested sort key.
func (s *CatalogService) Browse(ctx context.Context, req dto.BrowseRequest) ([]dto.ProductResponse, error) {
	products, err := s.productRepo.ListAvailable(ctx, req.CategoryID)
	if err != nil {
		return nil, storageErr("list products", err)
	}
	return toProductResponses(catalog.Apply(products, req.Query, catalog.ParseSortKey(req.Sort))), nil
}

func toProductResponses(products []model.Product) []dto.ProductResponse {
	resp := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		resp = append(resp, dto.ToProductResponse(&products[i]))
	}
	return resp
}
