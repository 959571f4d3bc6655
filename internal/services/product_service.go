package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"mlmadmin/internal/models/db_models"
	"mlmadmin/internal/models/request_models"
	resp "mlmadmin/internal/models/response_models"
	"mlmadmin/internal/repositories"
	"mlmadmin/pkg/utils"
)

type ProductServiceInterface interface {
	CreateProduct(ctx context.Context, request request_models.ProductRequest) (*resp.ProductResponse, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, request request_models.ProductRequest) (*resp.ProductResponse, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*resp.ProductResponse, error)
	ListProducts(ctx context.Context, filter repositories.ProductFilter, page, pageSize int) ([]resp.ProductResponse, int64, error)
	ListActiveProducts(ctx context.Context, search, category string, page, pageSize int) ([]resp.ProductResponse, int64, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type ProductService struct {
	productRepo repositories.ProductRepository
}

func NewProductService(productRepo repositories.ProductRepository) ProductServiceInterface {
	return &ProductService{productRepo: productRepo}
}

func (s *ProductService) CreateProduct(ctx context.Context, request request_models.ProductRequest) (*resp.ProductResponse, error) {
	product := &db_models.Product{}
	if err := applyProductRequest(product, request); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, utils.ErrDuplicateRecord
		}
		return nil, utils.ErrDatabaseError
	}

	logrus.WithFields(logrus.Fields{"product_id": product.ID, "sku": product.SKU}).Info("product created")
	return toProductResponse(product), nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, request request_models.ProductRequest) (*resp.ProductResponse, error) {
	product, err := s.productRepo.FindById(ctx, id)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if product == nil {
		return nil, utils.RecordNotFound
	}

	if err := applyProductRequest(product, request); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		if repositories.IsDuplicateKey(err) {
			return nil, utils.ErrDuplicateRecord
		}
		return nil, utils.ErrDatabaseError
	}
	return toProductResponse(product), nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*resp.ProductResponse, error) {
	product, err := s.productRepo.FindById(ctx, id)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if product == nil {
		return nil, utils.RecordNotFound
	}
	return toProductResponse(product), nil
}

func (s *ProductService) ListProducts(ctx context.Context, filter repositories.ProductFilter, page, pageSize int) ([]resp.ProductResponse, int64, error) {
	products, total, err := s.productRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, 0, utils.ErrDatabaseError
	}

	out := make([]resp.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, *toProductResponse(&products[i]))
	}
	return out, total, nil
}

func (s *ProductService) ListActiveProducts(ctx context.Context, search, category string, page, pageSize int) ([]resp.ProductResponse, int64, error) {
	return s.ListProducts(ctx, repositories.ProductFilter{
		Search:     search,
		Category:   category,
		ActiveOnly: true,
	}, page, pageSize)
}

func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.RecordNotFound
		}
		return utils.ErrDatabaseError
	}
	return nil
}

func applyProductRequest(p *db_models.Product, request request_models.ProductRequest) error {
	if request.PriceMinor == nil || *request.PriceMinor < 0 {
		return utils.ErrInvalidInput
	}
	if request.Stock == nil || *request.Stock < 0 {
		return utils.ErrInvalidInput
	}
	if len(request.Currency) != 3 {
		return utils.ErrInvalidInput
	}

	p.SKU = strings.TrimSpace(request.SKU)
	p.Name = strings.TrimSpace(request.Name)
	p.Description = request.Description
	p.PriceMinor = *request.PriceMinor
	p.Currency = strings.ToUpper(request.Currency)
	p.Stock = *request.Stock
	p.Category = strings.TrimSpace(request.Category)
	p.Commissionable = request.Commissionable != nil && *request.Commissionable
	p.IsActive = request.IsActive != nil && *request.IsActive
	p.Tags = pq.StringArray(normalizeTags(request.Tags))
	p.Images = pq.StringArray(request.Images)
	return nil
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func toProductResponse(p *db_models.Product) *resp.ProductResponse {
	tags := []string(p.Tags)
	if tags == nil {
		tags = []string{}
	}
	images := []string(p.Images)
	if images == nil {
		images = []string{}
	}
	return &resp.ProductResponse{
		ID:             p.ID.String(),
		SKU:            p.SKU,
		Name:           p.Name,
		Description:    p.Description,
		PriceMinor:     p.PriceMinor,
		Currency:       p.Currency,
		Stock:          p.Stock,
		Category:       p.Category,
		Commissionable: p.Commissionable,
		IsActive:       p.IsActive,
		Tags:           tags,
		Images:         images,
		UpdatedAt:      p.UpdatedAt,
	}
}
