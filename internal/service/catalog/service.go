package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog"

	"storefront/internal/domain"
)

// Source is the commerce API as seen by the catalog.
type Source interface {
	ProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	ProductByKey(ctx context.Context, key string) (*domain.Product, error)
	Products(ctx context.Context) ([]domain.Product, error)
	ProductsByCategory(ctx context.Context, categoryID string) ([]domain.Product, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	CategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
}

type Service struct {
	src    Source
	logger zerolog.Logger
}

func New(src Source, logger zerolog.Logger) *Service {
	return &Service{src: src, logger: logger.With().Str("component", "catalog").Logger()}
}

// CategoryPage is a category together with the products listed under it.
type CategoryPage struct {
	Category domain.Category  `json:"category"`
	Products []domain.Product `json:"products"`
}

// ProductBySlugOrKey looks the product up by slug and then by key. It returns
// domain.ErrNotFound only when both lookups found nothing; an upstream failure
// is returned as is.
func (s *Service) ProductBySlugOrKey(ctx context.Context, slugOrKey string) (*domain.Product, error) {
	slugOrKey = strings.TrimSpace(slugOrKey)
	if slugOrKey == "" {
		return nil, domain.ErrNotFound
	}

	p, slugErr := s.src.ProductBySlug(ctx, slugOrKey)
	if slugErr == nil {
		return withSlug(p), nil
	}
	if !errors.Is(slugErr, domain.ErrNotFound) {
		s.logger.Warn().Err(slugErr).Str("slug", slugOrKey).Msg("product slug lookup failed")
	}

	p, keyErr := s.src.ProductByKey(ctx, slugOrKey)
	if keyErr == nil {
		return withSlug(p), nil
	}
	if !errors.Is(keyErr, domain.ErrNotFound) {
		return nil, keyErr
	}
	if !errors.Is(slugErr, domain.ErrNotFound) {
		return nil, slugErr
	}
	return nil, domain.ErrNotFound
}

// Products lists products for browsing. Upstream failures yield an empty list.
func (s *Service) Products(ctx context.Context) []domain.Product {
	products, err := s.src.Products(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("list products")
		return []domain.Product{}
	}
	return withSlugs(products)
}

// Categories lists categories in order-hint order. Upstream failures yield an
// empty list.
func (s *Service) Categories(ctx context.Context) []domain.Category {
	cats, err := s.src.Categories(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("list categories")
		return []domain.Category{}
	}
	return cats
}

func (s *Service) ProductsByCategory(ctx context.Context, categoryID string) []domain.Product {
	products, err := s.src.ProductsByCategory(ctx, categoryID)
	if err != nil {
		s.logger.Error().Err(err).Str("category_id", categoryID).Msg("list category products")
		return []domain.Product{}
	}
	return withSlugs(products)
}

// CategoryBySlug returns domain.ErrNotFound both when the category does not
// exist and when it could not be fetched.
func (s *Service) CategoryBySlug(ctx context.Context, categorySlug string) (*domain.Category, error) {
	cat, err := s.src.CategoryBySlug(ctx, categorySlug)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error().Err(err).Str("slug", categorySlug).Msg("get category")
		}
		return nil, domain.ErrNotFound
	}
	return cat, nil
}

func (s *Service) CategoryPage(ctx context.Context, categorySlug string) (*CategoryPage, error) {
	cat, err := s.CategoryBySlug(ctx, categorySlug)
	if err != nil {
		return nil, err
	}
	return &CategoryPage{
		Category: *cat,
		Products: s.ProductsByCategory(ctx, cat.ID),
	}, nil
}

// withSlug fills in an English slug derived from the key or name when the
// product has none, so every listed product is addressable.
func withSlug(p *domain.Product) *domain.Product {
	if p == nil || p.Slug.Get("en") != "" {
		return p
	}
	source := p.Key
	if source == "" {
		source = p.Name.Get("en")
	}
	if source == "" {
		return p
	}
	slugs := make(domain.LocalizedString, len(p.Slug)+1)
	for k, v := range p.Slug {
		slugs[k] = v
	}
	slugs["en"] = slug.Make(source)
	p.Slug = slugs
	return p
}

func withSlugs(products []domain.Product) []domain.Product {
	if products == nil {
		return []domain.Product{}
	}
	for i := range products {
		withSlug(&products[i])
	}
	return products
}
