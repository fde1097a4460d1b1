package commerce

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"storefront/internal/domain"
)

const (
	productsLimit         = 100
	productsCategoryLimit = 50
	productsScanLimit     = 500
)

// ProductBySlug matches the English slug first and falls back to scanning
// published products for any locale carrying slug.
func (c *Client) ProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := url.Values{}
	query.Set("where", fmt.Sprintf(`slug(en="%s")`, predicateLiteral(slug)))
	query.Set("limit", "1")

	var page pagedResponse[ctProductProjection]
	if err := c.do(ctx, http.MethodGet, "product-projections", query, nil, &page); err != nil {
		return nil, fmt.Errorf("query product by slug %q: %w", slug, err)
	}
	if len(page.Results) > 0 {
		p := page.Results[0].toDomain()
		return &p, nil
	}

	products, err := c.search(ctx, url.Values{"limit": {strconv.Itoa(productsScanLimit)}})
	if err != nil {
		return nil, fmt.Errorf("scan products for slug %q: %w", slug, err)
	}
	for i := range products {
		if slugMatches(products[i].Slug, slug, "en", "en-GB") {
			return &products[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (c *Client) ProductByKey(ctx context.Context, key string) (*domain.Product, error) {
	var out ctProductProjection
	if err := c.do(ctx, http.MethodGet, "product-projections/key="+url.PathEscape(key), nil, nil, &out); err != nil {
		return nil, fmt.Errorf("get product by key %q: %w", key, err)
	}
	p := out.toDomain()
	return &p, nil
}

func (c *Client) ProductByID(ctx context.Context, id string) (*domain.Product, error) {
	var out ctProductProjection
	if err := c.do(ctx, http.MethodGet, "product-projections/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	p := out.toDomain()
	return &p, nil
}

// Products returns the first page of published products.
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	products, err := c.search(ctx, url.Values{"limit": {strconv.Itoa(productsLimit)}})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// ProductsByCategory returns products in the category subtree, falling back
// to a direct category match when the subtree filter finds nothing.
func (c *Client) ProductsByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	limit := strconv.Itoa(productsCategoryLimit)
	id := predicateLiteral(categoryID)

	products, err := c.search(ctx, url.Values{
		"filter.query": {fmt.Sprintf(`categories.id:subtree("%s")`, id)},
		"limit":        {limit},
	})
	if err != nil {
		return nil, fmt.Errorf("search category subtree %s: %w", categoryID, err)
	}
	if len(products) > 0 {
		return products, nil
	}

	products, err = c.search(ctx, url.Values{
		"filter": {fmt.Sprintf(`categories.id:"%s"`, id)},
		"limit":  {limit},
	})
	if err != nil {
		return nil, fmt.Errorf("search category %s: %w", categoryID, err)
	}
	return products, nil
}

func (c *Client) search(ctx context.Context, query url.Values) ([]domain.Product, error) {
	var page pagedResponse[ctProductProjection]
	if err := c.do(ctx, http.MethodGet, "product-projections/search", query, nil, &page); err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(page.Results))
	for _, p := range page.Results {
		out = append(out, p.toDomain())
	}
	return out, nil
}

// slugMatches checks the preferred locales in order, then any other value.
func slugMatches(slugs domain.LocalizedString, want string, locales ...string) bool {
	for _, l := range locales {
		if v, ok := slugs[l]; ok && v != "" {
			return v == want
		}
	}
	for _, v := range slugs {
		if v == want {
			return true
		}
	}
	return false
}
