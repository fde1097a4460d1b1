package commerce

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"storefront/internal/domain"
)

const categoriesLimit = 100

var categorySlugLocales = []string{"en", "en-US", "en-GB"}

// Categories returns up to 100 categories ordered by their order hint.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(categoriesLimit))
	query.Set("sort", "orderHint asc")
	return c.queryCategories(ctx, query)
}

// CategoryBySlug tries each known locale and then scans all categories.
func (c *Client) CategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	for _, locale := range categorySlugLocales {
		query := url.Values{}
		query.Set("where", fmt.Sprintf(`slug(%s="%s")`, locale, predicateLiteral(slug)))
		query.Set("limit", "1")
		found, err := c.queryCategories(ctx, query)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			c.logger.Debug().Err(err).Str("locale", locale).Str("slug", slug).Msg("category slug query failed")
			continue
		}
		if len(found) > 0 {
			return &found[0], nil
		}
	}

	all, err := c.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan categories for slug %q: %w", slug, err)
	}
	for i := range all {
		if slugMatches(all[i].Slug, slug, categorySlugLocales...) {
			return &all[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (c *Client) CategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	var out ctCategory
	if err := c.do(ctx, http.MethodGet, "categories/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, fmt.Errorf("get category %s: %w", id, err)
	}
	cat := out.toDomain()
	return &cat, nil
}

func (c *Client) queryCategories(ctx context.Context, query url.Values) ([]domain.Category, error) {
	var page pagedResponse[ctCategory]
	if err := c.do(ctx, http.MethodGet, "categories", query, nil, &page); err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	out := make([]domain.Category, 0, len(page.Results))
	for _, cat := range page.Results {
		out = append(out, cat.toDomain())
	}
	return out, nil
}
