package content

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"storefront/internal/cms"
)

// EntrySource is a CMS space that can be queried by content type.
type EntrySource interface {
	Entries(ctx context.Context, q cms.Query) (*cms.Entries, error)
}

// Service assembles the homepage from CMS sections over the default content.
type Service struct {
	delivery EntrySource
	preview  EntrySource
	cache    Cache
	logger   zerolog.Logger
}

// New builds the service. Either source may be nil when not configured, and
// cache may be nil to disable caching.
func New(delivery, preview EntrySource, cache Cache, logger zerolog.Logger) *Service {
	return &Service{
		delivery: delivery,
		preview:  preview,
		cache:    cache,
		logger:   logger.With().Str("component", "content").Logger(),
	}
}

// Homepage never fails. Missing configuration or CMS errors fall back to the
// default content for every section that could not be read.
func (s *Service) Homepage(ctx context.Context, preview bool) Homepage {
	src := s.delivery
	if preview {
		src = s.preview
	}
	if src == nil {
		s.logger.Warn().Bool("preview", preview).Msg("cms client not configured, using default content")
		return DefaultHomepage()
	}

	if !preview && s.cache != nil {
		cached, err := s.cache.Load(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("homepage cache read failed")
		}
		if cached != nil {
			return *cached
		}
	}

	override, err := fetchSections(ctx, src)
	if err != nil {
		s.logger.Error().Err(err).Bool("preview", preview).Msg("fetch homepage sections")
	}
	page := Merge(DefaultHomepage(), override)

	// only complete reads are cached so a CMS hiccup is not pinned for a TTL
	if !preview && s.cache != nil && err == nil {
		if err := s.cache.Store(ctx, page); err != nil {
			s.logger.Warn().Err(err).Msg("homepage cache write failed")
		}
	}
	return page
}

// fetchSections reads each section in turn. On error it returns the sections
// read so far.
func fetchSections(ctx context.Context, src EntrySource) (Homepage, error) {
	var h Homepage

	entries, err := first(ctx, src, "heroSection")
	if err != nil {
		return h, err
	}
	if e, ok := entries.First(); ok {
		h.Hero = Hero{Title: e.Text("title"), Subtitle: e.Text("subtitle")}
	}

	if entries, err = first(ctx, src, "promoBanner"); err != nil {
		return h, err
	}
	if e, ok := entries.First(); ok {
		h.PromoBanner = PromoBanner{Text: e.Text("text"), LinkURL: e.Text("linkUrl")}
	}

	if entries, err = first(ctx, src, "exclusiveDeals"); err != nil {
		return h, err
	}
	if e, ok := entries.First(); ok {
		h.ExclusiveDeals = ExclusiveDeals{
			Badge:    e.Text("badge"),
			Title:    e.Text("title"),
			Subtitle: e.Text("subtitle"),
			CTAText1: e.Text("ctaText1"),
			CTAText2: e.Text("ctaText2"),
			ImageURL: imageURL(entries, e),
		}
	}

	if entries, err = first(ctx, src, "eeTvSection"); err != nil {
		return h, err
	}
	if e, ok := entries.First(); ok {
		h.EETVSection = EETVSection{
			Badge:       e.Text("badge"),
			Title:       e.Text("title"),
			Description: e.Text("description"),
			Features:    e.List("features"),
			CTAText1:    e.Text("ctaText1"),
			CTAText2:    e.Text("ctaText2"),
			ImageURL:    imageURL(entries, e),
		}
	}

	if entries, err = first(ctx, src, "btEeSection"); err != nil {
		return h, err
	}
	if e, ok := entries.First(); ok {
		h.BTEESection.Title = e.Text("title")
		h.BTEESection.Subtitle = e.Text("subtitle")
	}

	cards, err := src.Entries(ctx, cms.Query{ContentType: "productCard", Limit: 10, Order: "fields.order"})
	if err != nil {
		return h, fmt.Errorf("product cards: %w", err)
	}
	for _, e := range cards.Items {
		h.BTEESection.Products = append(h.BTEESection.Products, ProductCard{
			Category:      e.Text("category"),
			CategoryColor: pick(defaultCategoryColor, e.Text("categoryColor")),
			Title:         e.Text("title"),
			Description:   e.Text("description"),
			CTAText:       e.Text("ctaText"),
			ImageURL:      imageURL(cards, e),
		})
	}
	return h, nil
}

func first(ctx context.Context, src EntrySource, contentType string) (*cms.Entries, error) {
	entries, err := src.Entries(ctx, cms.Query{ContentType: contentType, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", contentType, err)
	}
	return entries, nil
}

// imageURL prefers an explicit imageUrl field over a linked image asset.
func imageURL(entries *cms.Entries, e cms.Entry) string {
	return pick(entries.ImageURL(e, "image"), e.Text("imageUrl"))
}
