// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides business logic and service layer functionality.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/olegiv/ocms-core/internal/cache"
	"github.com/olegiv/ocms-core/internal/localization"
	"github.com/olegiv/ocms-core/internal/model"
	"github.com/olegiv/ocms-core/internal/store"
	"github.com/olegiv/ocms-core/internal/util"
)

// ErrNotFound is returned when a page does not exist.
var ErrNotFound = errors.New("page not found")

// SlugObserver records slug lookups.
type SlugObserver interface {
	ObserveSlug(locale string, found bool)
}

// PageService runs the page lifecycle. Every write runs in one transaction
// covering the page row, its translations and its slugs.
type PageService struct {
	db        *sqlx.DB
	queries   *store.Queries
	resolver  *localization.Resolver
	locales   localization.LocaleProvider
	slugCache *cache.SlugCache
	observer  SlugObserver
	now       func() time.Time
}

// NewPageService creates a new PageService.
// If slugCache is nil, slug lookups always hit the database.
func NewPageService(db *sqlx.DB, locales localization.LocaleProvider, slugCache *cache.SlugCache) *PageService {
	queries := store.New(db)
	return &PageService{
		db:        db,
		queries:   queries,
		resolver:  localization.New(queries, locales),
		locales:   locales,
		slugCache: slugCache,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *PageService) validate(ctx context.Context, in *PageInput, requireTitle bool) error {
	active, err := s.locales.ActiveCodes(ctx)
	if err != nil {
		return fmt.Errorf("loading active locales: %w", err)
	}
	return in.validate(active, requireTitle)
}

// SetObserver sets the recorder for slug lookups.
func (s *PageService) SetObserver(o SlugObserver) {
	s.observer = o
}

// CreatePage inserts a page with its translations, then generates a slug for
// every active locale. A concurrent slug collision is retried once.
func (s *PageService) CreatePage(ctx context.Context, in PageInput) (*PageView, error) {
	if err := s.validate(ctx, &in, true); err != nil {
		return nil, err
	}
	metadata, err := encodeMetadata(in.Metadata)
	if err != nil {
		return nil, err
	}

	var page model.Page
	create := func() error {
		return store.RunInTx(ctx, s.db, func(q *store.Queries) error {
			status, publishedAt := publication(in.Status, in.PublishedAt, sql.NullTime{}, false, s.now())
			p, err := q.CreatePage(ctx, store.CreatePageParams{
				Metadata:    metadata,
				Status:      status,
				PublishedAt: publishedAt,
			})
			if err != nil {
				return err
			}

			r := s.resolver.WithStore(q)
			localization.SetPendingTranslation(&p, model.PageAttrTitle, copyBodies(in.Title), "")
			localization.SetPendingTranslation(&p, model.PageAttrDescription, copyBodies(in.Description), "")
			if err := r.SyncTranslations(ctx, &p); err != nil {
				return fmt.Errorf("syncing translations: %w", err)
			}
			if err := r.GenerateSlugs(ctx, &p); err != nil {
				return fmt.Errorf("generating slugs: %w", err)
			}
			if len(in.Slugs) > 0 {
				if err := r.UpdateSlugs(ctx, &p, in.Slugs); err != nil {
					return fmt.Errorf("updating slugs: %w", err)
				}
			}

			page = p
			return nil
		})
	}

	err = create()
	if store.IsUniqueViolation(err) {
		slog.Warn("slug collision while creating page, retrying", "error", err)
		err = create()
	}
	if err != nil {
		return nil, err
	}

	slog.Info("page created", "page_id", page.ID, "status", page.Status)
	return s.view(ctx, &page, localization.LocaleFrom(ctx, ""))
}

// UpdatePage stores the status, metadata and translations of a page.
// Locales missing from Title or Description keep their stored bodies.
// Slugs are replaced for the locales in in.Slugs; otherwise they are
// regenerated, which keeps them stable while the title is unchanged.
func (s *PageService) UpdatePage(ctx context.Context, id int64, in PageInput) (*PageView, error) {
	if err := s.validate(ctx, &in, false); err != nil {
		return nil, err
	}

	var (
		page     model.Page
		oldSlugs model.SlugMap
	)
	err := store.RunInTx(ctx, s.db, func(q *store.Queries) error {
		p, err := q.GetPage(ctx, id)
		if store.IsNotFound(err) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("loading page %d: %w", id, err)
		}

		r := s.resolver.WithStore(q)
		oldSlugs, err = r.GetSlugsArray(ctx, &p)
		if err != nil {
			return err
		}

		requested, at := in.Status, in.PublishedAt
		if requested == "" {
			requested = p.ComputedStatus(s.now())
			if requested == model.PageStatusScheduled {
				at = util.TimePtr(p.PublishedAt)
			}
		}
		status, publishedAt := publication(requested, at, p.PublishedAt, p.Status == model.PageStatusPublished, s.now())
		if in.Metadata != nil {
			if err := p.SetMetadata(in.Metadata); err != nil {
				return fmt.Errorf("encoding metadata: %w", err)
			}
		}
		if err := q.UpdatePage(ctx, store.UpdatePageParams{
			ID:          p.ID,
			Metadata:    p.Metadata,
			Status:      status,
			PublishedAt: publishedAt,
		}); err != nil {
			return err
		}
		p.Status, p.PublishedAt = status, publishedAt

		inputs := map[string]map[string]string{
			model.PageAttrTitle:       in.Title,
			model.PageAttrDescription: in.Description,
		}
		for _, attr := range p.TranslatedAttributes() {
			bodies, err := r.TranslationsFor(ctx, &p, attr)
			if err != nil {
				return err
			}
			maps.Copy(bodies, inputs[attr])
			localization.SetPendingTranslation(&p, attr, bodies, "")
		}
		if err := r.SyncTranslations(ctx, &p); err != nil {
			return fmt.Errorf("syncing translations: %w", err)
		}

		if len(in.Slugs) > 0 {
			err = r.UpdateSlugs(ctx, &p, in.Slugs)
		} else {
			err = r.GenerateSlugs(ctx, &p)
		}
		if err != nil {
			return fmt.Errorf("updating slugs: %w", err)
		}

		page = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.forgetSlugs(ctx, oldSlugs)
	slog.Info("page updated", "page_id", page.ID, "status", page.Status)
	return s.view(ctx, &page, localization.LocaleFrom(ctx, ""))
}

// DeletePage removes the slugs, translations and row of a page.
func (s *PageService) DeletePage(ctx context.Context, id int64) error {
	var slugs model.SlugMap
	err := store.RunInTx(ctx, s.db, func(q *store.Queries) error {
		p, err := q.GetPage(ctx, id)
		if store.IsNotFound(err) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("loading page %d: %w", id, err)
		}

		r := s.resolver.WithStore(q)
		if slugs, err = r.GetSlugsArray(ctx, &p); err != nil {
			return err
		}
		if err := r.DeleteSlugs(ctx, &p); err != nil {
			return fmt.Errorf("deleting slugs: %w", err)
		}
		if err := r.DeleteTranslations(ctx, &p); err != nil {
			return fmt.Errorf("deleting translations: %w", err)
		}
		return q.DeletePage(ctx, p.ID)
	})
	if err != nil {
		return err
	}

	s.forgetSlugs(ctx, slugs)
	slog.Info("page deleted", "page_id", id)
	return nil
}

// GetPage returns the page with id rendered in locale.
func (s *PageService) GetPage(ctx context.Context, id int64, locale string) (*PageView, error) {
	p, err := s.queries.GetPage(ctx, id)
	if store.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading page %d: %w", id, err)
	}
	return s.view(ctx, &p, locale)
}

// FindBySlug returns the page owning slug in locale, rendered in locale.
func (s *PageService) FindBySlug(ctx context.Context, slug, locale string) (*PageView, error) {
	load := func(ctx context.Context) (int64, error) {
		return s.resolver.ResolveBySlug(ctx, model.EntityTypePage, slug, locale)
	}

	var (
		id  int64
		err error
	)
	if s.slugCache != nil {
		id, err = s.slugCache.Resolve(ctx, model.EntityTypePage, locale, slug, load)
	} else {
		id, err = load(ctx)
	}
	if errors.Is(err, localization.ErrNotFound) {
		s.observe(locale, false)
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	p, err := s.queries.GetPage(ctx, id)
	if store.IsNotFound(err) {
		// Cached ID of a page deleted elsewhere.
		s.forgetSlugs(ctx, model.SlugMap{locale: slug})
		s.observe(locale, false)
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading page %d: %w", id, err)
	}

	s.observe(locale, true)
	return s.view(ctx, &p, locale)
}

// ListOptions filters and orders ListPages.
type ListOptions struct {
	// Search keeps pages whose title in the listing locale contains it.
	Search string
	// Desc orders by title descending.
	Desc bool
	// PublishedOnly drops drafts, private and scheduled pages.
	PublishedOnly bool
	// Recent lists published pages newest first instead of by title.
	Recent bool
}

// ListPages returns pages rendered in locale, ordered by their title in that
// locale. Translations and slugs are loaded in one query each.
func (s *PageService) ListPages(ctx context.Context, locale string, opts ListOptions) ([]PageView, error) {
	var (
		pages []model.Page
		err   error
	)
	switch {
	case opts.Search != "":
		pages, err = s.queries.SearchPagesByTranslation(ctx, model.PageAttrTitle, locale, opts.Search)
	case opts.Recent:
		pages, err = s.queries.ListPublishedPages(ctx)
	default:
		pages, err = s.queries.ListPagesByTranslation(ctx, model.PageAttrTitle, locale, opts.Desc)
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	if opts.PublishedOnly {
		published := pages[:0]
		for _, p := range pages {
			if p.IsPublished(now) {
				published = append(published, p)
			}
		}
		pages = published
	}
	if len(pages) == 0 {
		return []PageView{}, nil
	}

	entities := make([]localization.Translatable, len(pages))
	ids := make([]int64, len(pages))
	for i := range pages {
		entities[i] = &pages[i]
		ids[i] = pages[i].ID
	}
	if err := s.resolver.LoadTranslations(ctx, entities...); err != nil {
		return nil, fmt.Errorf("loading translations: %w", err)
	}
	slugs, err := s.resolver.LoadSlugs(ctx, model.EntityTypePage, ids)
	if err != nil {
		return nil, fmt.Errorf("loading slugs: %w", err)
	}

	views := make([]PageView, 0, len(pages))
	for i := range pages {
		v, err := s.render(ctx, &pages[i], slugs[pages[i].ID], locale, now)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// view renders one page, loading its slugs.
func (s *PageService) view(ctx context.Context, p *model.Page, locale string) (*PageView, error) {
	slugs, err := s.resolver.GetSlugsArray(ctx, p)
	if err != nil {
		return nil, err
	}
	v, err := s.render(ctx, p, slugs, locale, s.now())
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *PageService) forgetSlugs(ctx context.Context, slugs model.SlugMap) {
	if s.slugCache == nil || len(slugs) == 0 {
		return
	}
	if err := s.slugCache.Forget(ctx, model.EntityTypePage, slugs); err != nil {
		slog.Warn("failed to forget cached slugs", "error", err)
	}
}

func (s *PageService) observe(locale string, found bool) {
	if s.observer != nil {
		s.observer.ObserveSlug(locale, found)
	}
}

func encodeMetadata(m map[string]any) (sql.NullString, error) {
	if m == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encoding metadata: %w", err)
	}
	return util.NullStringFromValue(string(b)), nil
}

// copyBodies returns a non-nil copy, so a missing attribute is written as
// empty bodies rather than skipped.
func copyBodies(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	maps.Copy(out, m)
	return out
}
