package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-core/internal/cache"
	"github.com/olegiv/ocms-core/internal/localization"
	"github.com/olegiv/ocms-core/internal/model"
	"github.com/olegiv/ocms-core/internal/testutil"
)

type countingObserver struct {
	found, missing int
}

func (o *countingObserver) ObserveSlug(_ string, found bool) {
	if found {
		o.found++
	} else {
		o.missing++
	}
}

func newTestService(t *testing.T, slugCache *cache.SlugCache) *PageService {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	testutil.ActivateLocales(t, db, "fr")

	return NewPageService(db, testutil.StaticLocales{"en", "fr"}, slugCache)
}

func titled(en, fr string) PageInput {
	title := map[string]string{"en": en}
	if fr != "" {
		title["fr"] = fr
	}
	return PageInput{Title: title}
}

func TestCreatePage(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	view, err := svc.CreatePage(ctx, PageInput{
		Title:       map[string]string{"en": "Test Page", "fr": "Page de test"},
		Description: map[string]string{"en": "About things"},
		Metadata:    map[string]any{"layout": "wide"},
	})
	require.NoError(t, err)

	assert.Equal(t, model.SlugMap{"en": "test-page", "fr": "page-de-test"}, view.Slugs)
	assert.Equal(t, model.PageStatusDraft, view.Status)
	assert.Equal(t, "Draft", view.StatusLabel)
	assert.Nil(t, view.PublishedAt)
	assert.Equal(t, "wide", view.Metadata["layout"])

	rows, err := svc.queries.ListTranslations(ctx, model.EntityTypePage, view.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 4, "two attributes in two locales")

	fr, err := svc.GetPage(ctx, view.ID, "fr")
	require.NoError(t, err)
	assert.Equal(t, "Page de test", fr.Title)
	assert.Equal(t, "page-de-test", fr.Slug)
	assert.Equal(t, "About things", fr.Description, "empty description falls back")
}

func TestCreatePageSlugCollisions(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	want := []string{"x", "x-1", "x-2"}
	for _, slug := range want {
		view, err := svc.CreatePage(ctx, titled("X", ""))
		require.NoError(t, err)
		assert.Equal(t, slug, view.Slugs["en"])
		assert.Equal(t, slug, view.Slugs["fr"], "fr falls back to the en title")
	}
}

func TestCreatePageExplicitSlugs(t *testing.T) {
	svc := newTestService(t, nil)

	in := titled("Contact", "Contact")
	in.Slugs = map[string]string{"fr": "nous-contacter"}

	view, err := svc.CreatePage(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, model.SlugMap{"en": "contact", "fr": "nous-contacter"}, view.Slugs)
}

func TestCreatePageValidation(t *testing.T) {
	svc := newTestService(t, nil)

	tests := []struct {
		name  string
		in    PageInput
		field string
	}{
		{"missing title", PageInput{}, "title"},
		{"blank title", PageInput{Title: map[string]string{"en": "  "}}, "title"},
		{"unknown status", PageInput{Title: map[string]string{"en": "A"}, Status: "archived"}, "status"},
		{"scheduled without time", PageInput{Title: map[string]string{"en": "A"}, Status: model.PageStatusScheduled}, "published_at"},
		{"invalid slug", PageInput{Title: map[string]string{"en": "A"}, Slugs: map[string]string{"en": "Not A Slug"}}, "slugs.en"},
		{"slug in unknown locale", PageInput{Title: map[string]string{"en": "Hello"}, Slugs: map[string]string{"zz": "hello-zz"}}, "slugs.zz"},
		{"slug in inactive locale", PageInput{Title: map[string]string{"en": "Hello"}, Slugs: map[string]string{"de": "hallo"}}, "slugs.de"},
		{"title only in unknown locale", PageInput{Title: map[string]string{"zz": "Ghost"}}, "title"},
		{"title in unknown locale", PageInput{Title: map[string]string{"en": "A", "zz": "Ghost"}}, "title.zz"},
		{"description in unknown locale", PageInput{Title: map[string]string{"en": "A"}, Description: map[string]string{"zz": "B"}}, "description.zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePage(context.Background(), tt.in)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestCreatePageRejectsInactiveLocalesWithoutWriting(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	for range 2 {
		_, err := svc.CreatePage(ctx, PageInput{Title: map[string]string{"zz": "Ghost"}})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "got %v", err)
		assert.Equal(t, msgInactiveLocale, verr.Fields["title.zz"])
		assert.Equal(t, "Title is required", verr.Fields["title"])
	}

	pages, err := svc.ListPages(ctx, "en", ListOptions{})
	require.NoError(t, err)
	require.Len(t, pages, 1, "only the seeded home page")
	assert.Equal(t, "Home", pages[0].Title)
}

func TestUpdatePageRejectsUnknownSlugLocale(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	view, err := svc.CreatePage(ctx, titled("Hello", ""))
	require.NoError(t, err)

	_, err = svc.UpdatePage(ctx, view.ID, PageInput{Slugs: map[string]string{"zz": "hello-zz"}})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, msgInactiveLocale, verr.Fields["slugs.zz"])

	got, err := svc.GetPage(ctx, view.ID, "en")
	require.NoError(t, err)
	assert.Equal(t, model.SlugMap{"en": "hello", "fr": "hello"}, got.Slugs)
}

func TestUpdatePageKeepsSlugsAndTranslations(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	created, err := svc.CreatePage(ctx, titled("Test Page", "Page de test"))
	require.NoError(t, err)

	_, err = svc.UpdatePage(ctx, created.ID, PageInput{
		Description: map[string]string{"en": "Updated"},
	})
	require.NoError(t, err)

	fr, err := svc.GetPage(ctx, created.ID, "fr")
	require.NoError(t, err)
	assert.Equal(t, "Page de test", fr.Title)
	assert.Equal(t, created.Slugs, fr.Slugs, "slugs are stable across saves")
	assert.Equal(t, "Updated", fr.Description)
}

func TestUpdatePageRegeneratesSlugFromNewTitle(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	created, err := svc.CreatePage(ctx, titled("Old Title", ""))
	require.NoError(t, err)

	updated, err := svc.UpdatePage(ctx, created.ID, PageInput{
		Title: map[string]string{"en": "New Title"},
	})
	require.NoError(t, err)
	assert.Equal(t, "new-title", updated.Slugs["en"])

	_, err = svc.FindBySlug(ctx, "old-title", "en")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePageExplicitSlugs(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	created, err := svc.CreatePage(ctx, titled("About", ""))
	require.NoError(t, err)

	// "home" belongs to the seeded home page.
	updated, err := svc.UpdatePage(ctx, created.ID, PageInput{
		Slugs: map[string]string{"en": "home"},
	})
	require.NoError(t, err)
	assert.Equal(t, "home-1", updated.Slugs["en"])
	assert.Equal(t, "about", updated.Slugs["fr"])

	found, err := svc.FindBySlug(ctx, "home-1", "en")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestUpdatePagePublication(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	future := now.Add(48 * time.Hour)

	created, err := svc.CreatePage(ctx, titled("Post", ""))
	require.NoError(t, err)

	tests := []struct {
		name       string
		in         PageInput
		wantStatus model.PageStatus
		wantAt     *time.Time
	}{
		{"publish now", PageInput{Status: model.PageStatusPublished}, model.PageStatusPublished, &now},
		{"keep status when omitted", PageInput{}, model.PageStatusPublished, &now},
		{"schedule", PageInput{Status: model.PageStatusScheduled, PublishedAt: &future}, model.PageStatusScheduled, &future},
		{"scheduled stays scheduled", PageInput{}, model.PageStatusScheduled, &future},
		{"private clears time", PageInput{Status: model.PageStatusPrivate}, model.PageStatusPrivate, nil},
		{"draft", PageInput{Status: model.PageStatusDraft}, model.PageStatusDraft, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := svc.UpdatePage(ctx, created.ID, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, view.Status)
			if tt.wantAt == nil {
				assert.Nil(t, view.PublishedAt)
			} else {
				require.NotNil(t, view.PublishedAt)
				assert.True(t, tt.wantAt.Equal(*view.PublishedAt), "published_at = %v, want %v", view.PublishedAt, tt.wantAt)
			}
		})
	}
}

func TestRepublishKeepsPublicationTime(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return first }
	created, err := svc.CreatePage(ctx, PageInput{Title: map[string]string{"en": "News"}, Status: model.PageStatusPublished})
	require.NoError(t, err)

	svc.now = func() time.Time { return first.Add(time.Hour) }
	updated, err := svc.UpdatePage(ctx, created.ID, PageInput{Status: model.PageStatusPublished})
	require.NoError(t, err)
	require.NotNil(t, updated.PublishedAt)
	assert.True(t, first.Equal(*updated.PublishedAt))
}

func TestUpdatePageNotFound(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.UpdatePage(context.Background(), 9999, titled("A", ""))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePage(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	created, err := svc.CreatePage(ctx, titled("Gone Soon", ""))
	require.NoError(t, err)

	require.NoError(t, svc.DeletePage(ctx, created.ID))

	_, err = svc.GetPage(ctx, created.ID, "en")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.FindBySlug(ctx, "gone-soon", "en")
	assert.ErrorIs(t, err, ErrNotFound)

	rows, err := svc.queries.ListTranslations(ctx, model.EntityTypePage, created.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	assert.ErrorIs(t, svc.DeletePage(ctx, created.ID), ErrNotFound)
}

func TestFindBySlugUsesCache(t *testing.T) {
	mem := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Hour})
	t.Cleanup(func() { _ = mem.Close() })

	svc := newTestService(t, cache.NewSlugCache(mem, time.Hour))
	obs := &countingObserver{}
	svc.SetObserver(obs)
	ctx := context.Background()

	created, err := svc.CreatePage(ctx, titled("Cached", "En cache"))
	require.NoError(t, err)

	for range 2 {
		view, err := svc.FindBySlug(ctx, "en-cache", "fr")
		require.NoError(t, err)
		assert.Equal(t, created.ID, view.ID)
		assert.Equal(t, "En cache", view.Title)
		assert.Equal(t, "fr", view.Locale)
	}
	stats := mem.Stats()
	assert.Equal(t, int64(1), stats.Hits)

	_, err = svc.FindBySlug(ctx, "en-cache", "en")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 2, obs.found)
	assert.Equal(t, 1, obs.missing)

	require.NoError(t, svc.DeletePage(ctx, created.ID))
	has, err := mem.Has(ctx, "slug:page:fr:en-cache")
	require.NoError(t, err)
	assert.False(t, has, "deleting a page forgets its cached slugs")
}

func TestFindBySlugStaleCacheEntry(t *testing.T) {
	mem := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Hour})
	t.Cleanup(func() { _ = mem.Close() })
	slugs := cache.NewSlugCache(mem, time.Hour)
	svc := newTestService(t, slugs)
	ctx := context.Background()

	_, err := slugs.Resolve(ctx, model.EntityTypePage, "en", "ghost", func(context.Context) (int64, error) {
		return 4242, nil
	})
	require.NoError(t, err)

	_, err = svc.FindBySlug(ctx, "ghost", "en")
	assert.ErrorIs(t, err, ErrNotFound)

	has, err := mem.Has(ctx, "slug:page:en:ghost")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestListPages(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	now := time.Now().UTC()
	svc.now = func() time.Time { return now }

	for _, in := range []PageInput{
		{Title: map[string]string{"en": "Banana", "fr": "Banane"}, Status: model.PageStatusPublished},
		{Title: map[string]string{"en": "Apple", "fr": "Pomme"}},
		{Title: map[string]string{"en": "Cherry", "fr": "Cerise"}, Status: model.PageStatusPrivate},
	} {
		_, err := svc.CreatePage(ctx, in)
		require.NoError(t, err)
	}

	titles := func(views []PageView) []string {
		out := make([]string, 0, len(views))
		for _, v := range views {
			out = append(out, v.Title)
		}
		return out
	}

	all, err := svc.ListPages(ctx, "en", ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple", "Banana", "Cherry", "Home"}, titles(all))

	fr, err := svc.ListPages(ctx, "fr", ListOptions{Desc: true})
	require.NoError(t, err)
	// The seeded home page has no French title and sorts as empty.
	assert.Equal(t, []string{"Pomme", "Cerise", "Banane", "Home"}, titles(fr))
	assert.Equal(t, "pomme", fr[0].Slug)

	found, err := svc.ListPages(ctx, "fr", ListOptions{Search: "ane"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Banane"}, titles(found))

	published, err := svc.ListPages(ctx, "en", ListOptions{PublishedOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Banana", "Home"}, titles(published))

	recent, err := svc.ListPages(ctx, "en", ListOptions{Recent: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Banana", "Home"}, titles(recent))

	none, err := svc.ListPages(ctx, "en", ListOptions{Search: "zzz"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestCreatePageInContextLocale(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := localization.WithLocale(context.Background(), "fr")

	view, err := svc.CreatePage(ctx, titled("Hello", "Bonjour"))
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", view.Title)
	assert.Equal(t, "bonjour", view.Slug)
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"title": "Title is required", "status": "bad"}}
	assert.Equal(t, "validation failed: status: bad, title: Title is required", err.Error())
}
