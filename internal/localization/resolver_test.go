package localization_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-core/internal/localization"
	"github.com/olegiv/ocms-core/internal/model"
	"github.com/olegiv/ocms-core/internal/store"
	"github.com/olegiv/ocms-core/internal/testutil"
)

// article is a second entity kind with a translated title and plain fields.
type article struct {
	id       int64
	fields   []string
	status   model.PageStatus
	subtitle string
	views    int
	set      model.TranslationSet
}

func (a *article) Kind() string                         { return "article" }
func (a *article) EntityID() int64                      { return a.id }
func (a *article) TranslatedAttributes() []string       { return []string{"title"} }
func (a *article) Translations() *model.TranslationSet { return &a.set }
func (a *article) SlugFields() []string                 { return a.fields }

func (a *article) SlugValue(field, _ string) (any, bool) {
	switch field {
	case "status":
		return a.status, true
	case "subtitle":
		return a.subtitle, true
	case "views":
		return a.views, true
	}
	return nil, false
}

func newResolver(t *testing.T, locales ...string) (*localization.Resolver, *store.Queries) {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	q := store.New(db)
	return localization.New(q, testutil.StaticLocales(locales)), q
}

// savePage writes title translations for the given locales and generates slugs.
func savePage(t *testing.T, r *localization.Resolver, id int64, titles map[string]string) *model.Page {
	t.Helper()
	ctx := context.Background()

	p := &model.Page{ID: id}
	localization.SetPendingTranslation(p, model.PageAttrTitle, titles, "")
	require.NoError(t, r.SyncTranslations(ctx, p))
	require.NoError(t, r.GenerateSlugs(ctx, p))
	return p
}

func TestGenerateSlugsResolvesCollisions(t *testing.T) {
	r, _ := newResolver(t, "en")
	ctx := context.Background()

	var pages []*model.Page
	for i := int64(1); i <= 3; i++ {
		pages = append(pages, savePage(t, r, 100+i, map[string]string{"en": "Test Page"}))
	}

	want := []string{"test-page", "test-page-1", "test-page-2"}
	for i, p := range pages {
		slug, err := r.GetSlug(ctx, p, "en")
		require.NoError(t, err)
		assert.Equal(t, want[i], slug)
	}

	// Saving again keeps the slug the entity already owns
	require.NoError(t, r.GenerateSlugs(ctx, pages[0]))
	require.NoError(t, r.GenerateSlugs(ctx, pages[2]))

	slug, err := r.GetSlug(ctx, pages[0], "en")
	require.NoError(t, err)
	assert.Equal(t, "test-page", slug)

	slug, err = r.GetSlug(ctx, pages[2], "en")
	require.NoError(t, err)
	assert.Equal(t, "test-page-2", slug)
}

func TestGenerateSlugsPerLocale(t *testing.T) {
	r, _ := newResolver(t, "en", "fr")
	ctx := context.Background()

	p := savePage(t, r, 1001, map[string]string{"en": "Hello World", "fr": "Bonjour le monde"})

	slugs, err := r.GetSlugsArray(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, model.SlugMap{"en": "hello-world", "fr": "bonjour-le-monde"}, slugs)

	// Same slug in different locales does not collide
	other := savePage(t, r, 1002, map[string]string{"en": "Bonjour le monde", "fr": "Hello World"})
	slugs, err = r.GetSlugsArray(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, model.SlugMap{"en": "bonjour-le-monde", "fr": "hello-world"}, slugs)
}

func TestGenerateSlugsUsesTranslationFallback(t *testing.T) {
	r, _ := newResolver(t, "en", "fr")
	ctx := context.Background()

	p := savePage(t, r, 1003, map[string]string{"en": "Only English"})

	slug, err := r.GetSlug(ctx, p, "fr")
	require.NoError(t, err)
	assert.Equal(t, "only-english", slug)
}

func TestGenerateSlugsLeavesInactiveLocales(t *testing.T) {
	r, _ := newResolver(t, "en")
	ctx := context.Background()

	p := savePage(t, r, 1004, map[string]string{"en": "Kept"})
	require.NoError(t, r.UpdateSlugs(ctx, p, map[string]string{"de": "behalten"}))

	require.NoError(t, r.GenerateSlugs(ctx, p))

	slugs, err := r.GetSlugsArray(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, model.SlugMap{"en": "kept", "de": "behalten"}, slugs)
}

func TestGenerateSlugsJoinsFields(t *testing.T) {
	r, _ := newResolver(t, "en")
	ctx := context.Background()

	a := &article{id: 1, fields: []string{"title", "subtitle", "views", "status"}, status: model.PageStatusPublished}
	localization.SetPendingTranslation(a, "title", "Test", "en")
	require.NoError(t, r.SyncTranslations(ctx, a))
	require.NoError(t, r.GenerateSlugs(ctx, a))

	// empty subtitle and non-string views are dropped
	slug, err := r.GetSlug(ctx, a, "en")
	require.NoError(t, err)
	assert.Equal(t, "test-published", slug)
}

func TestGenerateSlugsMissingField(t *testing.T) {
	r, _ := newResolver(t, "en")

	a := &article{id: 2, fields: []string{"title", "summary"}}
	err := r.GenerateSlugs(context.Background(), a)

	var cfgErr *localization.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "summary", cfgErr.Field)
	assert.Equal(t, "article", cfgErr.Kind)
	assert.Contains(t, err.Error(), "summary")
}

func TestSlugsDoNotCollideAcrossKinds(t *testing.T) {
	r, _ := newResolver(t, "en")
	ctx := context.Background()

	p := savePage(t, r, 7, map[string]string{"en": "Shared"})

	a := &article{id: 7, fields: []string{"title"}}
	localization.SetPendingTranslation(a, "title", "Shared", "en")
	require.NoError(t, r.SyncTranslations(ctx, a))
	require.NoError(t, r.GenerateSlugs(ctx, a))

	pageSlug, _ := r.GetSlug(ctx, p, "en")
	articleSlug, _ := r.GetSlug(ctx, a, "en")
	assert.Equal(t, "shared", pageSlug)
	assert.Equal(t, "shared-1", articleSlug)
}

func TestUpdateSlugs(t *testing.T) {
	r, _ := newResolver(t, "en", "fr")
	ctx := context.Background()

	taken := savePage(t, r, 2001, map[string]string{"en": "Custom", "fr": "Custom"})
	p := savePage(t, r, 2002, map[string]string{"en": "Original"})

	require.NoError(t, r.UpdateSlugs(ctx, p, map[string]string{"en": "custom", "fr": "Not Slugified"}))

	slugs, err := r.GetSlugsArray(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "custom-1", slugs["en"])
	assert.Equal(t, "Not Slugified", slugs["fr"])

	// the owner keeps its slug
	slug, _ := r.GetSlug(ctx, taken, "en")
	assert.Equal(t, "custom", slug)
}

func TestResolveBySlug(t *testing.T) {
	r, _ := newResolver(t, "en")
	ctx := context.Background()

	p := savePage(t, r, 3001, map[string]string{"en": "Find Me"})

	id, err := r.ResolveBySlug(ctx, model.EntityTypePage, "find-me", "en")
	require.NoError(t, err)
	assert.Equal(t, p.ID, id)

	_, err = r.ResolveBySlug(ctx, model.EntityTypePage, "find-me", "fr")
	assert.ErrorIs(t, err, localization.ErrNotFound)

	_, err = r.ResolveBySlug(ctx, "article", "find-me", "en")
	assert.ErrorIs(t, err, localization.ErrNotFound)
}

func TestLoadSlugs(t *testing.T) {
	r, _ := newResolver(t, "en")
	ctx := context.Background()

	savePage(t, r, 4001, map[string]string{"en": "One"})
	savePage(t, r, 4002, map[string]string{"en": "Two"})

	slugs, err := r.LoadSlugs(ctx, model.EntityTypePage, []int64{4001, 4002, 4003})
	require.NoError(t, err)
	assert.Equal(t, "one", slugs[4001]["en"])
	assert.Equal(t, "two", slugs[4002]["en"])
	assert.NotContains(t, slugs, int64(4003))
}

func TestDeleteSlugsIsIdempotent(t *testing.T) {
	r, _ := newResolver(t, "en")
	ctx := context.Background()

	p := savePage(t, r, 5001, map[string]string{"en": "Gone"})

	require.NoError(t, r.DeleteSlugs(ctx, p))
	require.NoError(t, r.DeleteSlugs(ctx, p))

	slugs, err := r.GetSlugsArray(ctx, p)
	require.NoError(t, err)
	assert.Empty(t, slugs)
}

// takenStore reports every slug as taken.
type takenStore struct {
	localization.Store
}

func (takenStore) SlugTaken(context.Context, string, string, string, int64) (bool, error) {
	return true, nil
}

func (takenStore) ListTranslations(context.Context, string, int64) ([]model.Translation, error) {
	return []model.Translation{{Key: "title", Locale: "en", Body: "Busy"}}, nil
}

func TestGenerateSlugsSuffixCap(t *testing.T) {
	r := localization.New(takenStore{}, testutil.StaticLocales{"en"})

	err := r.GenerateSlugs(context.Background(), &model.Page{ID: 1})
	assert.ErrorIs(t, err, localization.ErrSlugExhausted)
}

type failingLocales struct{}

func (failingLocales) ActiveCodes(context.Context) ([]string, error) {
	return nil, errors.New("locales unavailable")
}

func TestLocaleProviderErrors(t *testing.T) {
	r := localization.New(takenStore{}, failingLocales{})

	assert.Error(t, r.GenerateSlugs(context.Background(), &model.Page{ID: 1}))
	assert.Error(t, r.SyncTranslations(context.Background(), &model.Page{ID: 1}))
}
