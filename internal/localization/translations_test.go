package localization_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-core/internal/localization"
	"github.com/olegiv/ocms-core/internal/model"
)

func TestSyncTranslationsWritesFullMatrix(t *testing.T) {
	r, q := newResolver(t, "en", "fr", "de")
	ctx := context.Background()

	p := &model.Page{ID: 10}
	localization.SetPendingTranslation(p, model.PageAttrTitle, "Hello", "en")
	require.NoError(t, r.SyncTranslations(ctx, p))

	rows, err := q.ListTranslations(ctx, model.EntityTypePage, p.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 6, "2 attributes x 3 locales")

	bodies := map[string]string{}
	for _, row := range rows {
		bodies[row.Key+"/"+row.Locale] = row.Body
	}
	assert.Equal(t, "Hello", bodies["title/en"])
	assert.Equal(t, "", bodies["title/fr"])
	assert.Equal(t, "", bodies["description/de"])

	// Syncing again with the same buffer is a no-op on row count
	require.NoError(t, r.SyncTranslations(ctx, p))
	rows, err = q.ListTranslations(ctx, model.EntityTypePage, p.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 6)
}

func TestSetPendingTranslation(t *testing.T) {
	r, _ := newResolver(t, "en", "fr")
	ctx := context.Background()

	p := &model.Page{ID: 11}
	localization.SetPendingTranslation(p, model.PageAttrTitle, map[string]string{"en": "Hi", "fr": "Salut"}, "en")
	localization.SetPendingTranslation(p, model.PageAttrDescription, "Desc", "fr")
	localization.SetPendingTranslation(p, "body", "ignored", "en")
	localization.SetPendingTranslation(p, model.PageAttrTitle+"x", 42, "en")
	require.NoError(t, r.SyncTranslations(ctx, p))

	titles, err := r.TranslationsFor(ctx, p, model.PageAttrTitle)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"en": "Hi", "fr": "Salut"}, titles)

	descriptions, err := r.TranslationsFor(ctx, p, model.PageAttrDescription)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"en": "", "fr": "Desc"}, descriptions)

	body, err := r.TranslationsFor(ctx, p, "body")
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestReadTranslatedAttributeFallback(t *testing.T) {
	r, _ := newResolver(t, "en", "fr", "de")
	ctx := context.Background()

	p := &model.Page{ID: 12}
	localization.SetPendingTranslation(p, model.PageAttrTitle, map[string]string{"en": "English", "de": "Deutsch"}, "")
	require.NoError(t, r.SyncTranslations(ctx, p))

	tests := []struct {
		locale string
		attr   string
		want   string
	}{
		{"en", model.PageAttrTitle, "English"},
		{"de", model.PageAttrTitle, "Deutsch"},
		{"fr", model.PageAttrTitle, "English"}, // empty fr row falls back to first non-empty
		{"it", model.PageAttrTitle, "English"}, // no row at all
		{"fr", model.PageAttrDescription, ""},
		{"en", "unknown", ""},
	}

	for _, tt := range tests {
		t.Run(tt.locale+"/"+tt.attr, func(t *testing.T) {
			got, err := r.ReadTranslatedAttribute(ctx, p, tt.attr, tt.locale)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadTranslatedAttributeIsLazy(t *testing.T) {
	r, q := newResolver(t, "en")
	ctx := context.Background()

	p := &model.Page{ID: 13}
	localization.SetPendingTranslation(p, model.PageAttrTitle, "First", "en")
	require.NoError(t, r.SyncTranslations(ctx, p))

	got, err := r.ReadTranslatedAttribute(ctx, p, model.PageAttrTitle, "en")
	require.NoError(t, err)
	assert.Equal(t, "First", got)

	// A direct write is not seen until the set is reloaded
	require.NoError(t, q.UpsertTranslation(ctx, model.EntityTypePage, p.ID, "en", model.PageAttrTitle, "Second"))
	got, _ = r.ReadTranslatedAttribute(ctx, p, model.PageAttrTitle, "en")
	assert.Equal(t, "First", got)

	p.Translations().Unload()
	got, _ = r.ReadTranslatedAttribute(ctx, p, model.PageAttrTitle, "en")
	assert.Equal(t, "Second", got)
}

func TestDeleteTranslations(t *testing.T) {
	r, q := newResolver(t, "en")
	ctx := context.Background()

	p := &model.Page{ID: 14}
	localization.SetPendingTranslation(p, model.PageAttrTitle, "Bye", "en")
	require.NoError(t, r.SyncTranslations(ctx, p))
	_, err := r.ReadTranslatedAttribute(ctx, p, model.PageAttrTitle, "en")
	require.NoError(t, err)

	require.NoError(t, r.DeleteTranslations(ctx, p))
	require.NoError(t, r.DeleteTranslations(ctx, p))

	rows, err := q.ListTranslations(ctx, model.EntityTypePage, p.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	got, err := r.ReadTranslatedAttribute(ctx, p, model.PageAttrTitle, "en")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestLoadTranslations(t *testing.T) {
	r, _ := newResolver(t, "en")
	ctx := context.Background()

	a := &model.Page{ID: 20}
	b := &model.Page{ID: 21}
	c := &model.Page{ID: 22}
	localization.SetPendingTranslation(a, model.PageAttrTitle, "A", "en")
	localization.SetPendingTranslation(b, model.PageAttrTitle, "B", "en")
	require.NoError(t, r.SyncTranslations(ctx, a))
	require.NoError(t, r.SyncTranslations(ctx, b))

	require.NoError(t, r.LoadTranslations(ctx, a, b, c))

	for _, p := range []*model.Page{a, b, c} {
		_, loaded := p.Translations().Loaded()
		assert.True(t, loaded, "page %d should be loaded", p.ID)
	}

	got, _ := r.ReadTranslatedAttribute(ctx, b, model.PageAttrTitle, "en")
	assert.Equal(t, "B", got)

	got, _ = r.ReadTranslatedAttribute(ctx, c, model.PageAttrTitle, "en")
	assert.Equal(t, "", got)

	require.NoError(t, r.LoadTranslations(ctx))
	assert.Error(t, r.LoadTranslations(ctx, a, &article{id: 1}))
}
