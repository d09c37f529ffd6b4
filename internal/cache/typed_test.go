package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/olegiv/ocms-core/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func TestTypedCache_GetOrSet(t *testing.T) {
	ctx := context.Background()
	typed := NewTypedCache[testItem](newTestMemoryCache(t, 0), time.Hour)

	calls := 0
	load := func(context.Context) (testItem, error) {
		calls++
		return testItem{ID: 7, Name: "seven"}, nil
	}

	for range 3 {
		got, err := typed.GetOrSet(ctx, "item:7", load)
		require.NoError(t, err)
		assert.Equal(t, testItem{ID: 7, Name: "seven"}, got)
	}
	assert.Equal(t, 1, calls)

	require.NoError(t, typed.Delete(ctx, "item:7"))
	_, ok := typed.Get(ctx, "item:7")
	assert.False(t, ok)
}

func TestTypedCache_GetOrSetError(t *testing.T) {
	ctx := context.Background()
	typed := NewTypedCache[int64](newTestMemoryCache(t, 0), time.Hour)
	boom := errors.New("boom")

	_, err := typed.GetOrSet(ctx, "k", func(context.Context) (int64, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	_, ok := typed.Get(ctx, "k")
	assert.False(t, ok, "errors must not be cached")
}

func TestTypedCache_UndecodableIsMiss(t *testing.T) {
	ctx := context.Background()
	mem := newTestMemoryCache(t, 0)
	_ = mem.Set(ctx, "k", []byte("{not json"), 0)

	_, ok := NewTypedCache[testItem](mem, time.Hour).Get(ctx, "k")
	assert.False(t, ok)
}

type fakeLocaleLoader struct {
	calls   int
	locales []model.Locale
	err     error
}

func (f *fakeLocaleLoader) ListActiveLocales(context.Context) ([]model.Locale, error) {
	f.calls++
	return f.locales, f.err
}

func TestLocaleCache(t *testing.T) {
	ctx := context.Background()
	loader := &fakeLocaleLoader{locales: []model.Locale{
		{Code: "en", Name: "English", Endonym: "English", Script: "Latn", Regional: "en_GB"},
		{Code: "ar", Name: "Arabic", Endonym: "العربية", Script: "Arab", Regional: "ar_AE", RTL: true},
	}}
	lc := NewLocaleCache(newTestMemoryCache(t, 0), loader, "en", time.Hour)

	require.NoError(t, lc.Preload(ctx))
	codes, err := lc.ActiveCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "ar"}, codes)
	assert.Equal(t, 1, loader.calls)

	catalog, err := lc.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, "en", catalog.Default())
	assert.Equal(t, "rtl", catalog.Direction("ar"))

	loader.locales = loader.locales[:1]
	require.NoError(t, lc.Invalidate(ctx))
	codes, err = lc.ActiveCodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"en"}, codes)
	assert.Equal(t, 2, loader.calls)
}

func TestLocaleCache_LoaderError(t *testing.T) {
	loader := &fakeLocaleLoader{err: errors.New("db down")}
	lc := NewLocaleCache(newTestMemoryCache(t, 0), loader, "en", time.Hour)

	_, err := lc.ActiveCodes(context.Background())
	assert.Error(t, err)
	_, err = lc.Catalog(context.Background())
	assert.Error(t, err)
}

func TestSlugCache(t *testing.T) {
	ctx := context.Background()
	sc := NewSlugCache(newTestMemoryCache(t, 0), time.Hour)

	calls := 0
	load := func(context.Context) (int64, error) {
		calls++
		return 42, nil
	}

	id, err := sc.Resolve(ctx, "page", "en", "home", load)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	_, _ = sc.Resolve(ctx, "page", "en", "home", load)
	assert.Equal(t, 1, calls)

	require.NoError(t, sc.Forget(ctx, "page", model.SlugMap{"en": "home"}))
	_, _ = sc.Resolve(ctx, "page", "en", "home", load)
	assert.Equal(t, 2, calls)
}
