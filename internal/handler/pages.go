// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-core/internal/localization"
	"github.com/olegiv/ocms-core/internal/service"
)

// maxBodySize bounds JSON request bodies.
const maxBodySize = 1 << 20

// PagesHandler serves pages as JSON. Reads are public and only show
// published pages; writes are mounted separately by the router.
type PagesHandler struct {
	pages         *service.PageService
	defaultLocale string
}

// NewPagesHandler creates a new PagesHandler.
func NewPagesHandler(pages *service.PageService, defaultLocale string) *PagesHandler {
	return &PagesHandler{pages: pages, defaultLocale: defaultLocale}
}

// List handles GET /api/pages.
// Query parameters: q (title search), order=desc, recent=1.
func (h *PagesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	locale, ok := h.locale(r)
	if !ok {
		writeNotFound(w, "Page not found")
		return
	}

	q := r.URL.Query()
	views, err := h.pages.ListPages(ctx, locale, service.ListOptions{
		Search:        q.Get("q"),
		Desc:          q.Get("order") == "desc",
		Recent:        q.Get("recent") == "1",
		PublishedOnly: true,
	})
	if err != nil {
		slog.ErrorContext(ctx, "listing pages", "error", err)
		writeInternalError(w, "Failed to list pages")
		return
	}

	writeSuccess(w, views, &Meta{Total: len(views), Locale: locale})
}

// GetBySlug handles GET /api/pages/{slug} and /{locale}/api/pages/{slug}.
func (h *PagesHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	locale, ok := h.locale(r)
	if !ok {
		writeNotFound(w, "Page not found")
		return
	}

	view, err := h.pages.FindBySlug(ctx, chi.URLParam(r, "slug"), locale)
	if errors.Is(err, service.ErrNotFound) || (err == nil && !view.IsPublic()) {
		writeNotFound(w, "Page not found")
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "finding page by slug", "error", err)
		writeInternalError(w, "Failed to retrieve page")
		return
	}

	writeSuccess(w, view, nil)
}

// Create handles POST /api/pages.
func (h *PagesHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := decodePageInput(w, r)
	if !ok {
		return
	}

	view, err := h.pages.CreatePage(r.Context(), in)
	if err != nil {
		h.writeWriteError(w, r, "creating page", err)
		return
	}
	writeCreated(w, view)
}

// Update handles PUT /api/pages/{id}.
func (h *PagesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pageID(w, r)
	if !ok {
		return
	}
	in, ok := decodePageInput(w, r)
	if !ok {
		return
	}

	view, err := h.pages.UpdatePage(r.Context(), id, in)
	if err != nil {
		h.writeWriteError(w, r, "updating page", err)
		return
	}
	writeSuccess(w, view, nil)
}

// Delete handles DELETE /api/pages/{id}.
func (h *PagesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pageID(w, r)
	if !ok {
		return
	}

	if err := h.pages.DeletePage(r.Context(), id); err != nil {
		h.writeWriteError(w, r, "deleting page", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// locale returns the request locale. A {locale} route segment that is not
// an active locale yields false.
func (h *PagesHandler) locale(r *http.Request) (string, bool) {
	locale := localization.LocaleFrom(r.Context(), h.defaultLocale)
	if segment := chi.URLParam(r, "locale"); segment != "" && segment != locale {
		return "", false
	}
	return locale, true
}

func (h *PagesHandler) writeWriteError(w http.ResponseWriter, r *http.Request, action string, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeValidationError(w, verr.Fields)
	case errors.Is(err, service.ErrNotFound):
		writeNotFound(w, "Page not found")
	case errors.Is(err, localization.ErrSlugExhausted):
		writeValidationError(w, map[string]string{"slugs": "No free slug is left for this title"})
	default:
		slog.ErrorContext(r.Context(), action, "error", err)
		writeInternalError(w, "Failed to save page")
	}
}

func decodePageInput(w http.ResponseWriter, r *http.Request) (service.PageInput, bool) {
	var in service.PageInput
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeBadRequest(w, "Invalid JSON body")
		return in, false
	}
	return in, true
}

func pageID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "Invalid page ID")
		return 0, false
	}
	return id, true
}
