// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/olegiv/ocms-core/internal/imaging"
	"github.com/olegiv/ocms-core/internal/metrics"
	"github.com/olegiv/ocms-core/internal/util"
)

// etagSpace namespaces image ETags.
var etagSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("ocms:image"))

// ImageHandler serves transformed images.
type ImageHandler struct {
	transformer *imaging.Transformer
	pool        *ants.Pool
	metrics     *metrics.Metrics
}

// NewImageHandler creates a new ImageHandler. Transforms run on pool; a nil
// pool runs them on the request goroutine.
func NewImageHandler(t *imaging.Transformer, pool *ants.Pool, m *metrics.Metrics) *ImageHandler {
	return &ImageHandler{transformer: t, pool: pool, metrics: m}
}

type transformResult struct {
	res *imaging.Result
	err error
}

// Serve handles GET /img/{options}/*.
func (h *ImageHandler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	options := chi.URLParam(r, "options")
	format := metricFormat(imaging.ParseOptions(options).Format)

	key, err := util.CleanObjectKey(chi.URLParam(r, "*"))
	if err != nil {
		h.metrics.ObserveTransform(format, metrics.OutcomeNotFound, 0)
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	start := time.Now()
	done := make(chan transformResult, 1)
	run := func() {
		res, err := h.transformer.Transform(ctx, key, options)
		done <- transformResult{res: res, err: err}
	}

	if h.pool == nil {
		run()
	} else if err := h.pool.Submit(run); err != nil {
		slog.WarnContext(ctx, "image pool rejected transform", "error", err)
		w.Header().Set("Retry-After", "1")
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	var out transformResult
	select {
	case out = <-done:
	case <-ctx.Done():
		return
	}

	switch {
	case errors.Is(out.err, imaging.ErrNotFound):
		h.metrics.ObserveTransform(format, metrics.OutcomeNotFound, 0)
		http.Error(w, "File not found", http.StatusNotFound)
		return
	case errors.Is(out.err, imaging.ErrUnsupported):
		h.metrics.ObserveTransform(format, metrics.OutcomeUnsupported, 0)
		http.Error(w, "Unsupported Media Type", http.StatusUnsupportedMediaType)
		return
	case out.err != nil:
		h.metrics.ObserveTransform(format, metrics.OutcomeError, 0)
		slog.ErrorContext(ctx, "transforming image", "key", key, "options", options, "error", out.err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	res := out.res
	etag := `"` + uuid.NewSHA1(etagSpace, res.Body).String() + `"`

	header := w.Header()
	header.Set("Cache-Control", res.CacheControl)
	header.Set("ETag", etag)
	header.Set("Vary", "Accept")

	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		h.metrics.ObserveTransform(format, metrics.OutcomeNotModified, time.Since(start))
		w.WriteHeader(http.StatusNotModified)
		return
	}

	header.Set("Content-Type", res.ContentType)
	header.Set("Content-Length", strconv.Itoa(len(res.Body)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(res.Body)
	}
	h.metrics.ObserveTransform(format, metrics.OutcomeOK, time.Since(start))
}

// etagMatches reports whether an If-None-Match value lists etag.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for candidate := range strings.SplitSeq(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

// metricFormat bounds the format label to the encodable formats.
func metricFormat(format string) string {
	switch format {
	case "png", "gif", "webp":
		return format
	}
	return "jpg"
}
