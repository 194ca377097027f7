// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agencyops/huddle/internal/config"
	"github.com/agencyops/huddle/internal/metrics"
	"github.com/agencyops/huddle/internal/middleware"
)

// NewRouter assembles the full route tree. Everything under /api sits
// behind the identity middleware; /health and /metrics do not.
func NewRouter(h *Handler, cfg *config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(httprate.Limit(
			cfg.RateLimitReqs,
			cfg.RateLimitWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				metrics.APIRateLimitHits.WithLabelValues(r.URL.Path).Inc()
				NewResponseWriter(w, r).Error(http.StatusTooManyRequests, ErrCodeTooManyRequests, "Rate limit exceeded")
			}),
		))
		r.Use(middleware.PrometheusMetrics)
		r.Use(h.RequireIdentity)

		r.Route("/pipeline", func(r chi.Router) {
			r.Get("/", h.ListEnquiries)
			r.Post("/", h.CreateEnquiry)
			r.Get("/export", h.ExportEnquiries)
			r.Get("/e/{id}", h.GetEnquiry)
			r.Post("/e/{id}", h.UpdateEnquiry)
			r.Delete("/e/{id}", h.DeleteEnquiry)
			r.Get("/dashboard/overview", h.DashboardOverview)
			r.Get("/dashboard/channels", h.DashboardChannels)
			r.Get("/dashboard/overview/download", h.DownloadDashboardOverview)
			r.Get("/dashboard/breakdown/download", h.DownloadDashboardBreakdown)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", h.ListPosts)
			r.Post("/", h.CreatePost)
			r.Get("/p/{id}", h.GetPost)
			r.Post("/p/{id}/vote", h.VotePost)
			r.Post("/p/{id}/comment", h.CreateComment)
			r.Get("/p/{id}/comments", h.ListComments)
		})
		r.Post("/comments/c/{id}/vote", h.VoteComment)

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", h.ListMyReviews)
			r.Post("/", h.CreateReview)
			r.Get("/r/{id}", h.GetReview)
			r.Delete("/r/{id}", h.DeleteReview)
			r.Get("/r/{id}/form", h.GetReviewForm)
			r.Post("/r/{id}/form", h.UpdateReviewForm)
			r.Post("/r/{id}/response", h.CreateResponse)
			r.Post("/response/{id}", h.UpdateResponse)
			r.Delete("/response/{id}", h.DeleteResponse)
			r.Get("/reports/{dept}", h.DepartmentReport)
		})

		r.Route("/user", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Get("/me", h.Me)
			r.Post("/me", h.UpdateMe)
			r.Get("/me/notifications", h.MyNotifications)
			r.Get("/info", h.UserInfo)
			r.Get("/u/{id}", h.GetUser)
			r.Post("/u/{id}", h.UpdateMemberships)
		})

		r.Post("/preview", h.CreatePreview)
	})

	return r
}
