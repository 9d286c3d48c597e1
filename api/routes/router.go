package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nyumbalink/listings-backend/api/controllers"
	"github.com/nyumbalink/listings-backend/api/middleware"
	"github.com/nyumbalink/listings-backend/internal/listings"
	"github.com/nyumbalink/listings-backend/internal/media"
	"github.com/nyumbalink/listings-backend/internal/pages"
	"github.com/nyumbalink/listings-backend/internal/users"
	"github.com/nyumbalink/listings-backend/pkg/config"
	"github.com/nyumbalink/listings-backend/pkg/db"
	"github.com/nyumbalink/listings-backend/pkg/logger"
	"github.com/nyumbalink/listings-backend/pkg/redis"
	"github.com/nyumbalink/listings-backend/pkg/storage/gcs"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gcsClient gcs.Pinger,
	listingService listings.Service,
	mediaService media.Service,
	pageService pages.Service,
	userService users.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	maxUploadBytes := int64(cfg.Media.MaxUploadMB) << 20

	r.Route("/health", func(r chi.Router) {
		deps := map[string]controllers.Pinger{"postgres": dbP, "gcs": gcsClient}
		if redisClient != nil {
			deps["redis"] = redisClient
		}
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		if redisClient != nil {
			writePolicy := middleware.NewWriteRateLimitPolicy(
				"write",
				cfg.RateLimit.WriteWindow,
				cfg.RateLimit.WriteIPLimit,
			)
			r.Use(middleware.Idempotency(redisClient, logg))
			r.Use(middleware.WriteRateLimit(writePolicy, redisClient, logg))
		}

		r.Route("/listings", func(r chi.Router) {
			r.Get("/", controllers.ListListings(listingService, logg))
			r.Post("/", controllers.CreateListing(listingService, logg))
			r.Post("/featured", controllers.SetFeaturedListings(listingService, logg))
			r.Route("/{listingId}", func(r chi.Router) {
				r.Get("/", controllers.GetListing(listingService, logg))
				r.Patch("/", controllers.PatchListing(listingService, logg))
				r.Delete("/", controllers.DeleteListing(listingService, logg))
				r.Post("/media", controllers.CreateListingMedia(mediaService, maxUploadBytes, logg))
			})
		})

		r.Route("/media/{mediaId}", func(r chi.Router) {
			r.Put("/", controllers.ReplaceMedia(mediaService, maxUploadBytes, logg))
			r.Delete("/", controllers.DeleteMedia(mediaService, logg))
		})

		r.Route("/pages", func(r chi.Router) {
			r.Get("/", controllers.ListPages(pageService, logg))
			r.Post("/", controllers.CreatePage(pageService, logg))
			r.Route("/{slug}", func(r chi.Router) {
				r.Get("/", controllers.GetPage(pageService, logg))
				r.Patch("/", controllers.PatchPage(pageService, logg))
				r.Delete("/", controllers.DeletePage(pageService, logg))
				r.Post("/media", controllers.CreatePageMedia(mediaService, maxUploadBytes, logg))
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.ListUsers(userService, logg))
			r.Post("/", controllers.CreateUser(userService, logg))
			r.Route("/{userId}", func(r chi.Router) {
				r.Get("/", controllers.GetUser(userService, logg))
				r.Patch("/", controllers.PatchUser(userService, logg))
				r.Delete("/", controllers.DeleteUser(userService, logg))
			})
		})
	})

	return r
}
