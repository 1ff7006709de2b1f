package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vetclinic/clinic/internal/config"
	"github.com/vetclinic/clinic/internal/domain/consultation"
	"github.com/vetclinic/clinic/internal/domain/patient"
	"github.com/vetclinic/clinic/internal/domain/scheduling"
	"github.com/vetclinic/clinic/internal/domain/triage"
	"github.com/vetclinic/clinic/internal/domain/visit"
	"github.com/vetclinic/clinic/internal/platform/auth"
	"github.com/vetclinic/clinic/internal/platform/cache"
	"github.com/vetclinic/clinic/internal/platform/clock"
	"github.com/vetclinic/clinic/internal/platform/db"
	"github.com/vetclinic/clinic/internal/platform/metrics"
	"github.com/vetclinic/clinic/internal/platform/middleware"
)

const version = "0.1.0"

// server owns the HTTP router and the connections it was built on.
type server struct {
	echo   *echo.Echo
	pool   *pgxpool.Pool
	redis  *cache.Redis
	stores stores
}

func (s *server) Close() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
}

type stores struct {
	visits   visit.Repository
	patients patient.Repository
	triage   triage.Repository
	records  consultation.Repository
}

func memoryStores() stores {
	return stores{
		visits:   visit.NewInMemoryRepository(),
		patients: patient.NewInMemoryRepository(),
		triage:   triage.NewInMemoryRepository(),
		records:  consultation.NewInMemoryRepository(),
	}
}

func pgStores(pool *pgxpool.Pool) stores {
	return stores{
		visits:   visit.NewRepoPG(pool),
		patients: patient.NewRepoPG(pool),
		triage:   triage.NewRepoPG(pool),
		records:  consultation.NewRepoPG(pool),
	}
}

// newServer builds the router for cfg. cfg must already be validated.
func newServer(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*server, error) {
	srv := &server{}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	hours, err := cfg.Hours()
	if err != nil {
		return nil, err
	}
	weekdays, err := cfg.Weekdays()
	if err != nil {
		return nil, err
	}
	clk := clock.New(loc)

	st := memoryStores()
	if !cfg.MemoryStore {
		srv.pool, err = db.NewPool(ctx, db.PoolConfig{
			URL:      cfg.DatabaseURL,
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		logger.Info().Msg("connected to database")
		st = pgStores(srv.pool)
	} else {
		logger.Warn().Msg("using in-memory store, data is lost on restart")
	}
	srv.stores = st

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	clinicMetrics := metrics.NewClinicMetrics(reg)

	// Services
	visits := visit.NewService(st.visits, clk, logger)
	visits.SetMetrics(clinicMetrics)
	patients := patient.NewService(st.patients)
	visits.SetPatients(patients)

	records := consultation.NewService(st.records, visits, nil, clk, logger)
	records.SetMetrics(clinicMetrics)
	intake := triage.NewService(st.triage, visits, records, patients, clk, logger)
	intake.SetMetrics(clinicMetrics)
	records.SetComplaints(intake)

	sched := scheduling.NewService(visits, clk, hours, weekdays, logger)
	if cfg.RedisURL != "" {
		rc, err := cache.Connect(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, scheduling reads are not cached")
		} else {
			srv.redis = rc
			sched.SetCache(rc)
			logger.Info().Msg("connected to redis")
		}
	}
	visits.OnChange(sched.Invalidate)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	srv.echo = e

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", auth.DevRoleHeader},
	}))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(middleware.HTTPMetrics(reg))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	if srv.pool != nil {
		e.GET("/health/db", db.HealthHandler(srv.pool))
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	apiV1 := e.Group("/api/v1")
	if cfg.ResolvedAuthMode() == "development" {
		apiV1.Use(auth.DevAuthMiddleware())
	} else {
		apiV1.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			JWKSURL:    cfg.AuthJWKSURL,
			SigningKey: cfg.SigningKey(),
		}))
	}

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))
	apiV1.Use(middleware.Audit(logger, middleware.AuditRecorderFunc(func(entry middleware.AuditEntry) error {
		clinicMetrics.ObserveRecordAccess(entry.Resource, entry.Action)
		return nil
	})))

	visit.NewHandler(visits).RegisterRoutes(apiV1)
	patient.NewHandler(patients).RegisterRoutes(apiV1)
	triage.NewHandler(intake).RegisterRoutes(apiV1)
	consultation.NewHandler(records).RegisterRoutes(apiV1)
	scheduling.NewHandler(sched).RegisterRoutes(apiV1)

	return srv, nil
}

func printStatus(w io.Writer, statuses []db.MigrationStatus) {
	fmt.Fprintf(w, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(w, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(w, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}
