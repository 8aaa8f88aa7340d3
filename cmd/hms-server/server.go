package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/hms/hms/internal/config"
	"github.com/hms/hms/internal/domain/admission"
	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/domain/catalog"
	"github.com/hms/hms/internal/domain/prescription"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/db"
	"github.com/hms/hms/internal/platform/export"
	"github.com/hms/hms/internal/platform/middleware"
	"github.com/hms/hms/internal/platform/sandbox"
	"github.com/hms/hms/internal/platform/sequence"
)

const (
	billNumberKey         = "hms:seq:bill_number"
	prescriptionNumberKey = "hms:seq:prescription_number"
)

// app holds the wired services of one server process.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	pool     *pgxpool.Pool
	stores   sandbox.Stores
	exporter *export.Exporter
	closers  []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApp selects Postgres or in-memory repositories and the bill-number
// source from the configuration.
func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{
		cfg:      cfg,
		logger:   logger,
		exporter: export.NewExporter(cfg.PublicHost, cfg.HospitalName),
	}

	billNumbers := sequence.Generator(sequence.NewRandom(10000, 99999))
	var rxNumbers sequence.Generator = sequence.NewCounter(1)
	if cfg.RedisURL != "" {
		client, err := sequence.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		billNumbers = sequence.NewRedis(client, billNumberKey, cfg.BillNumberStart)
		rxNumbers = sequence.NewRedis(client, prescriptionNumberKey, 1)
		logger.Info().Msg("bill numbers from redis")
	}

	if cfg.UsesPostgres() {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.pool = pool
		a.closers = append(a.closers, pool.Close)
		logger.Info().Msg("connected to database")

		if cfg.RedisURL == "" {
			// Counters restart with the process; random numbers are retried
			// against the stored ones.
			rxNumbers = sequence.NewRandom(100000, 999999)
		}
		adm := admission.NewService(admission.NewRepoPG(pool))
		cat := catalog.NewService(catalog.NewRepoPG(pool))
		bills := billing.NewPGStore(pool)
		a.stores = sandbox.Stores{
			Admissions:    adm,
			Catalog:       cat,
			Billing:       billing.NewService(bills, bills, adm, cat, billNumbers),
			Prescriptions: prescription.NewService(prescription.NewRepoPG(pool), rxNumbers),
		}
		return a, nil
	}

	logger.Warn().Msg("DATABASE_URL not set, records are kept in memory")
	adm := admission.NewService(admission.NewMemoryRepo())
	cat := catalog.NewService(catalog.NewMemoryRepo())
	bills := billing.NewMemoryStore()
	a.stores = sandbox.Stores{
		Admissions:    adm,
		Catalog:       cat,
		Billing:       billing.NewService(bills, bills, adm, cat, billNumbers),
		Prescriptions: prescription.NewService(prescription.NewMemoryRepo(), rxNumbers),
	}
	return a, nil
}

// seed loads the demo data set when enabled. Postgres databases are only
// seeded while they hold no bills.
func (a *app) seed(ctx context.Context) error {
	if !a.cfg.SeedDemoData {
		return nil
	}
	if _, total, err := a.stores.Billing.ListBills(ctx, billing.Filter{}, 1, 0); err != nil {
		return err
	} else if total > 0 {
		a.logger.Info().Int("bills", total).Msg("skipping demo data, bills already present")
		return nil
	}
	_, err := sandbox.Load(a.logger.WithContext(ctx), time.Now(), a.stores)
	return err
}

func (a *app) authMiddleware() echo.MiddlewareFunc {
	if a.cfg.ResolvedAuthMode() == config.AuthModeJWT {
		return auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     a.cfg.AuthIssuer,
			SigningKey: []byte(a.cfg.AuthSigningKey),
		})
	}
	a.logger.Warn().Msg("AUTH_MODE=development, every request runs as admin")
	return auth.DevAuthMiddleware()
}

// router builds the echo instance with global middleware and every route.
func (a *app) router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(a.logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(a.logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(a.cfg.BodyLimit))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: a.cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
			"store":   a.storeName(),
		})
	})
	if a.pool != nil {
		e.GET("/health/db", db.HealthHandler(a.pool))
	}

	apiV1 := e.Group("/api/v1", a.authMiddleware(), middleware.Audit(a.logger))

	admission.NewHandler(a.stores.Admissions).RegisterRoutes(apiV1)
	catalog.NewHandler(a.stores.Catalog).RegisterRoutes(apiV1)
	billing.NewHandler(a.stores.Billing, a.exporter).RegisterRoutes(apiV1)
	prescription.NewHandler(a.stores.Prescriptions, a.exporter).RegisterRoutes(apiV1)
	sandbox.NewSeedHandler(a.stores).RegisterRoutes(apiV1)

	return e
}

func (a *app) storeName() string {
	if a.pool != nil {
		return "postgres"
	}
	return "memory"
}

func (a *app) addr() string {
	return fmt.Sprintf(":%s", a.cfg.Port)
}
