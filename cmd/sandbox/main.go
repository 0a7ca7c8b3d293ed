package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/umbrella-client/internal/application/auth"
	"github.com/jhoicas/umbrella-client/internal/application/dispatch"
	"github.com/jhoicas/umbrella-client/internal/domain/repository"
	"github.com/jhoicas/umbrella-client/internal/infrastructure/memory"
	"github.com/jhoicas/umbrella-client/internal/infrastructure/postgres"
	"github.com/jhoicas/umbrella-client/internal/infrastructure/seed"
	httpRouter "github.com/jhoicas/umbrella-client/internal/interfaces/http"
	"github.com/jhoicas/umbrella-client/pkg/config"
	"github.com/jhoicas/umbrella-client/pkg/logger"
)

// devSecret firma los tokens del sandbox cuando JWT_SECRET no está definido en development.
const devSecret = "umbrella-sandbox-dev-secret"

type stores struct {
	users     repository.UserRepository
	branches  repository.BranchRepository
	products  repository.ProductRepository
	movements repository.MovementRepository
	tx        dispatch.TxRunner
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: "umbrella-sandbox",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.Sandbox.Store).
		Msg("iniciando sandbox")

	if cfg.JWT.Secret == "" {
		if cfg.App.Env != "development" {
			log.Fatal().Msg("JWT_SECRET es obligatorio fuera de development")
		}
		log.Warn().Msg("JWT_SECRET vacío, usando secret de desarrollo")
		cfg.JWT.Secret = devSecret
	}

	ctx := context.Background()
	var st stores
	switch cfg.Sandbox.Store {
	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		st = postgresStores(pool)
	default:
		st = memoryStores(memory.NewStore())
	}

	authUC := auth.NewAuthUseCase(st.users, st.branches, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	dispatchUC := dispatch.NewDispatchUseCase(st.tx, st.movements, st.products, st.branches, log)
	catalogUC := dispatch.NewCatalogUseCase(st.products, st.branches)

	if cfg.Sandbox.Seed {
		products, err := seedProducts(cfg.Sandbox)
		if err != nil {
			log.Fatal().Err(err).Msg("leer productos de demostración")
		}
		if _, err := seed.Run(ctx, seed.Deps{
			Auth:     authUC,
			Users:    st.users,
			Branches: st.branches,
			Products: st.products,
			Logger:   log,
		}, products); err != nil {
			log.Fatal().Err(err).Msg("cargar datos de demostración")
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app := httpRouter.NewApp(httpRouter.ServerDeps{
		Name:     cfg.App.Name,
		Logger:   log,
		Registry: reg,
		Router: httpRouter.RouterDeps{
			AuthUC:     authUC,
			DispatchUC: dispatchUC,
			CatalogUC:  catalogUC,
			JWTSecret:  cfg.JWT.Secret,
			UploadDir:  cfg.Sandbox.UploadDir,
		},
	})

	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr()).Msg("sandbox escuchando")
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("sandbox detenido")
}

func memoryStores(s *memory.Store) stores {
	return stores{
		users:     s.Users(),
		branches:  s.Branches(),
		products:  s.Products(),
		movements: s.Movements(),
		tx:        memory.NewTxRunner(s),
	}
}

func postgresStores(pool *pgxpool.Pool) stores {
	return stores{
		users:     postgres.NewUserRepository(pool),
		branches:  postgres.NewBranchRepository(pool),
		products:  postgres.NewProductRepository(pool),
		movements: postgres.NewMovementRepository(pool),
		tx:        postgres.NewTxRunner(pool),
	}
}

// seedProducts usa SANDBOX_SEED_PRODUCTS (CSV) si está definido; si no, los productos por defecto.
func seedProducts(cfg config.SandboxConfig) ([]seed.ProductRow, error) {
	if cfg.SeedProducts == "" {
		return seed.DefaultProducts, nil
	}
	f, err := os.Open(cfg.SeedProducts)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return seed.ReadProductsCSV(f, cfg.SeedLatin1)
}
