package main

import (
	"context"
	"errors"
	"time"

	"github.com/joho/godotenv"

	"github.com/casefile-io/access-engine/internal/api"
	"github.com/casefile-io/access-engine/internal/api/handler"
	"github.com/casefile-io/access-engine/internal/core/access"
	"github.com/casefile-io/access-engine/internal/core/domain"
	"github.com/casefile-io/access-engine/internal/core/ports"
	"github.com/casefile-io/access-engine/internal/core/service"
	"github.com/casefile-io/access-engine/internal/infrastructure/config"
	mongostore "github.com/casefile-io/access-engine/internal/infrastructure/db/mongo"
	"github.com/casefile-io/access-engine/internal/infrastructure/db/postgres"
	redisstore "github.com/casefile-io/access-engine/internal/infrastructure/db/redis"
	"github.com/casefile-io/access-engine/pkg/fieldcipher"
	"github.com/casefile-io/access-engine/pkg/logger"
)

func main() {
	// .env is a local development convenience; absence is not an error.
	_ = godotenv.Load()

	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// The permission matrix is static policy. A malformed matrix must stop
	// the process, not surface per request.
	if err := access.Validate(); err != nil {
		log.Fatal().Err(err).Msg("permission matrix invalid")
	}

	cipher, err := fieldcipher.New(cfg.EncryptionKeys)
	if err != nil {
		log.Fatal().Err(err).Msg("encryption keyring unusable")
	}
	if err := cipher.SelfCheck(); err != nil {
		log.Fatal().Err(err).Msg("encryption keyring failed self-check")
	}

	// --- Stores ---
	db, err := postgres.Connect(cfg.Postgres.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connect failed")
	}
	if err := postgres.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("postgres migration failed")
	}

	mongoClient, mongoDB, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect failed")
	}
	defer func() { _ = mongoClient.Disconnect(ctx) }()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect failed")
	}
	defer func() { _ = rdb.Close() }()

	// --- Repositories ---
	clientRepo := postgres.NewClientRepository(db)
	noteRepo := postgres.NewNoteRepository(db, cipher)
	attrRepo := postgres.NewAttributeRepository(db, cipher)
	blockRepo := postgres.NewBlockRepository(db)
	dvRepo := postgres.NewDvRequestRepository(db)
	groupRepo := postgres.NewGroupRepository(db)
	portalRepo := postgres.NewPortalAccountRepository(db)
	userRepo := postgres.NewUserRepository(db)
	toggleRepo := postgres.NewToggleRepository(db)

	if err := attrRepo.SeedDefinitions(ctx, domain.DefaultAttributeDefinitions); err != nil {
		log.Fatal().Err(err).Msg("attribute catalogue seed failed")
	}
	if err := seedToggles(ctx, toggleRepo); err != nil {
		log.Fatal().Err(err).Msg("toggle seed failed")
	}

	auditRepo := mongostore.NewAuditRepository(mongoDB)
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("audit indexes failed")
	}

	toggleCache := redisstore.NewToggleCache(rdb, cfg.Redis.ToggleTTL)

	// --- Services ---
	events := domain.NewEventBus()

	auditService := service.NewAuditService(auditRepo, log)
	toggleService := service.NewToggleService(toggleRepo, toggleCache, auditService, log)
	resolver := service.NewResolverService(clientRepo, blockRepo, log)
	consent := service.NewConsentService(resolver, toggleService, log)
	noteService := service.NewNoteService(noteRepo, resolver, consent, auditService, log)
	attrService := service.NewAttributeService(attrRepo, resolver, auditService, log)
	safetyService := service.NewSafetyService(clientRepo, blockRepo, dvRepo, userRepo, resolver, toggleService, auditService, events, log)
	groupService := service.NewGroupService(groupRepo, resolver, blockRepo, log)
	clientService := service.NewClientService(clientRepo, resolver, auditService, events, log)
	authService := service.NewAuthService(userRepo, auditService, cfg.JWTSecret, 24*time.Hour)

	service.RegisterPortalListeners(events, portalRepo, auditService, log)

	// --- HTTP ---
	e := api.NewRouter(api.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Decision:   handler.NewDecisionHandler(resolver),
		Client:     handler.NewClientHandler(clientService),
		Note:       handler.NewNoteHandler(noteService),
		Attribute:  handler.NewAttributeHandler(attrService),
		Safety:     handler.NewSafetyHandler(safetyService),
		Group:      handler.NewGroupHandler(groupService),
		Audit:      handler.NewAuditHandler(auditService),
		Toggle:     handler.NewToggleHandler(toggleService),
		Health:     handler.NewHealthHandler(),
		HealthDeps: handler.NewHealthDependenciesHandler(db, mongoDB, rdb),
	}, cfg.JWTSecret, log)

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting access engine")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// seedToggles writes defaults for toggles that have never been set, so a
// fresh deployment reads explicit values instead of not-found errors. Both
// default to off: sharing and the removal workflow are opt-in.
func seedToggles(ctx context.Context, repo ports.ToggleRepository) error {
	for _, name := range []string{ports.ToggleCrossProgramSharing, ports.ToggleDVWorkflow} {
		if _, err := repo.Get(ctx, name); err == nil {
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if err := repo.Set(ctx, name, false); err != nil {
			return err
		}
	}
	return nil
}
