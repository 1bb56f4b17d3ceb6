package server

import (
	"context"
	"fmt"

	"github.com/arzan03/OnboardGate/internal/config"
	"github.com/arzan03/OnboardGate/internal/db"
	"github.com/arzan03/OnboardGate/internal/db/memdb"
	"github.com/arzan03/OnboardGate/internal/services"
	"github.com/arzan03/OnboardGate/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
)

// Stores holds the backends selected by configuration.
type Stores struct {
	Users     services.UserStore
	Questions services.QuestionStore
	// Sessions is nil for the in-memory session backend.
	Sessions fiber.Storage
	// Exports is nil when no object storage is configured.
	Exports services.ObjectStore

	database *mongo.Database
	closers  []func(context.Context) error
}

// OpenStores connects the user and question stores. The memory backend is
// seeded with the default questionnaire and administrator.
func OpenStores(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Stores, error) {
	s := &Stores{}

	switch cfg.StoreBackend {
	case config.BackendMemory:
		s.Users = memdb.NewUserStore()
		s.Questions = memdb.NewQuestionStore()
		if _, err := services.Seed(ctx, s.Users, s.Questions, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			return nil, err
		}
		log.Warn().Str("admin", cfg.Admin.Email).Msg("using in-memory store, data is lost on restart")

	case config.BackendMongo:
		database, err := db.ConnectMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		s.database = database
		s.closers = append(s.closers, database.Client().Disconnect)

		if err := db.EnsureIndexes(ctx, database); err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		s.Users = db.NewUserRepository(database)
		s.Questions = db.NewQuestionRepository(database)
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	return s, nil
}

// OpenSessions selects the session storage.
func (s *Stores) OpenSessions(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	switch cfg.Session.Backend {
	case config.BackendMemory:
		s.Sessions = nil
	case config.BackendMongo:
		if s.database == nil {
			return fmt.Errorf("session backend %q requires STORE_BACKEND=%s", cfg.Session.Backend, config.BackendMongo)
		}
		s.Sessions = db.NewSessionStorage(s.database)
	case config.BackendRedis:
		client, err := db.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		redisStorage := db.NewRedisStorage(client)
		s.Sessions = redisStorage
		s.closers = append(s.closers, func(context.Context) error { return redisStorage.Close() })
	default:
		return fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}

	log.Info().Str("backend", cfg.Session.Backend).Dur("ttl", cfg.Session.TTL).Msg("session storage ready")
	return nil
}

// OpenExports connects object storage when MINIO_ENDPOINT is set.
func (s *Stores) OpenExports(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	if cfg.Minio.Endpoint == "" {
		log.Info().Msg("MINIO_ENDPOINT not set, response export disabled")
		return nil
	}

	m, err := storage.NewMinio(ctx, cfg.Minio)
	if err != nil {
		return err
	}
	s.Exports = m
	log.Info().Str("endpoint", cfg.Minio.Endpoint).Str("bucket", cfg.Minio.Bucket).Msg("connected to MinIO")
	return nil
}

func (s *Stores) Close(ctx context.Context) error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.closers = nil
	return firstErr
}
