package main

import (
	"context"
	"flag"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/hackgods/carepulse-appointments/internal/config"
	"github.com/hackgods/carepulse-appointments/internal/db"
	"github.com/hackgods/carepulse-appointments/internal/logger"
)

func main() {
	count := flag.Int("patients", 500, "number of fake patients to create")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "text").Fatalf("config load error: %v", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.Info("seed starting")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := db.Migrate(ctx, cfg.PostgresDSN); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	faker := gofakeit.New(uint64(time.Now().UnixNano()))

	if err := seedPatients(context.Background(), log, pool, faker, *count); err != nil {
		log.Fatalf("seed patients: %v", err)
	}

	log.Info("seed complete")
}

// seedPatients creates one patient per fake user id. The user ids are logged
// so they can be used against /users/{userId}/appointments.
func seedPatients(ctx context.Context, log *logrus.Logger, pool *pgxpool.Pool, faker *gofakeit.Faker, count int) error {
	log.Infof("seeding %d patients", count)

	const batchSize = 500

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			userID := uuid.New()

			_, err := tx.Exec(ctx, `
				INSERT INTO patients (id, user_id, name, email, created_at, updated_at)
				VALUES ($1, $2, $3, $4, now(), now())
			`, uuid.New(), userID, faker.Name(), faker.Email())
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}

			if i == offset {
				log.WithField("user_id", userID).Debug("sample user")
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		log.Infof("patients seeded: %d/%d", end, count)
	}

	return nil
}
