// The initialization package contains functions that setup required dependencies such as the SQLite database
// and the background task queue.
package initialization

import (
	"database/sql"
	"errors"
	"time"

	"github.com/golang-migrate/migrate"
	"github.com/golang-migrate/migrate/database/sqlite3"
	_ "github.com/golang-migrate/migrate/source/file"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupDB applies all remaining migrations found in folder.
func SetupDB(db *sql.DB, folder string) error {
	log.Info().Msg("starting migrations")
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		log.Error().Err(err).Msg("failed to create sqlite3 migration driver")
		return err
	}

	mig, err := migrate.NewWithDatabaseInstance(
		"file://"+folder,
		"sqlite3",
		driver,
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create Migrate object")
		return err
	}

	err = mig.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to run migrations")
	}
	return err
}

func OpenDB(connString string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", connString)
	if err != nil {
		log.Error().Err(err).Str("connection string", connString).Msg("failed to open database")
		return nil, err
	}
	return db, db.Ping()
}

// InitQueue creates the backlite client on the application database and installs its schema. Queues must be
// registered before the client is started.
func InitQueue(db *sql.DB, workers int) (*backlite.Client, error) {
	if workers < 1 {
		workers = 1
	}

	client, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		Logger:          QueueLogger{log.Logger},
		ReleaseAfter:    10 * time.Minute,
		NumWorkers:      workers,
		CleanupInterval: time.Hour,
	})
	if err != nil {
		return nil, err
	}

	if err = client.Install(); err != nil {
		log.Error().Err(err).Msg("failed to install task queue schema")
		return nil, err
	}
	return client, nil
}

// QueueLogger forwards backlite's key/value logging to zerolog.
type QueueLogger struct {
	Logger zerolog.Logger
}

func (l QueueLogger) Debug(message string, params ...any) {
	l.Logger.Debug().Fields(params).Msg(message)
}

func (l QueueLogger) Info(message string, params ...any) {
	l.Logger.Info().Fields(params).Msg(message)
}

func (l QueueLogger) Warn(message string, params ...any) {
	l.Logger.Warn().Fields(params).Msg(message)
}

func (l QueueLogger) Error(message string, params ...any) {
	l.Logger.Error().Fields(params).Msg(message)
}
