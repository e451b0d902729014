package database

import (
	"database/sql"
	"net/url"
	"time"

	"fmasite/config"
	"fmasite/pkg/logger"

	_ "github.com/lib/pq"
)

// DSN builds the pq connection string for cfg.
func DSN(cfg config.DBConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     cfg.Host + ":" + cfg.Port,
		Path:     "/" + cfg.Name,
		RawQuery: "sslmode=" + url.QueryEscape(cfg.SSLMode),
	}
	return u.String()
}

func Connect(cfg config.DBConfig) *sql.DB {
	db, err := sql.Open("postgres", DSN(cfg))
	if err != nil {
		logger.Sugar.Fatalf("Failed to open database connection: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err = db.Ping(); err == nil {
			logger.Sugar.Info("Successfully connected to the database")
			return db
		}
		logger.Sugar.Infof("Database connection failed, retrying in 2s... (%v)", err)
		time.Sleep(2 * time.Second)
	}
	logger.Sugar.Fatalf("Could not connect to %s after retries", cfg.Host)
	return nil
}
