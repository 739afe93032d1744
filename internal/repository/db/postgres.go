package db

import (
	"database/sql"

	"github.com/zhwltlr/ggaba-sub000/internal/config"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func NewPostgresDB(cfg *config.PostgresConfig) (*sql.DB, error) {
	logrus.WithField("conn", cfg.Conn).Info("connecting db")
	db, err := sql.Open("postgres", cfg.Conn)

	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		return nil, err
	}

	return db, nil
}
