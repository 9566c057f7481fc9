package storage

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type PostgresStorage struct {
	Connection *gorm.DB
}

func NewPostgresStorage(dsn string) (*PostgresStorage, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("can't connect to postgres: %w", err)
	}

	return &PostgresStorage{Connection: conn}, nil
}

func (that *PostgresStorage) Close() error {
	sqlDB, err := that.Connection.DB()
	if err != nil {
		return fmt.Errorf("can't get sql db: %w", err)
	}

	return sqlDB.Close()
}
