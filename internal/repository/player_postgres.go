package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rocketscienceinc/tictactoe-versus/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-versus/internal/entity"
)

type playerRecord struct {
	ID        string    `gorm:"primaryKey;type:text"`
	Email     string    `gorm:"uniqueIndex;not null"`
	Name      string    `gorm:"not null;default:''"`
	Username  string    `gorm:"not null;default:''"`
	CreatedAt time.Time `gorm:"not null"`
}

func (playerRecord) TableName() string {
	return "users"
}

type postgresPlayer struct {
	db *gorm.DB
}

// NewPostgresPlayerRepository - migrates the users table and returns the directory backed by it.
func NewPostgresPlayerRepository(ctx context.Context, db *gorm.DB) (PlayerRepository, error) {
	if err := db.WithContext(ctx).AutoMigrate(&playerRecord{}); err != nil {
		return nil, fmt.Errorf("can't migrate users table: %w", err)
	}

	return &postgresPlayer{
		db: db,
	}, nil
}

func (that *postgresPlayer) Save(ctx context.Context, player *entity.Player) error {
	record := playerRecord{
		ID:        player.ID,
		Email:     player.Email,
		Name:      player.Name,
		Username:  player.Username,
		CreatedAt: player.CreatedAt,
	}

	err := that.db.WithContext(ctx).Create(&record).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.ErrEmailTaken
	}

	if err != nil {
		return fmt.Errorf("can't save player: %w", err)
	}

	return nil
}

func (that *postgresPlayer) FindByEmail(ctx context.Context, email string) (*entity.Player, error) {
	return that.findOne(ctx, "email = ?", email)
}

func (that *postgresPlayer) FindByID(ctx context.Context, id string) (*entity.Player, error) {
	return that.findOne(ctx, "id = ?", id)
}

func (that *postgresPlayer) findOne(ctx context.Context, query string, arg string) (*entity.Player, error) {
	var record playerRecord

	err := that.db.WithContext(ctx).Where(query, arg).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("can't find player: %w", err)
	}

	return &entity.Player{
		ID:        record.ID,
		Email:     record.Email,
		Name:      record.Name,
		Username:  record.Username,
		CreatedAt: record.CreatedAt.UTC(),
	}, nil
}
