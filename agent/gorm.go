package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Checkpoint is the row GormCache stores per key.
type Checkpoint struct {
	Key       string `gorm:"column:thread_key;primaryKey;size:191"`
	Data      []byte `gorm:"column:data"`
	UpdatedAt time.Time
}

func (Checkpoint) TableName() string {
	return "checkpoints"
}

// GormCache stores encoded values in a SQL table.
type GormCache[S any] struct {
	db    *gorm.DB
	codec Codec[S]
}

// NewGormCache migrates the checkpoints table and returns a cache on it.
func NewGormCache[S any](db *gorm.DB, codec Codec[S]) (*GormCache[S], error) {
	if err := db.AutoMigrate(&Checkpoint{}); err != nil {
		return nil, fmt.Errorf("gorm cache: migrate: %w", err)
	}
	if codec == nil {
		codec = SonicCodec[S]{}
	}
	return &GormCache[S]{db: db, codec: codec}, nil
}

func (c *GormCache[S]) Set(ctx context.Context, key string, val S) error {
	data, err := c.codec.Encode(val)
	if err != nil {
		return fmt.Errorf("gorm cache: encode %s: %w", key, err)
	}
	row := Checkpoint{Key: key, Data: data, UpdatedAt: time.Now()}
	err = c.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "thread_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("gorm cache: save %s: %w", key, err)
	}
	return nil
}

func (c *GormCache[S]) Get(ctx context.Context, key string) (S, bool, error) {
	var (
		zero S
		row  Checkpoint
	)
	err := c.db.WithContext(ctx).Where("thread_key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("gorm cache: load %s: %w", key, err)
	}
	val, err := c.codec.Decode(row.Data)
	if err != nil {
		return zero, false, fmt.Errorf("gorm cache: decode %s: %w", key, err)
	}
	return val, true, nil
}

func (c *GormCache[S]) Del(ctx context.Context, key string) error {
	err := c.db.WithContext(ctx).Where("thread_key = ?", key).Delete(&Checkpoint{}).Error
	if err != nil {
		return fmt.Errorf("gorm cache: delete %s: %w", key, err)
	}
	return nil
}

func (c *GormCache[S]) Exists(ctx context.Context, key string) (bool, error) {
	var n int64
	err := c.db.WithContext(ctx).Model(&Checkpoint{}).Where("thread_key = ?", key).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("gorm cache: count %s: %w", key, err)
	}
	return n > 0, nil
}
