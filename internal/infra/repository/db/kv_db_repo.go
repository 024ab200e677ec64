package db

import (
	"context"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/parkeat/internal/infra/kv"
	"github.com/RoyceAzure/lab/parkeat/internal/infra/repository/db/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVDBRepo 以單表 kv_records 存放狀態
type KVDBRepo struct {
	db *DbDao
}

func NewKVDBRepo(db *DbDao) *KVDBRepo {
	return &KVDBRepo{db: db}
}

var _ kv.Store = (*KVDBRepo)(nil)

func (r *KVDBRepo) Get(ctx context.Context, key string) ([]byte, error) {
	var record model.KVRecord
	err := r.db.WithContext(ctx).Where("record_key = ?", key).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(record.RecordValue), nil
}

// Set upsert，postgres 與 mysql 皆支援
func (r *KVDBRepo) Set(ctx context.Context, key string, value []byte) error {
	record := model.KVRecord{
		RecordKey:   key,
		RecordValue: string(value),
		UpdatedAt:   time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "record_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"record_value", "updated_at"}),
	}).Create(&record).Error
}

func (r *KVDBRepo) Remove(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Where("record_key = ?", key).Delete(&model.KVRecord{}).Error
}
