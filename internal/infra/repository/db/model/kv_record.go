package model

import "time"

// key 在 mysql 為保留字，欄位加上 record_ 前綴
type KVRecord struct {
	RecordKey   string    `gorm:"primaryKey;type:varchar(255)"`
	RecordValue string    `gorm:"type:text;not null"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (KVRecord) TableName() string {
	return "kv_records"
}
