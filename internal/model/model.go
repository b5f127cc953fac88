// Package model 定义数据模型
package model

import (
	"gorm.io/gorm"
)

// AutoMigrate 按模型键执行自动迁移
func AutoMigrate(db *gorm.DB, key string) error {
	switch key {

	case "NoteRecord":
		return db.AutoMigrate(NoteRecord{})
	}
	return nil
}

// AutoMigrateAll 迁移全部模型
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(NoteRecord{})
}
