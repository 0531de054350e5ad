package models

import (
	"gorm.io/gorm"
)

// GormMatchRecord 归档的对局记录
type GormMatchRecord struct {
	gorm.Model
	RoomCode     string       `gorm:"index;not null"`
	RoomName     string       `gorm:"not null"`
	PlayerCount  int          `gorm:"not null"`
	Rounds       int          `gorm:"not null"`
	FinishReason string       `gorm:"not null"`
	Winners      []string     `gorm:"type:jsonb;serializer:json"`
	Teams        []TeamResult `gorm:"type:jsonb;serializer:json"`
	Duration     int          `gorm:"default:0"` // 对局时长(秒)
}
