package history

import (
	"context"
	"time"

	"github.com/morfien101/fila/pkg/fila"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type servedRow struct {
	EntryID      string `gorm:"primaryKey;size:36"`
	Queue        string `gorm:"index;size:128"`
	Name         string `gorm:"size:80"`
	ServiceClass string `gorm:"size:1"`
	Position     int
	ArrivalTime  time.Time
	ServiceTime  time.Time `gorm:"index"`
}

func (servedRow) TableName() string { return "served_records" }

func newServedRow(queue string, rec fila.ServedRecord) servedRow {
	doc := NewDocument(queue, rec)
	return servedRow{
		EntryID:      doc.ID,
		Queue:        doc.Queue,
		Name:         doc.Name,
		ServiceClass: doc.ServiceClass,
		Position:     doc.Position,
		ArrivalTime:  doc.ArrivalTime,
		ServiceTime:  doc.ServiceTime,
	}
}

type PostgresSink struct {
	db    *gorm.DB
	queue string
}

// NewPostgresSink connects and creates the served_records table if needed.
func NewPostgresSink(dsn, queue string) (*PostgresSink, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to postgresql")
	}
	if err := db.AutoMigrate(&servedRow{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate served_records")
	}
	return &PostgresSink{db: db, queue: queue}, nil
}

func (s *PostgresSink) Write(ctx context.Context, rec fila.ServedRecord) error {
	row := newServedRow(s.queue, rec)
	return s.db.WithContext(ctx).Create(&row).Error
}

func (s *PostgresSink) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
