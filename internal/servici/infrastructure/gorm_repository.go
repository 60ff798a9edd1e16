package infrastructure

import (
	"context"
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mateusmacedo/go-servici/internal/servici/domain"
	pkgApp "github.com/mateusmacedo/go-servici/pkg/application"
)

// MessageRecord é a linha da tabela messages. O id vem do chamador, nunca do banco.
type MessageRecord struct {
	ID    uint32 `gorm:"primaryKey;autoIncrement:false"`
	Value string `gorm:"not null"`
}

func (MessageRecord) TableName() string { return "messages" }

type GormPersistable struct {
	db     *gorm.DB
	logger pkgApp.AppLogger
}

// OpenGormPersistable conecta no Postgres e garante a tabela messages.
func OpenGormPersistable(dsn string, logger pkgApp.AppLogger) (*GormPersistable, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err = db.AutoMigrate(&MessageRecord{}); err != nil {
		return nil, err
	}

	return NewGormPersistable(db, logger), nil
}

func NewGormPersistable(db *gorm.DB, logger pkgApp.AppLogger) *GormPersistable {
	return &GormPersistable{
		db:     db,
		logger: logger,
	}
}

// Save faz upsert numa única instrução: INSERT .. ON CONFLICT (id) DO UPDATE.
func (r *GormPersistable) Save(ctx context.Context, id uint32, value string) error {
	record := MessageRecord{ID: id, Value: value}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&record).Error
	if err != nil {
		pkgApp.LogError(ctx, r.logger, "failed to save message", err, map[string]interface{}{"id": id})
		return domain.NewPersistenceError("save", id, err)
	}

	pkgApp.LogDebug(ctx, r.logger, "message saved", map[string]interface{}{"id": id})
	return nil
}

func (r *GormPersistable) Load(ctx context.Context, id uint32) (string, error) {
	var record MessageRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		pkgApp.LogDebug(ctx, r.logger, "message not found", map[string]interface{}{"id": id})
		return domain.NotFound, nil
	}
	if err != nil {
		pkgApp.LogError(ctx, r.logger, "failed to load message", err, map[string]interface{}{"id": id})
		return "", domain.NewPersistenceError("load", id, err)
	}

	pkgApp.LogDebug(ctx, r.logger, "message loaded", map[string]interface{}{"id": id})
	return record.Value, nil
}

// Close fecha o pool de conexões subjacente.
func (r *GormPersistable) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
