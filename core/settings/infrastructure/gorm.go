package infrastructure

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/AzielCF/az-storage/core/settings/domain"
)

type SettingModel struct {
	Key   string `gorm:"primaryKey;column:key"`
	Value string `gorm:"column:value"`
}

func (SettingModel) TableName() string {
	return "storage_settings"
}

type SettingsGormRepository struct {
	db *gorm.DB
}

func NewSettingsGormRepository(db *gorm.DB) *SettingsGormRepository {
	return &SettingsGormRepository{db: db}
}

func (r *SettingsGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&SettingModel{})
}

// Get returns "" for a key that was never set.
func (r *SettingsGormRepository) Get(ctx context.Context, key string) (string, error) {
	var m SettingModel
	if err := r.db.WithContext(ctx).First(&m, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(m.Value), nil
}

func (r *SettingsGormRepository) Set(ctx context.Context, key string, value string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"value": value}),
	}).Create(&SettingModel{Key: key, Value: value}).Error
}

func (r *SettingsGormRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&SettingModel{}, "key = ?", key).Error
}

func (r *SettingsGormRepository) List(ctx context.Context) ([]domain.Setting, error) {
	var rows []SettingModel
	if err := r.db.WithContext(ctx).Order("key").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Setting, 0, len(rows))
	for _, m := range rows {
		out = append(out, domain.Setting{Key: m.Key, Value: strings.TrimSpace(m.Value)})
	}
	return out, nil
}
