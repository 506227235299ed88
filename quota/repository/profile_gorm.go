package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/AzielCF/az-storage/quota/domain"
	"gorm.io/gorm"
)

// --- Persistence Model ---

type profileModel struct {
	ID          string    `gorm:"primaryKey"`
	Email       string    `gorm:"index"`
	StorageUsed int64     `gorm:"not null;default:0"`
	FilesCount  int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (profileModel) TableName() string {
	return "profiles"
}

var ErrDuplicateProfile = errors.New("profile already exists")

// --- Repository Implementation ---

type ProfileGormRepository struct {
	db *gorm.DB
}

func NewProfileGormRepository(db *gorm.DB) *ProfileGormRepository {
	return &ProfileGormRepository{db: db}
}

func (r *ProfileGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&profileModel{})
}

func (r *ProfileGormRepository) Create(ctx context.Context, p *domain.Profile) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	model := toProfileModel(p)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") || strings.Contains(err.Error(), "duplicate key value") {
			return ErrDuplicateProfile
		}
		return err
	}
	return nil
}

func (r *ProfileGormRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	var m profileModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return fromProfileModel(m), nil
}

func (r *ProfileGormRepository) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&profileModel{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// UpdateStorageUsage touches only the usage columns. Zero rows affected is not
// reported: a user without a profile row keeps uploading.
func (r *ProfileGormRepository) UpdateStorageUsage(ctx context.Context, userID string, usage domain.UsageSnapshot, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&profileModel{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"storage_used": usage.TotalSize,
			"files_count":  usage.FilesCount,
			"updated_at":   at,
		}).Error
}

// Mappers

func toProfileModel(p *domain.Profile) profileModel {
	return profileModel{
		ID:          p.ID,
		Email:       p.Email,
		StorageUsed: p.StorageUsed,
		FilesCount:  p.FilesCount,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func fromProfileModel(m profileModel) *domain.Profile {
	return &domain.Profile{
		ID:          m.ID,
		Email:       m.Email,
		StorageUsed: m.StorageUsed,
		FilesCount:  m.FilesCount,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
