package repository

import (
	"context"
	"errors"
	"time"

	"github.com/AzielCF/az-storage/quota/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- Persistence Model ---

type subscriptionModel struct {
	ID               string `gorm:"primaryKey"`
	UserID           string `gorm:"uniqueIndex:idx_subscriptions_user;not null"`
	PlanName         string `gorm:"not null;default:'free'"`
	Status           string `gorm:"index:idx_subscriptions_status;default:'active'"`
	CurrentPeriodEnd *time.Time
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

func (subscriptionModel) TableName() string {
	return "subscriptions"
}

// --- Repository Implementation ---

type SubscriptionGormRepository struct {
	db *gorm.DB
}

func NewSubscriptionGormRepository(db *gorm.DB) *SubscriptionGormRepository {
	return &SubscriptionGormRepository{db: db}
}

func (r *SubscriptionGormRepository) InitSchema(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&subscriptionModel{})
}

// Upsert keeps one subscription per user, replacing plan, status and period.
func (r *SubscriptionGormRepository) Upsert(ctx context.Context, sub *domain.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	now := time.Now()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now

	model := toSubscriptionModel(sub)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"plan_name", "status", "current_period_end", "updated_at"}),
	}).Create(&model).Error
}

func (r *SubscriptionGormRepository) GetByUserID(ctx context.Context, userID string) (*domain.Subscription, error) {
	var m subscriptionModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, err
	}
	return fromSubscriptionModel(m), nil
}

// Mappers

func toSubscriptionModel(s *domain.Subscription) subscriptionModel {
	return subscriptionModel{
		ID:               s.ID,
		UserID:           s.UserID,
		PlanName:         s.PlanName,
		Status:           s.Status,
		CurrentPeriodEnd: s.CurrentPeriodEnd,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func fromSubscriptionModel(m subscriptionModel) *domain.Subscription {
	return &domain.Subscription{
		ID:               m.ID,
		UserID:           m.UserID,
		PlanName:         m.PlanName,
		Status:           m.Status,
		CurrentPeriodEnd: m.CurrentPeriodEnd,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
