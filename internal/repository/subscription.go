package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/recipebox/recipebox/internal/models"
	"gorm.io/gorm"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(ctx context.Context, subscription *models.Subscription) error {
	if err := r.db.WithContext(ctx).Omit("Subscriber", "Author").Create(subscription).Error; err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepository) Delete(ctx context.Context, subscriberID, authorID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("subscriber_id = ? AND author_id = ?", subscriberID, authorID).
		Delete(&models.Subscription{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to delete subscription: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *SubscriptionRepository) Exists(ctx context.Context, subscriberID, authorID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("subscriber_id = ? AND author_id = ?", subscriberID, authorID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check subscription status: %w", err)
	}
	return count > 0, nil
}

func (r *SubscriptionRepository) ListAuthors(ctx context.Context, subscriberID uuid.UUID, offset, limit int) ([]*models.User, error) {
	var users []*models.User
	if err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.subscriber_id = ?", subscriberID).
		Order("subscriptions.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscribed authors: %w", err)
	}
	return users, nil
}

func (r *SubscriptionRepository) CountSubscribers(ctx context.Context, authorID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("author_id = ?", authorID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count subscribers: %w", err)
	}
	return count, nil
}
