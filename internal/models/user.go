package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username  string         `json:"username" gorm:"uniqueIndex;not null"`
	Email     string         `json:"email" gorm:"uniqueIndex;not null"`
	Password  string         `json:"-" gorm:"not null"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Avatar    string         `json:"avatar"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

type Subscription struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SubscriberID uuid.UUID `json:"subscriber_id" gorm:"type:uuid;not null;uniqueIndex:idx_subscriber_author"`
	AuthorID     uuid.UUID `json:"author_id" gorm:"type:uuid;not null;uniqueIndex:idx_subscriber_author"`
	CreatedAt    time.Time `json:"created_at"`

	Subscriber User `json:"subscriber" gorm:"foreignKey:SubscriberID;constraint:OnDelete:CASCADE"`
	Author     User `json:"author" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}

func (Subscription) TableName() string {
	return "subscriptions"
}
