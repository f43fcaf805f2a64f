package models

import (
	"time"

	"github.com/google/uuid"
)

type Tag struct {
	ID   uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name string    `json:"name" gorm:"uniqueIndex;not null"`
	Slug string    `json:"slug" gorm:"uniqueIndex;not null"`
}

type Ingredient struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name            string    `json:"name" gorm:"not null;uniqueIndex:idx_name_unit"`
	MeasurementUnit string    `json:"measurement_unit" gorm:"not null;uniqueIndex:idx_name_unit"`
}

type Recipe struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AuthorID    uuid.UUID `json:"author_id" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"not null"`
	Text        string    `json:"text" gorm:"type:text;not null"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time" gorm:"not null"`
	ShortLink   string    `json:"-" gorm:"uniqueIndex;not null"` // 创建时生成一次，之后不变
	PubDate     time.Time `json:"pub_date" gorm:"autoCreateTime;index"`

	Author      User               `json:"author" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Ingredients []RecipeIngredient `json:"ingredients" gorm:"foreignKey:RecipeID"`
	Tags        []Tag              `json:"tags" gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
}

type RecipeIngredient struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	RecipeID     uuid.UUID `json:"recipe_id" gorm:"type:uuid;not null;uniqueIndex:idx_recipe_ingredient"`
	IngredientID uuid.UUID `json:"ingredient_id" gorm:"type:uuid;not null;uniqueIndex:idx_recipe_ingredient"`
	Amount       int       `json:"amount" gorm:"not null"`

	Recipe     Recipe     `json:"-" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	Ingredient Ingredient `json:"ingredient" gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
}

type Favorite struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_favorite_user_recipe"`
	RecipeID  uuid.UUID `json:"recipe_id" gorm:"type:uuid;not null;uniqueIndex:idx_favorite_user_recipe"`
	CreatedAt time.Time `json:"created_at"`

	User   User   `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe Recipe `json:"recipe" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

type BasketEntry struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_basket_user_recipe"`
	RecipeID  uuid.UUID `json:"recipe_id" gorm:"type:uuid;not null;uniqueIndex:idx_basket_user_recipe"`
	CreatedAt time.Time `json:"created_at"`

	User   User   `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe Recipe `json:"recipe" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

// BasketIngredientRow 购物清单聚合的原始输入行
type BasketIngredientRow struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

func (Tag) TableName() string {
	return "tags"
}

func (Ingredient) TableName() string {
	return "ingredients"
}

func (Recipe) TableName() string {
	return "recipes"
}

func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}

func (Favorite) TableName() string {
	return "favorites"
}

func (BasketEntry) TableName() string {
	return "basket_entries"
}
