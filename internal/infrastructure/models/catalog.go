package models

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string    `gorm:"type:text;not null"`
	Icon        string    `gorm:"type:varchar(50);not null"`
}

func (Category) TableName() string {
	return "categories"
}

type Item struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SellerID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_items_seller_created,priority:1"`
	Seller      *User      `gorm:"foreignKey:SellerID;constraint:OnDelete:CASCADE"`
	Title       string     `gorm:"type:varchar(200);not null"`
	Description string     `gorm:"type:text;not null"`
	CategoryID  *uuid.UUID `gorm:"type:uuid;index:idx_items_category_active,priority:1"`
	Category    *Category  `gorm:"constraint:OnDelete:SET NULL"`
	Price       float64    `gorm:"type:numeric(10,2);not null;check:price >= 0"`
	Condition   string     `gorm:"type:varchar(20);not null"`
	Brand       string     `gorm:"type:varchar(100);not null"`
	Material    string     `gorm:"type:varchar(100);not null"`
	Location    string     `gorm:"type:varchar(200);not null"`
	IsActive    bool       `gorm:"not null;default:true;index:idx_items_category_active,priority:2"`
	CreatedAt   time.Time  `gorm:"index:idx_items_seller_created,priority:2"`
	UpdatedAt   time.Time
}

type ItemImage struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemID     uuid.UUID `gorm:"type:uuid;not null;index:idx_item_images_item_primary,priority:1"`
	Item       *Item     `gorm:"constraint:OnDelete:CASCADE"`
	Image      string    `gorm:"type:varchar(255);not null"`
	IsPrimary  bool      `gorm:"not null;index:idx_item_images_item_primary,priority:2"`
	UploadedAt time.Time `gorm:"not null"`
}

// All lists every model in dependency order for migrations.
func All() []interface{} {
	return []interface{}{
		&User{},
		&UserProfile{},
		&Category{},
		&Item{},
		&ItemImage{},
	}
}
