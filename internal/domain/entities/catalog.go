package entities

import (
	"time"

	"github.com/google/uuid"
)

// ItemCondition is the physical condition of a listed item
type ItemCondition string

const (
	ConditionLikeNew     ItemCondition = "like_new"
	ConditionGood        ItemCondition = "good"
	ConditionFair        ItemCondition = "fair"
	ConditionNeedsRepair ItemCondition = "needs_repair"
)

var conditionLabels = map[ItemCondition]string{
	ConditionLikeNew:     "Like New",
	ConditionGood:        "Good",
	ConditionFair:        "Fair",
	ConditionNeedsRepair: "Needs Repair",
}

func (c ItemCondition) IsValid() bool {
	_, ok := conditionLabels[c]
	return ok
}

// Label returns the human readable name, or the raw value for unknown conditions.
func (c ItemCondition) Label() string {
	if label, ok := conditionLabels[c]; ok {
		return label
	}
	return string(c)
}

const (
	MaxTitleLength    = 200
	MaxBrandLength    = 100
	MaxMaterialLength = 100
	MaxLocationLength = 200
	MaxCategoryName   = 100
	MaxPrice          = 99999999.99
)

type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
}

type CreateCategoryInput struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	Icon        string `json:"icon" binding:"max=50"`
}

// Item is a listing. Items are never hard-deleted; IsActive=false hides them.
type Item struct {
	ID             uuid.UUID     `json:"id"`
	SellerID       uuid.UUID     `json:"sellerId"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	CategoryID     *uuid.UUID    `json:"categoryId,omitempty"`
	Price          float64       `json:"price"`
	Condition      ItemCondition `json:"condition"`
	ConditionLabel string        `json:"conditionLabel"`
	Brand          string        `json:"brand"`
	Material       string        `json:"material"`
	Location       string        `json:"location"`
	IsActive       bool          `json:"isActive"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`

	Images []*ItemImage `json:"images"`
	// Primary is the display image, filled from PrimaryImage when images are loaded.
	Primary *ItemImage `json:"primaryImage"`
}

// PrimaryImage returns the flagged primary image, else the earliest uploaded one, else nil.
func (i *Item) PrimaryImage() *ItemImage {
	if i == nil || len(i.Images) == 0 {
		return nil
	}
	var earliest *ItemImage
	for _, img := range i.Images {
		if img.IsPrimary {
			return img
		}
		if earliest == nil || img.UploadedAt.Before(earliest.UploadedAt) {
			earliest = img
		}
	}
	return earliest
}

type ItemImage struct {
	ID         uuid.UUID `json:"id"`
	ItemID     uuid.UUID `json:"itemId"`
	Image      string    `json:"image"`
	URL        string    `json:"url"`
	IsPrimary  bool      `json:"isPrimary"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// ItemInput holds the editable listing fields. Update replaces all of them.
type ItemInput struct {
	Title       string
	Description string
	CategoryID  *uuid.UUID
	Price       float64
	Condition   ItemCondition
	Brand       string
	Material    string
	Location    string
	// PrimaryIndex picks which of the uploaded images becomes primary.
	PrimaryIndex *int
}

// ItemFilter narrows active listings.
type ItemFilter struct {
	CategoryID *uuid.UUID
	SellerID   *uuid.UUID
}
