package models

import "time"

// Category is one of the fixed catalog sections.
type Category string

const (
	CategoryLaptops     Category = "Laptops & Computers"
	CategorySmartphones Category = "Smartphones & Tablets"
	CategoryGaming      Category = "Gaming"
	CategoryAudio       Category = "Audio"
	CategoryAccessories Category = "Accessories"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryLaptops,
	CategorySmartphones,
	CategoryGaming,
	CategoryAudio,
	CategoryAccessories,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Product represents an item in the catalog. Products are never deleted,
// only archived by clearing IsActive.
type Product struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Name         string    `json:"name" gorm:"type:varchar(200);index" bson:"name"`
	Description  string    `json:"description" gorm:"type:text" bson:"description"`
	Price        float64   `json:"price" bson:"price"`
	Category     Category  `json:"category" gorm:"type:varchar(64);index" bson:"category"`
	IsActive     bool      `json:"isActive" gorm:"index" bson:"isActive"`
	IsNewArrival bool      `json:"isNewArrival" bson:"isNewArrival"`
	ImageURL     string    `json:"imageUrl" bson:"imageUrl"`
	CreatedOn    time.Time `json:"createdOn" gorm:"index" bson:"createdOn"`
}
