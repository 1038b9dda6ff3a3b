package models

import "time"

// CartItem is one product line in a cart. ProductName and Price are
// snapshots taken from the catalog when the line was written.
type CartItem struct {
	ID          uint    `json:"-" gorm:"primaryKey" bson:"-"`
	CartID      string  `json:"-" gorm:"type:varchar(36);index" bson:"-"`
	ProductID   string  `json:"productId" gorm:"type:varchar(36)" bson:"productId"`
	ProductName string  `json:"productName" bson:"productName"`
	Quantity    int     `json:"quantity" bson:"quantity"`
	Price       float64 `json:"price" bson:"price"`
	Subtotal    float64 `json:"subtotal" bson:"subtotal"`
}

// Cart is the per-user shopping cart. TotalPrice is derived from Items and
// is recomputed by every mutating method; Version guards concurrent saves.
type Cart struct {
	ID         string     `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	UserID     string     `json:"userId" gorm:"type:varchar(36);uniqueIndex" bson:"userId"`
	Items      []CartItem `json:"cartItems" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" bson:"cartItems"`
	TotalPrice float64    `json:"totalPrice" bson:"totalPrice"`
	Version    int        `json:"-" bson:"version"`
	CreatedAt  time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// NewCart returns an empty cart owned by userID.
func NewCart(userID string) *Cart {
	return &Cart{UserID: userID, Items: []CartItem{}}
}

// IndexOf returns the position of the line for productID, or -1.
func (c *Cart) IndexOf(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Merge adds line to the cart. When a line for the same product exists its
// quantity and subtotal are increased by the incoming values; otherwise the
// line is appended.
func (c *Cart) Merge(line CartItem) {
	if i := c.IndexOf(line.ProductID); i >= 0 {
		existing := &c.Items[i]
		existing.Quantity += line.Quantity
		existing.Subtotal = SumAmounts(existing.Subtotal, line.Subtotal)
	} else {
		c.Items = append(c.Items, line)
	}
	c.Recalculate()
}

// SetQuantity replaces the quantity of the line at index i and reprices it
// at price. It panics if i is out of range.
func (c *Cart) SetQuantity(i int, quantity int, price float64) {
	line := &c.Items[i]
	line.Quantity = quantity
	line.Price = price
	line.Subtotal = LineSubtotal(price, quantity)
	c.Recalculate()
}

// Remove deletes the line for productID and reports whether one existed.
func (c *Cart) Remove(productID string) bool {
	i := c.IndexOf(productID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.Recalculate()
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.Recalculate()
}

// Recalculate sets TotalPrice to the sum of all line subtotals.
func (c *Cart) Recalculate() {
	subtotals := make([]float64, len(c.Items))
	for i, line := range c.Items {
		subtotals[i] = line.Subtotal
	}
	c.TotalPrice = SumAmounts(subtotals...)
}
