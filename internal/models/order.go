package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const OrderStatusPending OrderStatus = "Pending"

// OrderItem is one product line captured at checkout.
type OrderItem struct {
	ID        uint    `json:"-" gorm:"primaryKey" bson:"-"`
	OrderID   string  `json:"-" gorm:"type:varchar(36);index" bson:"-"`
	ProductID string  `json:"productId" gorm:"type:varchar(36);index" bson:"productId"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Subtotal  float64 `json:"subtotal" bson:"subtotal"`
}

// Order is an immutable snapshot of a cart at checkout time.
type Order struct {
	ID              string      `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	UserID          string      `json:"userId" gorm:"type:varchar(36);index" bson:"userId"`
	ProductsOrdered []OrderItem `json:"productsOrdered" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" bson:"productsOrdered"`
	TotalPrice      float64     `json:"totalPrice" bson:"totalPrice"`
	OrderedOn       time.Time   `json:"orderedOn" gorm:"index" bson:"orderedOn"`
	Status          OrderStatus `json:"status" gorm:"type:varchar(32)" bson:"status"`
}

// NewOrderFromCart builds a pending order for cart's owner from its lines.
func NewOrderFromCart(cart *Cart, now time.Time) *Order {
	items := make([]OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		items = append(items, OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Subtotal:  line.Subtotal,
		})
	}
	return &Order{
		UserID:          cart.UserID,
		ProductsOrdered: items,
		TotalPrice:      cart.TotalPrice,
		OrderedOn:       now,
		Status:          OrderStatusPending,
	}
}
