package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var orderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusShipped,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range orderStatuses {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"           json:"id"`
	Name         string    `gorm:"size:255;not null"                  json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null"      json:"email"`
	PasswordHash string    `gorm:"not null"                           json:"-"`
	Address      *string   `gorm:"size:512"                           json:"address,omitempty"`
	Phone        *string   `gorm:"size:32"                            json:"phone,omitempty"`
	Role         Role      `gorm:"size:16;not null;default:customer"  json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type Product struct {
	ID             uint            `gorm:"primaryKey;autoIncrement"           json:"id"`
	Name           string          `gorm:"size:255;not null"                  json:"name"`
	Description    *string         `gorm:"type:text"                          json:"description,omitempty"`
	Price          decimal.Decimal `gorm:"type:decimal(12,2);not null"        json:"price"`
	Stock          int             `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	ImageURL       *string         `gorm:"size:512"                           json:"image_url,omitempty"`
	Category       string          `gorm:"size:100;index"                     json:"category"`
	Specifications datatypes.JSON  `json:"specifications,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type Order struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"          json:"id"`
	UserID          uint            `gorm:"index;not null"                    json:"user_id"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null"       json:"total_price"`
	Status          OrderStatus     `gorm:"size:16;not null;default:pending"  json:"status"`
	OrderDate       time.Time       `gorm:"autoCreateTime"                    json:"order_date"`
	ShippingAddress string          `gorm:"size:512;not null"                 json:"shipping_address"`
	PaymentMethod   string          `gorm:"size:64;not null"                  json:"payment_method"`

	Customer *User       `gorm:"foreignKey:UserID" json:"customer,omitempty"`
	Items    []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem keeps its own copy of the product name and price and has no association to
// Product, so deleting a product never touches recorded items.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"     json:"id"`
	OrderID     uint            `gorm:"index;not null"               json:"order_id"`
	ProductID   uint            `gorm:"index;not null"               json:"product_id"`
	ProductName string          `gorm:"size:255"                     json:"product_name"`
	Quantity    int             `gorm:"not null;check:quantity > 0"  json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"  json:"unit_price"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// All lists every table in migration order.
func All() []any {
	return []any{&User{}, &Product{}, &Order{}, &OrderItem{}}
}
