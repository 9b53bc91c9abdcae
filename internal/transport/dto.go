package transport

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

type SignupRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Address  *string `json:"address"`
	Phone    *string `json:"phone"`
	Role     string  `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UserView struct {
	ID    uint        `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

func NewUserView(u *models.User) UserView {
	return UserView{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

type AuthResult struct {
	Token string
	User  UserView
}

type CreateProductRequest struct {
	Name           string           `json:"name"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	Stock          *int             `json:"stock"`
	ImageURL       *string          `json:"image_url"`
	Category       string           `json:"category"`
	Specifications json.RawMessage  `json:"specifications"`
}

type PatchProductRequest struct {
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	Stock          *int             `json:"stock"`
	ImageURL       *string          `json:"image_url"`
	Category       *string          `json:"category"`
	Specifications json.RawMessage  `json:"specifications"`
}

// CreateOrderItem also accepts the short "id"/"qty" keys older clients send.
type CreateOrderItem struct {
	ProductID uint             `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Price     *decimal.Decimal `json:"price"`

	ID  uint `json:"id"`
	Qty int  `json:"qty"`
}

func (i CreateOrderItem) Normalize() CreateOrderItem {
	if i.ProductID == 0 {
		i.ProductID = i.ID
	}
	if i.Quantity == 0 {
		i.Quantity = i.Qty
	}
	i.ID, i.Qty = 0, 0
	return i
}

type CreateOrderRequest struct {
	Items           []CreateOrderItem `json:"items"`
	ShippingAddress string            `json:"shipping_address"`
	PaymentMethod   string            `json:"payment_method"`
}

type PlacedOrder struct {
	Message    string          `json:"message"`
	OrderID    uint            `json:"orderId"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type DashboardStats struct {
	ProductCount int64           `json:"productCount"`
	OrderCount   int64           `json:"orderCount"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

type AdminDashboard struct {
	Role     models.Role      `json:"role"`
	Stats    DashboardStats   `json:"stats"`
	Products []models.Product `json:"products"`
}

type CustomerDashboard struct {
	Role   models.Role    `json:"role"`
	Orders []models.Order `json:"orders"`
}

type SearchResult struct {
	Items []models.Product `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Size  int              `json:"size"`
}
