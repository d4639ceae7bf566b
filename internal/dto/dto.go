package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/flicky/coffeebar-pos/internal/model"
)

// --- Auth ---

type RegisterRequest struct {
	FirstName       string `json:"first_name" validate:"required,min=2,max=50,personname"`
	LastName        string `json:"last_name" validate:"required,min=2,max=50,personname"`
	Username        string `json:"username" validate:"required,min=3,max=20,login"`
	Email           string `json:"email" validate:"required,max=100,mailbox"`
	Phone           string `json:"phone" validate:"omitempty,max=20,phone"`
	Password        string `json:"password" validate:"required,min=6,max=50"`
	ConfirmPassword string `json:"confirm_password" validate:"eqfield=Password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID               int64     `json:"id"`
	Username         string    `json:"username"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Email            string    `json:"email"`
	Phone            *string   `json:"phone,omitempty"`
	RoleID           int       `json:"role_id"`
	IsAdmin          bool      `json:"is_admin"`
	RegistrationDate time.Time `json:"registration_date"`
}

// --- Catalog ---

type BrowseRequest struct {
	CategoryID int64  `form:"category_id"`
	Query      string `form:"q"`
	Sort       string `form:"sort"`
}

type CategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ProductResponse struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	CategoryID   int64           `json:"category_id"`
	CategoryName string          `json:"category_name"`
	IsAvailable  bool            `json:"is_available"`
}

// ProductRequest carries the admin product form. Price stays a string so
// that malformed input reaches validation instead of failing JSON decoding.
type ProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	CategoryID  int64  `json:"category_id"`
	IsAvailable bool   `json:"is_available"`
}

// --- Cart ---

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Count int                `json:"count"`
	Total decimal.Decimal    `json:"total"`
}

type CartItemResponse struct {
	ProductID  int64           `json:"product_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// --- Order ---

type OrderResponse struct {
	ID          int64               `json:"id"`
	UserID      int64               `json:"user_id"`
	Status      model.OrderStatus   `json:"status"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	Items       []OrderItemResponse `json:"items,omitempty"`
	OrderDate   time.Time           `json:"order_date"`
}

type OrderItemResponse struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int             `json:"total"`
}

func ToProductResponse(p *model.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		IsAvailable:  p.IsAvailable,
	}
}

func ToOrderResponse(order *model.Order) OrderResponse {
	var items []OrderItemResponse
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return OrderResponse{
		ID:          order.ID,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Items:       items,
		OrderDate:   order.OrderDate,
	}
}

func ToUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:               user.ID,
		Username:         user.Username,
		FirstName:        user.FirstName,
		LastName:         user.LastName,
		Email:            user.Email,
		Phone:            user.Phone,
		RoleID:           user.RoleID,
		IsAdmin:          user.IsAdmin(),
		RegistrationDate: user.RegistrationDate,
	}
}
