package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RoleAdmin is the role id that grants access to the admin surface.
const RoleAdmin = 1

type OrderStatus int

const (
	OrderStatusPlaced   OrderStatus = 2
	OrderStatusAccepted OrderStatus = 3
)

type User struct {
	ID               int64
	Username         string
	Password         string
	FirstName        string
	LastName         string
	Email            string
	Phone            *string
	RoleID           int
	RegistrationDate time.Time
}

func (u *User) IsAdmin() bool { return u.RoleID == RoleAdmin }

type Role struct {
	ID   int
	Name string
}

type Category struct {
	ID   int64
	Name string
}

type Product struct {
	ID           int64
	Name         string
	Description  string
	Price        decimal.Decimal
	CategoryID   int64
	CategoryName string
	IsAvailable  bool
}

type Order struct {
	ID          int64
	UserID      int64
	OrderDate   time.Time
	TotalAmount decimal.Decimal
	Status      OrderStatus
	Items       []OrderItem
}

type OrderItem struct {
	OrderID   int64
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// Session identifies the operator behind a request. It replaces any
// process-wide notion of a current user.
type Session struct {
	UserID    int64
	Username  string
	FirstName string
	RoleID    int
	TokenID   string
}

func (s Session) IsAdmin() bool { return s.RoleID == RoleAdmin }

type OrderMessage struct {
	OrderID int64 `json:"order_id"`
	UserID  int64 `json:"user_id"`
}
