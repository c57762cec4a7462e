package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category struct for MongoDB documents
type Category struct {
	ID    primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name  string             `json:"name" bson:"name"`
	Icon  string             `json:"icon,omitempty" bson:"icon,omitempty"`
	Color string             `json:"color,omitempty" bson:"color,omitempty"`
}

// Product struct for MongoDB documents
type Product struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name            string             `json:"name" bson:"name"`
	Description     string             `json:"description" bson:"description"`
	RichDescription string             `json:"richDescription,omitempty" bson:"richDescription,omitempty"`
	Image           string             `json:"image" bson:"image"`
	Images          []string           `json:"images" bson:"images"`
	Brand           string             `json:"brand,omitempty" bson:"brand,omitempty"`
	Price           float64            `json:"price" bson:"price"`
	Category        primitive.ObjectID `json:"category" bson:"category"`
	CountInStock    int                `json:"countInStock" bson:"countInStock"`
	Rating          float64            `json:"rating,omitempty" bson:"rating,omitempty"`
	NumReviews      int                `json:"numReviews,omitempty" bson:"numReviews,omitempty"`
	IsFeatured      bool               `json:"isFeatured" bson:"isFeatured"`
	DateCreated     time.Time          `json:"dateCreated" bson:"dateCreated"`
}

// ProductDetail is a product joined with its category.
type ProductDetail struct {
	Product  `bson:",inline"`
	Category Category `json:"category" bson:"categoryDoc"`
}

// OrderItem links a quantity of one product to an order.
type OrderItem struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Quantity int                `json:"quantity" bson:"quantity"`
	Product  primitive.ObjectID `json:"product" bson:"product"`
}

const (
	OrderStatusPending   = "Pending"
	OrderStatusShipped   = "Shipped"
	OrderStatusDelivered = "Delivered"
	OrderStatusCancelled = "Cancelled"
)

// Order struct for MongoDB documents
type Order struct {
	ID              primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	OrderItems      []primitive.ObjectID `json:"orderItems" bson:"orderItems"`
	FirstName       string               `json:"firstName" bson:"firstName"`
	LastName        string               `json:"lastName" bson:"lastName"`
	ShippingAddress string               `json:"shippingAddress" bson:"shippingAddress"`
	Country         string               `json:"country" bson:"country"`
	City            string               `json:"city" bson:"city"`
	Zip             string               `json:"zip" bson:"zip"`
	Phone           string               `json:"phone" bson:"phone"`
	Status          string               `json:"status" bson:"status"`
	TotalPrice      float64              `json:"totalPrice" bson:"totalPrice"`
	User            primitive.ObjectID   `json:"user" bson:"user"`
	DateOrdered     time.Time            `json:"dateOrdered" bson:"dateOrdered"`
}

// OrderItemDetail is an order item joined with its product (and the
// product's category).
type OrderItemDetail struct {
	ID       primitive.ObjectID `json:"id" bson:"_id"`
	Quantity int                `json:"quantity" bson:"quantity"`
	Product  ProductDetail      `json:"product" bson:"productDoc"`
}

// UserSummary is the slice of a user embedded in order listings.
type UserSummary struct {
	ID       primitive.ObjectID `json:"id" bson:"_id"`
	Username string             `json:"username" bson:"username"`
	Email    string             `json:"email" bson:"email"`
	Phone    string             `json:"phone" bson:"phone"`
}

// OrderDetail is an order joined with its user summary and resolved items.
type OrderDetail struct {
	ID              primitive.ObjectID `json:"id" bson:"_id"`
	OrderItems      []OrderItemDetail  `json:"orderItems" bson:"itemDocs"`
	FirstName       string             `json:"firstName" bson:"firstName"`
	LastName        string             `json:"lastName" bson:"lastName"`
	ShippingAddress string             `json:"shippingAddress" bson:"shippingAddress"`
	Country         string             `json:"country" bson:"country"`
	City            string             `json:"city" bson:"city"`
	Zip             string             `json:"zip" bson:"zip"`
	Phone           string             `json:"phone" bson:"phone"`
	Status          string             `json:"status" bson:"status"`
	TotalPrice      float64            `json:"totalPrice" bson:"totalPrice"`
	User            UserSummary        `json:"user" bson:"userDoc"`
	DateOrdered     time.Time          `json:"dateOrdered" bson:"dateOrdered"`
}

// User struct for MongoDB documents. PasswordHash never serializes to JSON.
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Username     string             `json:"username" bson:"username"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"passwordHash"`
	Phone        string             `json:"phone" bson:"phone"`
	IsAdmin      bool               `json:"isAdmin" bson:"isAdmin"`
	FirstName    string             `json:"firstName" bson:"firstName"`
	LastName     string             `json:"lastName" bson:"lastName"`
	Street       string             `json:"street" bson:"street"`
	Apartment    string             `json:"apartment" bson:"apartment"`
	Zip          string             `json:"zip" bson:"zip"`
	City         string             `json:"city" bson:"city"`
	Country      string             `json:"country" bson:"country"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Index represents an indexing-related message emitted over the event bus.
type Index struct {
	EntityType string `json:"entity_type"`
	Method     string `json:"method"`
	EntityId   string `json:"entity_id"`
	ItemId     string `json:"item_id"`
	ItemType   string `json:"item_type"`
}

// StockUpdate is pushed to live subscribers after an order changes inventory.
type StockUpdate struct {
	ProductID string `json:"productId"`
	Remaining int    `json:"remaining"`
}
