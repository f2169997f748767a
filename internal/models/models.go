package models

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"unique;not null"          json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	FullName     string `json:"fullName"`
	Role         string `gorm:"not null"                 json:"role"`
	RestaurantID *uint  `gorm:"index"                    json:"restaurant_id,omitempty"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"          json:"id"`
	Token     string `gorm:"unique;not null"     json:"token"`
	UserID    uint   `gorm:"index;not null"      json:"user_id"`
	Role      string `gorm:"not null"            json:"role"`
	ExpiresAt int64  `gorm:"not null"            json:"expires_at"`
	Revoked   bool   `gorm:"default:false"       json:"revoked"`
}

type Restaurant struct {
	ID                uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name              string  `gorm:"not null"                 json:"name"`
	CloudinaryImageID string  `json:"cloudinaryImageId"`
	CostForTwo        int64   `json:"costForTwo"`
	DeliveryTime      int     `json:"deliveryTime"`
	AvgRating         float64 `json:"avgRating"`
	Cuisines          string  `json:"cuisines"`
	Address           string  `json:"address"`
	City              string  `json:"city"`
	Area              string  `json:"area"`
	Promoted          bool    `gorm:"default:false"            json:"promoted"`
}

// MenuItem prices are raw catalog units, see cart.Pricing.
type MenuItem struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	RestaurantID uint   `gorm:"index;not null"           json:"restaurantId"`
	Name         string `gorm:"not null"                 json:"name"`
	Description  string `json:"description"`
	Price        int64  `gorm:"not null"                 json:"price"`
	Category     string `gorm:"index"                    json:"category"`
}

// CartRecord is the server-side copy of a user's cart snapshot, one JSON
// blob per user, mirroring the client's local storage entry.
type CartRecord struct {
	UserID    uint   `gorm:"primaryKey"              json:"user_id"`
	Payload   string `gorm:"type:text;not null"      json:"payload"`
	UpdatedAt int64  `gorm:"autoUpdateTime"          json:"updated_at"`
}

const (
	OrderStatusPending = "pending"

	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Order keeps the cart snapshot immutable in Items (JSON array) with the
// payable total as a decimal string.
type Order struct {
	ID              uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          uint   `gorm:"index;not null"           json:"user_id"`
	RestaurantID    uint   `gorm:"index;not null"           json:"restaurant_id"`
	Items           string `gorm:"type:text;not null"       json:"items"`
	Total           string `gorm:"not null"                 json:"total"`
	Status          string `gorm:"not null"                 json:"status"`
	PaymentStatus   string `gorm:"not null"                 json:"payment_status"`
	PaymentIntentID string `gorm:"index"                    json:"payment_intent_id,omitempty"`
	CreatedAt       int64  `gorm:"autoCreateTime"           json:"created_at"`
}

type Reservation struct {
	ID              uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	RestaurantID    uint   `gorm:"index;not null"           json:"restaurant_id"`
	CustomerName    string `gorm:"not null"                 json:"customer_name"`
	CustomerEmail   string `gorm:"index;not null"           json:"customer_email"`
	CustomerPhone   string `json:"customer_phone"`
	Date            string `gorm:"not null"                 json:"date"`
	Time            string `gorm:"not null"                 json:"time"`
	Guests          uint   `gorm:"not null"                 json:"guests"`
	Occasion        string `json:"occasion"`
	SpecialRequests string `json:"special_requests"`
	Status          string `gorm:"not null"                 json:"status"`
}

type Rating struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint   `gorm:"index;not null"           json:"user_id"`
	RestaurantID uint   `gorm:"index;not null"           json:"restaurant_id"`
	Rating       uint   `gorm:"not null"                 json:"rating"`
	Comment      string `json:"comment"`
}

type SupportTicket struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Reference    string `gorm:"uniqueIndex;not null"     json:"reference"`
	UserID       uint   `gorm:"index;not null"           json:"user_id"`
	RestaurantID uint   `gorm:"index;not null"           json:"restaurant_id"`
	Subject      string `gorm:"not null"                 json:"subject"`
	Message      string `gorm:"not null"                 json:"message"`
	CreatedAt    int64  `gorm:"autoCreateTime"           json:"created_at"`
}

type Campaign struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	RestaurantID uint   `gorm:"index;not null"           json:"restaurant_id"`
	Name         string `gorm:"not null"                 json:"name"`
	Objective    string `json:"objective"`
	Budget       int64  `json:"budget"`
	Status       string `json:"status"`
	Impressions  uint   `json:"impressions"`
	Clicks       uint   `json:"clicks"`
}
