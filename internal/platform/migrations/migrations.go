package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the marketplace schema. Adapters never migrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&userRecord{},
		&profileRecord{},
		&sessionRecord{},
		&petRecord{},
		&petImageRecord{},
		&orderRecord{},
		&orderItemRecord{},
		&careServiceRecord{},
		&bookingRecord{},
		&careLogRecord{},
		&postRecord{},
		&commentRecord{},
		&favoriteRecord{},
		&orderKeyRecord{},
	)
}

// Tables lists every table in dependency order, children first. Used to
// truncate between integration tests.
func Tables() []string {
	return []string{
		"order_idempotency_keys", "user_favorites", "comments", "posts", "care_logs", "bookings", "care_services",
		"order_items", "orders", "pet_images", "pets", "user_sessions", "profiles", "users",
	}
}

type userRecord struct {
	ID           string         `gorm:"primaryKey;column:id;type:text"`
	Name         string         `gorm:"column:name;not null"`
	Email        string         `gorm:"column:email;uniqueIndex;not null"`
	Image        string         `gorm:"column:image"`
	Roles        pq.StringArray `gorm:"column:roles;type:text[];not null"`
	PasswordHash string         `gorm:"column:password_hash"`
	Banned       bool           `gorm:"column:banned;not null"`
	CreatedAt    time.Time      `gorm:"column:created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }

type profileRecord struct {
	UserID         string     `gorm:"primaryKey;column:user_id;type:text"`
	User           userRecord `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Bio            string     `gorm:"column:bio"`
	PhoneNumber    string     `gorm:"column:phone_number"`
	AddressCity    string     `gorm:"column:address_city;index"`
	SellerRating   int        `gorm:"column:seller_rating;not null"`
	SellerVerified bool       `gorm:"column:seller_verified;not null"`
}

func (profileRecord) TableName() string { return "profiles" }

type sessionRecord struct {
	TokenID   string    `gorm:"primaryKey;column:token_id;size:64"`
	UserID    string    `gorm:"column:user_id;index;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (sessionRecord) TableName() string { return "user_sessions" }

type petRecord struct {
	ID          int64          `gorm:"primaryKey;column:id;autoIncrement"`
	OwnerID     string         `gorm:"column:owner_id;index;not null"`
	Name        string         `gorm:"column:name;size:100;not null"`
	Type        string         `gorm:"column:type;type:varchar(16);index;not null"`
	Attributes  map[string]any `gorm:"column:attributes;type:jsonb;serializer:json"`
	Description string         `gorm:"column:description;type:text"`
	PriceCents  int64          `gorm:"column:price_cents;not null;check:price_cents >= 0"`
	Status      string         `gorm:"column:status;type:varchar(16);index;not null"`
	Version     int64          `gorm:"column:version;not null;default:1"`
	CreatedAt   time.Time      `gorm:"column:created_at;index"`
	UpdatedAt   time.Time      `gorm:"column:updated_at"`
}

func (petRecord) TableName() string { return "pets" }

type petImageRecord struct {
	ID        int64     `gorm:"primaryKey;column:id;autoIncrement"`
	PetID     int64     `gorm:"column:pet_id;index;not null"`
	Pet       petRecord `gorm:"foreignKey:PetID;references:ID"`
	URL       string    `gorm:"column:url;not null"`
	IsPrimary bool      `gorm:"column:is_primary;not null"`
	Position  int       `gorm:"column:position;not null"`
}

func (petImageRecord) TableName() string { return "pet_images" }

type orderRecord struct {
	ID               int64     `gorm:"primaryKey;column:id;autoIncrement"`
	BuyerID          string    `gorm:"column:buyer_id;index;not null"`
	PaymentRef       *string   `gorm:"column:payment_ref;uniqueIndex"`
	TotalAmountCents int64     `gorm:"column:total_amount_cents;not null"`
	Status           string    `gorm:"column:status;type:varchar(32);index;not null"`
	CreatedAt        time.Time `gorm:"column:created_at;index"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID                   int64       `gorm:"primaryKey;column:id;autoIncrement"`
	OrderID              int64       `gorm:"column:order_id;index;not null"`
	Order                orderRecord `gorm:"foreignKey:OrderID;references:ID"`
	PetID                int64       `gorm:"column:pet_id;index;not null"`
	Pet                  petRecord   `gorm:"foreignKey:PetID;references:ID"`
	PriceAtPurchaseCents int64       `gorm:"column:price_at_purchase_cents;not null"`
}

func (orderItemRecord) TableName() string { return "order_items" }

type careServiceRecord struct {
	ID             int64     `gorm:"primaryKey;column:id;autoIncrement"`
	ProviderID     string    `gorm:"column:provider_id;index;not null"`
	Title          string    `gorm:"column:title;not null"`
	Description    string    `gorm:"column:description;type:text"`
	Type           string    `gorm:"column:type;type:varchar(32);index;not null"`
	BasePriceCents int64     `gorm:"column:base_price_cents;not null"`
	PriceUnit      string    `gorm:"column:price_unit;type:varchar(32);not null"`
	IsActive       bool      `gorm:"column:is_active;not null"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (careServiceRecord) TableName() string { return "care_services" }

type bookingRecord struct {
	ID              int64             `gorm:"primaryKey;column:id;autoIncrement"`
	CustomerID      string            `gorm:"column:customer_id;index;not null"`
	ServiceID       int64             `gorm:"column:service_id;index;not null"`
	Service         careServiceRecord `gorm:"foreignKey:ServiceID;references:ID"`
	PetID           int64             `gorm:"column:pet_id;not null"`
	Pet             petRecord         `gorm:"foreignKey:PetID;references:ID"`
	StartDate       time.Time         `gorm:"column:start_date;not null"`
	EndDate         time.Time         `gorm:"column:end_date;not null"`
	TotalPriceCents int64             `gorm:"column:total_price_cents;not null"`
	Status          string            `gorm:"column:status;type:varchar(32);index;not null"`
	CreatedAt       time.Time         `gorm:"column:created_at;index"`
	UpdatedAt       time.Time         `gorm:"column:updated_at"`
}

func (bookingRecord) TableName() string { return "bookings" }

type careLogRecord struct {
	ID          int64         `gorm:"primaryKey;column:id;autoIncrement"`
	BookingID   int64         `gorm:"column:booking_id;index;not null"`
	Booking     bookingRecord `gorm:"foreignKey:BookingID;references:ID"`
	AuthorID    string        `gorm:"column:author_id;not null"`
	Title       string        `gorm:"column:title;not null"`
	Description string        `gorm:"column:description;type:text"`
	ImageURL    string        `gorm:"column:image_url"`
	LoggedAt    time.Time     `gorm:"column:logged_at;index"`
}

func (careLogRecord) TableName() string { return "care_logs" }

type postRecord struct {
	ID             int64     `gorm:"primaryKey;column:id;autoIncrement"`
	AuthorID       string    `gorm:"column:author_id;index;not null"`
	Title          string    `gorm:"column:title;size:255;not null"`
	Content        string    `gorm:"column:content;type:text;not null"`
	LookingForType *string   `gorm:"column:looking_for_type;type:varchar(16)"`
	CreatedAt      time.Time `gorm:"column:created_at;index"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (postRecord) TableName() string { return "posts" }

type commentRecord struct {
	ID        int64      `gorm:"primaryKey;column:id;autoIncrement"`
	PostID    int64      `gorm:"column:post_id;index;not null"`
	Post      postRecord `gorm:"foreignKey:PostID;references:ID"`
	AuthorID  string     `gorm:"column:author_id;not null"`
	Content   string     `gorm:"column:content;type:text;not null"`
	CreatedAt time.Time  `gorm:"column:created_at;index"`
}

func (commentRecord) TableName() string { return "comments" }

type favoriteRecord struct {
	UserID    string    `gorm:"primaryKey;column:user_id;type:text"`
	PetID     int64     `gorm:"primaryKey;column:pet_id;autoIncrement:false"`
	Pet       petRecord `gorm:"foreignKey:PetID;references:ID"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
}

func (favoriteRecord) TableName() string { return "user_favorites" }

type orderKeyRecord struct {
	BuyerID     string      `gorm:"primaryKey;column:buyer_id;type:text"`
	Key         string      `gorm:"primaryKey;column:key;size:255"`
	RequestHash string      `gorm:"column:request_hash;size:128;not null"`
	OrderID     int64       `gorm:"column:order_id;index;not null"`
	Order       orderRecord `gorm:"foreignKey:OrderID;references:ID"`
	CreatedAt   time.Time   `gorm:"column:created_at"`
}

func (orderKeyRecord) TableName() string { return "order_idempotency_keys" }
