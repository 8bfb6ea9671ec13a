package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SaleStatusDraft     = "draft"
	SaleStatusCompleted = "completed"
	SaleStatusCancelled = "cancelled"

	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusPartial  = "partial"
	PaymentStatusRefunded = "refunded"

	PaymentMethodCash         = "cash"
	PaymentMethodCard         = "card"
	PaymentMethodUPI          = "upi"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCheque       = "cheque"

	DefaultTaxRate       = 18.0
	DefaultMinStockLevel = 10
	DefaultMaxStockLevel = 100
	DefaultUnitOfMeasure = "pcs"
	DefaultSupplierScore = 5
)

type Category struct {
	ID          int64      `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

type CategoryCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CategoryUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type Supplier struct {
	ID            int64      `json:"id" db:"id"`
	Name          string     `json:"name" db:"name"`
	ContactPerson string     `json:"contact_person" db:"contact_person"`
	Email         string     `json:"email" db:"email"`
	Phone         string     `json:"phone" db:"phone"`
	Address       string     `json:"address" db:"address"`
	City          string     `json:"city" db:"city"`
	State         string     `json:"state" db:"state"`
	Country       string     `json:"country" db:"country"`
	PostalCode    string     `json:"postal_code" db:"postal_code"`
	TaxID         string     `json:"tax_id" db:"tax_id"`
	Website       string     `json:"website" db:"website"`
	IsActive      bool       `json:"is_active" db:"is_active"`
	PaymentTerms  string     `json:"payment_terms" db:"payment_terms"`
	Rating        int        `json:"rating" db:"rating"`
	Notes         string     `json:"notes" db:"notes"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

type SupplierCreateRequest struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
	Country       string `json:"country"`
	PostalCode    string `json:"postal_code"`
	TaxID         string `json:"tax_id"`
	Website       string `json:"website"`
	IsActive      *bool  `json:"is_active,omitempty"`
	PaymentTerms  string `json:"payment_terms"`
	Rating        *int   `json:"rating,omitempty"`
	Notes         string `json:"notes"`
}

type SupplierUpdateRequest struct {
	Name          *string `json:"name,omitempty"`
	ContactPerson *string `json:"contact_person,omitempty"`
	Email         *string `json:"email,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Address       *string `json:"address,omitempty"`
	City          *string `json:"city,omitempty"`
	State         *string `json:"state,omitempty"`
	Country       *string `json:"country,omitempty"`
	PostalCode    *string `json:"postal_code,omitempty"`
	TaxID         *string `json:"tax_id,omitempty"`
	Website       *string `json:"website,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
	PaymentTerms  *string `json:"payment_terms,omitempty"`
	Rating        *int    `json:"rating,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

type Product struct {
	ID            int64           `json:"id" db:"id"`
	SKU           string          `json:"sku" db:"sku"`
	Name          string          `json:"name" db:"name"`
	Description   string          `json:"description" db:"description"`
	CategoryID    *int64          `json:"category_id" db:"category_id"`
	SupplierID    *int64          `json:"supplier_id" db:"supplier_id"`
	CategoryName  string          `json:"category_name,omitempty" db:"category_name"`
	SupplierName  string          `json:"supplier_name,omitempty" db:"supplier_name"`
	CostPrice     decimal.Decimal `json:"cost_price" db:"cost_price"`
	SellingPrice  decimal.Decimal `json:"selling_price" db:"selling_price"`
	Margin        *float64        `json:"margin" db:"margin"`
	CurrentStock  int             `json:"current_stock" db:"current_stock"`
	MinStockLevel int             `json:"min_stock_level" db:"min_stock_level"`
	MaxStockLevel int             `json:"max_stock_level" db:"max_stock_level"`
	UnitOfMeasure string          `json:"unit_of_measure" db:"unit_of_measure"`
	Brand         string          `json:"brand" db:"brand"`
	Model         string          `json:"model" db:"model"`
	Weight        *float64        `json:"weight" db:"weight"`
	Dimensions    string          `json:"dimensions" db:"dimensions"`
	Barcode       string          `json:"barcode" db:"barcode"`
	IsActive      bool            `json:"is_active" db:"is_active"`
	IsTaxable     bool            `json:"is_taxable" db:"is_taxable"`
	TaxRate       float64         `json:"tax_rate" db:"tax_rate"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     *time.Time      `json:"updated_at,omitempty" db:"updated_at"`
	LastRestocked *time.Time      `json:"last_restocked,omitempty" db:"last_restocked"`
}

type ProductCreateRequest struct {
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	CategoryID    *int64          `json:"category_id,omitempty"`
	SupplierID    *int64          `json:"supplier_id,omitempty"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	CurrentStock  int             `json:"current_stock"`
	MinStockLevel *int            `json:"min_stock_level,omitempty"`
	MaxStockLevel *int            `json:"max_stock_level,omitempty"`
	UnitOfMeasure string          `json:"unit_of_measure"`
	Brand         string          `json:"brand"`
	Model         string          `json:"model"`
	Weight        *float64        `json:"weight,omitempty"`
	Dimensions    string          `json:"dimensions"`
	Barcode       string          `json:"barcode"`
	IsActive      *bool           `json:"is_active,omitempty"`
	IsTaxable     *bool           `json:"is_taxable,omitempty"`
	TaxRate       *float64        `json:"tax_rate,omitempty"`
}

type ProductUpdateRequest struct {
	SKU           *string          `json:"sku,omitempty"`
	Name          *string          `json:"name,omitempty"`
	Description   *string          `json:"description,omitempty"`
	CategoryID    *int64           `json:"category_id,omitempty"`
	SupplierID    *int64           `json:"supplier_id,omitempty"`
	CostPrice     *decimal.Decimal `json:"cost_price,omitempty"`
	SellingPrice  *decimal.Decimal `json:"selling_price,omitempty"`
	CurrentStock  *int             `json:"current_stock,omitempty"`
	MinStockLevel *int             `json:"min_stock_level,omitempty"`
	MaxStockLevel *int             `json:"max_stock_level,omitempty"`
	UnitOfMeasure *string          `json:"unit_of_measure,omitempty"`
	Brand         *string          `json:"brand,omitempty"`
	Model         *string          `json:"model,omitempty"`
	Weight        *float64         `json:"weight,omitempty"`
	Dimensions    *string          `json:"dimensions,omitempty"`
	Barcode       *string          `json:"barcode,omitempty"`
	IsActive      *bool            `json:"is_active,omitempty"`
	IsTaxable     *bool            `json:"is_taxable,omitempty"`
	TaxRate       *float64         `json:"tax_rate,omitempty"`
}

type StockUpdateRequest struct {
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes,omitempty"`
}

type StockUpdateResult struct {
	ProductID     int64  `json:"product_id"`
	SKU           string `json:"sku"`
	PreviousStock int    `json:"previous_stock"`
	CurrentStock  int    `json:"current_stock"`
	Adjustment    int    `json:"adjustment"`
	Notes         string `json:"notes,omitempty"`
}

type InventorySummary struct {
	TotalProducts         int             `json:"total_products"`
	TotalStock            int             `json:"total_stock"`
	TotalStockValue       decimal.Decimal `json:"total_stock_value"`
	TotalPotentialRevenue decimal.Decimal `json:"total_potential_revenue"`
	LowStockCount         int             `json:"low_stock_count"`
	OutOfStockCount       int             `json:"out_of_stock_count"`
	ActiveProducts        int             `json:"active_products"`
	InactiveProducts      int             `json:"inactive_products"`
}

type Sale struct {
	ID               int64           `json:"id" db:"id"`
	SaleNumber       string          `json:"sale_number" db:"sale_number"`
	CustomerName     string          `json:"customer_name" db:"customer_name"`
	CustomerEmail    string          `json:"customer_email" db:"customer_email"`
	CustomerPhone    string          `json:"customer_phone" db:"customer_phone"`
	TotalAmount      decimal.Decimal `json:"total_amount" db:"total_amount"`
	TaxAmount        decimal.Decimal `json:"tax_amount" db:"tax_amount"`
	DiscountAmount   decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	GrandTotal       decimal.Decimal `json:"grand_total" db:"grand_total"`
	PaymentMethod    string          `json:"payment_method" db:"payment_method"`
	PaymentStatus    string          `json:"payment_status" db:"payment_status"`
	PaymentReference string          `json:"payment_reference" db:"payment_reference"`
	Status           string          `json:"status" db:"status"`
	ShippingAddress  string          `json:"shipping_address" db:"shipping_address"`
	ShippingCity     string          `json:"shipping_city" db:"shipping_city"`
	ShippingState    string          `json:"shipping_state" db:"shipping_state"`
	ShippingCountry  string          `json:"shipping_country" db:"shipping_country"`
	ShippingPincode  string          `json:"shipping_pincode" db:"shipping_pincode"`
	Notes            string          `json:"notes" db:"notes"`
	UserID           *int64          `json:"user_id" db:"user_id"`
	UserName         string          `json:"user_name,omitempty" db:"user_name"`
	SaleDate         time.Time       `json:"sale_date" db:"sale_date"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        *time.Time      `json:"updated_at,omitempty" db:"updated_at"`
	Items            []SaleItem      `json:"items" db:"-"`
}

type SaleItem struct {
	ID              int64           `json:"id" db:"id"`
	SaleID          int64           `json:"sale_id" db:"sale_id"`
	ProductID       int64           `json:"product_id" db:"product_id"`
	Quantity        int             `json:"quantity" db:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price" db:"unit_price"`
	TaxRate         float64         `json:"tax_rate" db:"tax_rate"`
	DiscountPercent float64         `json:"discount_percent" db:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	TaxAmount       decimal.Decimal `json:"tax_amount" db:"tax_amount"`
	Subtotal        decimal.Decimal `json:"subtotal" db:"subtotal"`
	Total           decimal.Decimal `json:"total" db:"total"`
	ProductName     string          `json:"product_name" db:"product_name"`
	ProductSKU      string          `json:"product_sku" db:"product_sku"`
	ProductBarcode  string          `json:"product_barcode" db:"product_barcode"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

type SaleItemRequest struct {
	ProductID       int64           `json:"product_id"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TaxRate         *float64        `json:"tax_rate,omitempty"`
	DiscountPercent float64         `json:"discount_percent"`
}

type SaleCreateRequest struct {
	CustomerName     string            `json:"customer_name"`
	CustomerEmail    string            `json:"customer_email"`
	CustomerPhone    string            `json:"customer_phone"`
	PaymentMethod    string            `json:"payment_method"`
	PaymentStatus    string            `json:"payment_status"`
	PaymentReference string            `json:"payment_reference"`
	Status           string            `json:"status"`
	ShippingAddress  string            `json:"shipping_address"`
	ShippingCity     string            `json:"shipping_city"`
	ShippingState    string            `json:"shipping_state"`
	ShippingCountry  string            `json:"shipping_country"`
	ShippingPincode  string            `json:"shipping_pincode"`
	Notes            string            `json:"notes"`
	Items            []SaleItemRequest `json:"items"`
}

type SaleUpdateRequest struct {
	CustomerName     *string `json:"customer_name,omitempty"`
	CustomerEmail    *string `json:"customer_email,omitempty"`
	CustomerPhone    *string `json:"customer_phone,omitempty"`
	PaymentMethod    *string `json:"payment_method,omitempty"`
	PaymentStatus    *string `json:"payment_status,omitempty"`
	PaymentReference *string `json:"payment_reference,omitempty"`
	Status           *string `json:"status,omitempty"`
	ShippingAddress  *string `json:"shipping_address,omitempty"`
	ShippingCity     *string `json:"shipping_city,omitempty"`
	ShippingState    *string `json:"shipping_state,omitempty"`
	ShippingCountry  *string `json:"shipping_country,omitempty"`
	ShippingPincode  *string `json:"shipping_pincode,omitempty"`
	Notes            *string `json:"notes,omitempty"`
}

type User struct {
	ID             int64      `json:"id" db:"id"`
	Email          string     `json:"email" db:"email"`
	Username       string     `json:"username" db:"username"`
	FullName       string     `json:"full_name" db:"full_name"`
	HashedPassword string     `json:"-" db:"hashed_password"`
	IsActive       bool       `json:"is_active" db:"is_active"`
	IsAdmin        bool       `json:"is_admin" db:"is_admin"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

type UserCreateRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	IsActive *bool  `json:"is_active,omitempty"`
	IsAdmin  bool   `json:"is_admin"`
}

type UserUpdateRequest struct {
	Email    *string `json:"email,omitempty"`
	Username *string `json:"username,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Password *string `json:"password,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
	IsAdmin  *bool   `json:"is_admin,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   string `json:"expires_at"`
	User        User   `json:"user"`
}

// Actor is the authenticated user attached to a request context.
type Actor struct {
	UserID   int64
	Username string
	IsAdmin  bool
}

type ProductFilter struct {
	CategoryID   *int64
	SupplierID   *int64
	ActiveOnly   bool
	Search       string
	CategoryName string
	SupplierName string
	LowStock     bool
	OutOfStock   bool
	Skip         int
	Limit        int
}

type SupplierFilter struct {
	ActiveOnly bool
	Search     string
	Skip       int
	Limit      int
}

type SaleFilter struct {
	Status        string
	PaymentStatus string
	From          *time.Time
	To            *time.Time
	Skip          int
	Limit         int
	WithItems     bool
}
