package store

import (
	"context"
	"errors"
	"time"

	"stockpos/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidState      = errors.New("invalid state")
	ErrConflict          = errors.New("already exists")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
)

type Repository interface {
	ListCategories(ctx context.Context, skip, limit int) ([]domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	CreateCategory(ctx context.Context, category domain.Category) (*domain.Category, error)
	UpdateCategory(ctx context.Context, category domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	ListSuppliers(ctx context.Context, filter domain.SupplierFilter) ([]domain.Supplier, error)
	GetSupplier(ctx context.Context, id int64) (*domain.Supplier, error)
	CreateSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error)
	UpdateSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error)
	DeleteSupplier(ctx context.Context, id int64) error

	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error)
	GetProductByBarcode(ctx context.Context, barcode string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	// UpdateProduct locks the product, hands a copy to apply and persists the
	// edited copy in the same unit of work. apply must not call the store.
	UpdateProduct(ctx context.Context, id int64, at time.Time, apply func(*domain.Product) error) (*domain.Product, error)
	AdjustStock(ctx context.Context, productID int64, delta int, at time.Time) (*domain.Product, error)
	BulkAdjustStock(ctx context.Context, deltas map[int64]int, at time.Time) (map[int64]bool, error)

	ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error)
	GetSale(ctx context.Context, id int64) (*domain.Sale, error)
	GetSaleByNumber(ctx context.Context, saleNumber string) (*domain.Sale, error)
	CreateSale(ctx context.Context, draft domain.Sale, at time.Time) (*domain.Sale, error)
	UpdateDraftSale(ctx context.Context, sale domain.Sale, at time.Time) (*domain.Sale, error)
	CancelSale(ctx context.Context, id int64, at time.Time) (*domain.Sale, error)
	// DeleteDraftSale removes a draft and returns its quantities to stock.
	DeleteDraftSale(ctx context.Context, id int64, at time.Time) error

	ListUsers(ctx context.Context, skip, limit int) ([]domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateUser(ctx context.Context, user domain.User) (*domain.User, error)
	UpdateUser(ctx context.Context, user domain.User) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
}
