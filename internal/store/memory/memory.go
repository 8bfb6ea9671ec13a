package memory

import (
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"stockpos/backend/internal/domain"
	"stockpos/backend/internal/logger"
	"stockpos/backend/internal/store"
)

var _ store.Repository = (*Store)(nil)

// Store keeps every entity in process memory behind one lock. Each mutating
// call validates everything it touches before it writes anything, so a failed
// call leaves no partial state behind.
type Store struct {
	mu         sync.RWMutex
	nextID     map[string]int64
	categories map[int64]domain.Category
	suppliers  map[int64]domain.Supplier
	products   map[int64]domain.Product
	sales      map[int64]*domain.Sale
	users      map[int64]domain.User
}

func New() *Store {
	return &Store{
		nextID:     make(map[string]int64),
		categories: make(map[int64]domain.Category),
		suppliers:  make(map[int64]domain.Supplier),
		products:   make(map[int64]domain.Product),
		sales:      make(map[int64]*domain.Sale),
		users:      make(map[int64]domain.User),
	}
}

// NewSeeded returns a store with an admin account and a small demo catalog.
// The admin password comes from SEED_ADMIN_PASSWORD, falling back to a dev
// default with a warning. Postgres deployments never use these accounts.
func NewSeeded() *Store {
	s := New()
	now := time.Now().UTC()

	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" {
		logger.Log.Warn().Msg("memory store: using default dev admin credentials, set SEED_ADMIN_PASSWORD to override")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPwd), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("memory store: failed to hash seed password")
	}
	adminID := s.allocID("user")
	s.users[adminID] = domain.User{
		ID:             adminID,
		Email:          "admin@stockpos.local",
		Username:       "admin",
		FullName:       "System Administrator",
		HashedPassword: string(hash),
		IsActive:       true,
		IsAdmin:        true,
		CreatedAt:      now,
	}

	for _, name := range []string{"Electronics", "Stationery", "Beverages"} {
		id := s.allocID("category")
		s.categories[id] = domain.Category{ID: id, Name: name, CreatedAt: now}
	}
	supplierID := s.allocID("supplier")
	s.suppliers[supplierID] = domain.Supplier{
		ID: supplierID, Name: "Acme Distribution", Email: "orders@acme.example",
		IsActive: true, Rating: domain.DefaultSupplierScore, CreatedAt: now,
	}

	for _, seed := range []struct {
		sku, name     string
		category      int64
		cost, selling string
		stock         int
	}{
		{"ELEC-USB-01", "USB-C Cable", 1, "40.00", "75.00", 50},
		{"ELEC-MOUSE-01", "Wireless Mouse", 1, "300.00", "450.00", 25},
		{"STAT-PEN-01", "Gel Pen", 2, "8.00", "15.00", 200},
		{"STAT-NOTE-01", "A5 Notebook", 2, "30.00", "55.00", 8},
		{"BEV-WATER-01", "Mineral Water 600ml", 3, "6.00", "10.00", 0},
	} {
		id := s.allocID("product")
		categoryID := seed.category
		cost := decimal.RequireFromString(seed.cost)
		selling := decimal.RequireFromString(seed.selling)
		p := domain.Product{
			ID: id, SKU: seed.sku, Name: seed.name,
			CategoryID: &categoryID, SupplierID: &supplierID,
			CostPrice: cost, SellingPrice: selling, Margin: domain.ComputeMargin(cost, selling),
			CurrentStock: seed.stock, MinStockLevel: domain.DefaultMinStockLevel, MaxStockLevel: domain.DefaultMaxStockLevel,
			UnitOfMeasure: domain.DefaultUnitOfMeasure, IsActive: true, IsTaxable: true,
			TaxRate: domain.DefaultTaxRate, CreatedAt: now,
		}
		if seed.stock > 0 {
			p.LastRestocked = &now
		}
		s.products[id] = p
	}

	return s
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// allocID must be called with mu held.
func (s *Store) allocID(kind string) int64 {
	s.nextID[kind]++
	return s.nextID[kind]
}

func page[T any](items []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func sortedKeys[V any](m map[int64]V) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func cloneSale(src *domain.Sale) *domain.Sale {
	if src == nil {
		return nil
	}
	dup := *src
	dup.Items = make([]domain.SaleItem, len(src.Items))
	copy(dup.Items, src.Items)
	return &dup
}

func timePtr(t time.Time) *time.Time {
	return &t
}
