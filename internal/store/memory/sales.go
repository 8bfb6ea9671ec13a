package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"stockpos/backend/internal/domain"
	"stockpos/backend/internal/store"
)

func (s *Store) ListSales(_ context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		if filter.Status != "" && sale.Status != filter.Status {
			continue
		}
		if filter.PaymentStatus != "" && sale.PaymentStatus != filter.PaymentStatus {
			continue
		}
		if filter.From != nil && sale.SaleDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !sale.SaleDate.Before(*filter.To) {
			continue
		}
		dup := s.withUserName(cloneSale(sale))
		if !filter.WithItems {
			dup.Items = nil
		}
		out = append(out, *dup)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SaleDate.Equal(out[j].SaleDate) {
			return out[i].SaleDate.After(out[j].SaleDate)
		}
		return out[i].ID > out[j].ID
	})
	return page(out, filter.Skip, filter.Limit), nil
}

func (s *Store) GetSale(_ context.Context, id int64) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.sales[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s.withUserName(cloneSale(sale)), nil
}

func (s *Store) GetSaleByNumber(_ context.Context, saleNumber string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sale := range s.sales {
		if sale.SaleNumber == saleNumber {
			return s.withUserName(cloneSale(sale)), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateSale(_ context.Context, draft domain.Sale, at time.Time) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quantities := store.QuantitiesByProduct(draft.Items)
	snapshot := make(map[int64]domain.Product, len(quantities))
	for _, id := range store.SortedProductIDs(quantities) {
		if p, ok := s.products[id]; ok {
			snapshot[id] = p
		}
	}
	if err := store.PriceSale(&draft, snapshot); err != nil {
		return nil, err
	}

	prefix := store.SaleNumberPrefix(at)
	existing := make([]string, 0, 8)
	for _, sale := range s.sales {
		existing = append(existing, sale.SaleNumber)
	}
	draft.SaleNumber = store.NextSaleNumber(prefix, existing)

	for id, qty := range quantities {
		p := s.products[id]
		p.CurrentStock -= qty
		p.UpdatedAt = timePtr(at)
		s.products[id] = p
	}

	draft.ID = s.allocID("sale")
	draft.SaleDate = at
	draft.CreatedAt = at
	for i := range draft.Items {
		draft.Items[i].ID = s.allocID("sale_item")
		draft.Items[i].SaleID = draft.ID
		draft.Items[i].CreatedAt = at
	}
	s.sales[draft.ID] = cloneSale(&draft)
	return s.withUserName(cloneSale(&draft)), nil
}

func (s *Store) UpdateDraftSale(_ context.Context, sale domain.Sale, at time.Time) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.sales[sale.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if existing.Status != domain.SaleStatusDraft {
		return nil, fmt.Errorf("%w: only draft sales can be updated", store.ErrInvalidState)
	}

	updated := cloneSale(existing)
	updated.CustomerName = sale.CustomerName
	updated.CustomerEmail = sale.CustomerEmail
	updated.CustomerPhone = sale.CustomerPhone
	updated.PaymentMethod = sale.PaymentMethod
	updated.PaymentStatus = sale.PaymentStatus
	updated.PaymentReference = sale.PaymentReference
	updated.Status = sale.Status
	updated.ShippingAddress = sale.ShippingAddress
	updated.ShippingCity = sale.ShippingCity
	updated.ShippingState = sale.ShippingState
	updated.ShippingCountry = sale.ShippingCountry
	updated.ShippingPincode = sale.ShippingPincode
	updated.Notes = sale.Notes
	updated.UpdatedAt = timePtr(at)
	s.sales[sale.ID] = updated
	return s.withUserName(cloneSale(updated)), nil
}

func (s *Store) CancelSale(_ context.Context, id int64, at time.Time) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sale, ok := s.sales[id]
	if !ok {
		return nil, fmt.Errorf("%w: sale %d", store.ErrNotFound, id)
	}
	if sale.Status == domain.SaleStatusCancelled {
		return nil, fmt.Errorf("%w: sale is already cancelled", store.ErrInvalidState)
	}

	s.restoreStock(sale.Items, at)
	sale.Status = domain.SaleStatusCancelled
	sale.PaymentStatus = store.CancelledPaymentStatus(sale.PaymentStatus)
	sale.UpdatedAt = timePtr(at)
	return s.withUserName(cloneSale(sale)), nil
}

func (s *Store) DeleteDraftSale(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sale, ok := s.sales[id]
	if !ok {
		return store.ErrNotFound
	}
	if sale.Status != domain.SaleStatusDraft {
		return fmt.Errorf("%w: only draft sales can be deleted", store.ErrInvalidState)
	}
	s.restoreStock(sale.Items, at)
	delete(s.sales, id)
	return nil
}

// restoreStock puts sold quantities back, inactive products included. Products
// that no longer exist are skipped. Must be called with mu held.
func (s *Store) restoreStock(items []domain.SaleItem, at time.Time) {
	quantities := store.QuantitiesByProduct(items)
	for _, pid := range store.SortedProductIDs(quantities) {
		p, ok := s.products[pid]
		if !ok {
			continue
		}
		p.CurrentStock += quantities[pid]
		p.UpdatedAt = timePtr(at)
		s.products[pid] = p
	}
}

// withUserName must be called with mu held.
func (s *Store) withUserName(sale *domain.Sale) *domain.Sale {
	sale.UserName = ""
	if sale.UserID != nil {
		if u, ok := s.users[*sale.UserID]; ok {
			sale.UserName = u.Username
		}
	}
	return sale
}
