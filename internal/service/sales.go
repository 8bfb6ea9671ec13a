package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stockpos/backend/internal/domain"
	"stockpos/backend/internal/store"
)

const dateLayout = "2006-01-02"

func (s *Service) ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	filter.Skip, filter.Limit = NormalizePage(filter.Skip, filter.Limit)
	if filter.Status != "" && !domain.ValidSaleStatus(filter.Status) {
		return nil, invalid("unknown sale status %q", filter.Status)
	}
	if filter.PaymentStatus != "" && !domain.ValidPaymentStatus(filter.PaymentStatus) {
		return nil, invalid("unknown payment status %q", filter.PaymentStatus)
	}
	return s.repo.ListSales(ctx, filter)
}

func (s *Service) GetSale(ctx context.Context, id int64) (domain.Sale, error) {
	sale, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return domain.Sale{}, err
	}
	return *sale, nil
}

func (s *Service) GetSaleByNumber(ctx context.Context, saleNumber string) (domain.Sale, error) {
	sale, err := s.repo.GetSaleByNumber(ctx, strings.TrimSpace(saleNumber))
	if err != nil {
		return domain.Sale{}, err
	}
	return *sale, nil
}

// CreateSale validates the request and hands it to the store, which numbers
// and prices the sale and deducts stock in one transaction.
func (s *Service) CreateSale(ctx context.Context, req domain.SaleCreateRequest) (domain.Sale, error) {
	draft := domain.Sale{
		CustomerName:     strings.TrimSpace(req.CustomerName),
		CustomerEmail:    strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:    strings.TrimSpace(req.CustomerPhone),
		PaymentMethod:    defaultString(req.PaymentMethod, domain.PaymentMethodCash),
		PaymentStatus:    defaultString(req.PaymentStatus, domain.PaymentStatusPending),
		PaymentReference: strings.TrimSpace(req.PaymentReference),
		Status:           defaultString(req.Status, domain.SaleStatusCompleted),
		ShippingAddress:  req.ShippingAddress,
		ShippingCity:     strings.TrimSpace(req.ShippingCity),
		ShippingState:    strings.TrimSpace(req.ShippingState),
		ShippingCountry:  strings.TrimSpace(req.ShippingCountry),
		ShippingPincode:  strings.TrimSpace(req.ShippingPincode),
		Notes:            req.Notes,
	}
	if actor, ok := ActorFromContext(ctx); ok && actor.UserID > 0 {
		userID := actor.UserID
		draft.UserID = &userID
	}
	if draft.Status == domain.SaleStatusCancelled {
		return domain.Sale{}, invalid("a sale cannot be created as cancelled")
	}
	if err := validateSaleEnvelope(draft); err != nil {
		return domain.Sale{}, err
	}

	if len(req.Items) == 0 {
		return domain.Sale{}, invalid("at least one item required")
	}
	draft.Items = make([]domain.SaleItem, 0, len(req.Items))
	for i, line := range req.Items {
		item := domain.SaleItem{
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice.Round(2),
			TaxRate:         domain.DefaultTaxRate,
			DiscountPercent: line.DiscountPercent,
		}
		if line.TaxRate != nil {
			item.TaxRate = *line.TaxRate
		}
		switch {
		case item.ProductID < 1:
			return domain.Sale{}, invalid("item %d: product_id is required", i+1)
		case item.Quantity <= 0:
			return domain.Sale{}, invalid("item %d: quantity must be greater than 0", i+1)
		case item.UnitPrice.IsNegative():
			return domain.Sale{}, invalid("item %d: unit_price must not be negative", i+1)
		}
		if err := percentInRange("tax_rate", item.TaxRate); err != nil {
			return domain.Sale{}, err
		}
		if err := percentInRange("discount_percent", item.DiscountPercent); err != nil {
			return domain.Sale{}, err
		}
		draft.Items = append(draft.Items, item)
	}

	created, err := s.repo.CreateSale(ctx, draft, s.clock())
	if err != nil {
		return domain.Sale{}, err
	}
	s.invalidateReports(ctx)
	return *created, nil
}

// UpdateSale edits the envelope of a draft sale. Items and totals are fixed
// once the sale exists, and cancellation has its own operation.
func (s *Service) UpdateSale(ctx context.Context, id int64, req domain.SaleUpdateRequest) (domain.Sale, error) {
	existing, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return domain.Sale{}, err
	}
	if existing.Status != domain.SaleStatusDraft {
		return domain.Sale{}, fmt.Errorf("%w: only draft sales can be updated", store.ErrInvalidState)
	}

	updated := *existing
	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	assign(&updated.CustomerName, req.CustomerName)
	assign(&updated.CustomerEmail, req.CustomerEmail)
	assign(&updated.CustomerPhone, req.CustomerPhone)
	assign(&updated.PaymentMethod, req.PaymentMethod)
	assign(&updated.PaymentStatus, req.PaymentStatus)
	assign(&updated.PaymentReference, req.PaymentReference)
	assign(&updated.Status, req.Status)
	assign(&updated.ShippingCity, req.ShippingCity)
	assign(&updated.ShippingState, req.ShippingState)
	assign(&updated.ShippingCountry, req.ShippingCountry)
	assign(&updated.ShippingPincode, req.ShippingPincode)
	if req.ShippingAddress != nil {
		updated.ShippingAddress = *req.ShippingAddress
	}
	if req.Notes != nil {
		updated.Notes = *req.Notes
	}
	if updated.Status == domain.SaleStatusCancelled {
		return domain.Sale{}, invalid("use the cancel operation to cancel a sale")
	}
	if err := validateSaleEnvelope(updated); err != nil {
		return domain.Sale{}, err
	}

	saved, err := s.repo.UpdateDraftSale(ctx, updated, s.clock())
	if err != nil {
		return domain.Sale{}, err
	}
	s.invalidateReports(ctx)
	return *saved, nil
}

func (s *Service) CancelSale(ctx context.Context, id int64) (domain.Sale, error) {
	cancelled, err := s.repo.CancelSale(ctx, id, s.clock())
	if err != nil {
		return domain.Sale{}, err
	}
	s.invalidateReports(ctx)
	return *cancelled, nil
}

func (s *Service) DeleteSale(ctx context.Context, id int64) error {
	if err := s.repo.DeleteDraftSale(ctx, id, s.clock()); err != nil {
		return err
	}
	s.invalidateReports(ctx)
	return nil
}

// ParseDateRange turns inclusive YYYY-MM-DD bounds into a half-open
// [from, to) window in the service timezone. Either bound may be empty.
func (s *Service) ParseDateRange(start, end string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if strings.TrimSpace(start) != "" {
		day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(start), s.loc)
		if err != nil {
			return nil, nil, invalid("start_date must be YYYY-MM-DD")
		}
		from = &day
	}
	if strings.TrimSpace(end) != "" {
		day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(end), s.loc)
		if err != nil {
			return nil, nil, invalid("end_date must be YYYY-MM-DD")
		}
		next := day.AddDate(0, 0, 1)
		to = &next
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, nil, invalid("start_date must not be after end_date")
	}
	return from, to, nil
}

func validateSaleEnvelope(sale domain.Sale) error {
	if !domain.ValidPaymentMethod(sale.PaymentMethod) {
		return invalid("unknown payment method %q", sale.PaymentMethod)
	}
	if !domain.ValidPaymentStatus(sale.PaymentStatus) {
		return invalid("unknown payment status %q", sale.PaymentStatus)
	}
	if !domain.ValidSaleStatus(sale.Status) {
		return invalid("unknown sale status %q", sale.Status)
	}
	if _, err := validEmail("customer_email", sale.CustomerEmail); err != nil {
		return err
	}
	limits := []struct {
		field string
		value string
		max   int
	}{
		{"customer_name", sale.CustomerName, 100},
		{"customer_email", sale.CustomerEmail, 100},
		{"customer_phone", sale.CustomerPhone, 20},
		{"payment_reference", sale.PaymentReference, 100},
		{"shipping_city", sale.ShippingCity, 50},
		{"shipping_state", sale.ShippingState, 50},
		{"shipping_country", sale.ShippingCountry, 50},
		{"shipping_pincode", sale.ShippingPincode, 10},
	}
	for _, l := range limits {
		if _, err := optionalText(l.field, l.value, l.max); err != nil {
			return err
		}
	}
	return nil
}
