package service

import (
	"context"
	"strings"

	"stockpos/backend/internal/domain"
)

func (s *Service) ListSuppliers(ctx context.Context, filter domain.SupplierFilter) ([]domain.Supplier, error) {
	filter.Skip, filter.Limit = NormalizePage(filter.Skip, filter.Limit)
	filter.Search = strings.TrimSpace(filter.Search)
	return s.repo.ListSuppliers(ctx, filter)
}

func (s *Service) GetSupplier(ctx context.Context, id int64) (domain.Supplier, error) {
	supplier, err := s.repo.GetSupplier(ctx, id)
	if err != nil {
		return domain.Supplier{}, err
	}
	return *supplier, nil
}

func (s *Service) CreateSupplier(ctx context.Context, req domain.SupplierCreateRequest) (domain.Supplier, error) {
	supplier := domain.Supplier{
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Address:       req.Address,
		City:          req.City,
		State:         req.State,
		Country:       req.Country,
		PostalCode:    req.PostalCode,
		TaxID:         req.TaxID,
		Website:       req.Website,
		IsActive:      true,
		PaymentTerms:  req.PaymentTerms,
		Rating:        domain.DefaultSupplierScore,
		Notes:         req.Notes,
		CreatedAt:     s.clock(),
	}
	var err error
	if supplier.Name, err = requireText("name", req.Name, 1, 100); err != nil {
		return domain.Supplier{}, err
	}
	if supplier.Email, err = validEmail("email", req.Email); err != nil {
		return domain.Supplier{}, err
	}
	if req.IsActive != nil {
		supplier.IsActive = *req.IsActive
	}
	if req.Rating != nil {
		supplier.Rating = *req.Rating
	}
	if err := validateSupplier(supplier); err != nil {
		return domain.Supplier{}, err
	}

	created, err := s.repo.CreateSupplier(ctx, supplier)
	if err != nil {
		return domain.Supplier{}, err
	}
	return *created, nil
}

func (s *Service) UpdateSupplier(ctx context.Context, id int64, req domain.SupplierUpdateRequest) (domain.Supplier, error) {
	existing, err := s.repo.GetSupplier(ctx, id)
	if err != nil {
		return domain.Supplier{}, err
	}

	updated := *existing
	if req.Name != nil {
		if updated.Name, err = requireText("name", *req.Name, 1, 100); err != nil {
			return domain.Supplier{}, err
		}
	}
	if req.Email != nil {
		if updated.Email, err = validEmail("email", *req.Email); err != nil {
			return domain.Supplier{}, err
		}
	}
	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	assign(&updated.ContactPerson, req.ContactPerson)
	assign(&updated.Phone, req.Phone)
	assign(&updated.Address, req.Address)
	assign(&updated.City, req.City)
	assign(&updated.State, req.State)
	assign(&updated.Country, req.Country)
	assign(&updated.PostalCode, req.PostalCode)
	assign(&updated.TaxID, req.TaxID)
	assign(&updated.Website, req.Website)
	assign(&updated.PaymentTerms, req.PaymentTerms)
	assign(&updated.Notes, req.Notes)
	if req.IsActive != nil {
		updated.IsActive = *req.IsActive
	}
	if req.Rating != nil {
		updated.Rating = *req.Rating
	}
	if err := validateSupplier(updated); err != nil {
		return domain.Supplier{}, err
	}

	saved, err := s.repo.UpdateSupplier(ctx, updated)
	if err != nil {
		return domain.Supplier{}, err
	}
	return *saved, nil
}

func (s *Service) DeleteSupplier(ctx context.Context, id int64) error {
	if err := s.repo.DeleteSupplier(ctx, id); err != nil {
		return err
	}
	s.invalidateReports(ctx)
	return nil
}

func validateSupplier(sup domain.Supplier) error {
	if sup.Rating < 1 || sup.Rating > 5 {
		return invalid("rating must be between 1 and 5")
	}
	limits := []struct {
		field string
		value string
		max   int
	}{
		{"contact_person", sup.ContactPerson, 100},
		{"phone", sup.Phone, 20},
		{"city", sup.City, 50},
		{"state", sup.State, 50},
		{"country", sup.Country, 50},
		{"postal_code", sup.PostalCode, 20},
		{"tax_id", sup.TaxID, 50},
		{"website", sup.Website, 100},
		{"payment_terms", sup.PaymentTerms, 100},
	}
	for _, l := range limits {
		if len(l.value) > l.max {
			return invalid("%s must be at most %d characters", l.field, l.max)
		}
	}
	return nil
}
