package service

import (
	"context"

	"stockpos/backend/internal/domain"
)

func (s *Service) ListCategories(ctx context.Context, skip, limit int) ([]domain.Category, error) {
	skip, limit = NormalizePage(skip, limit)
	return s.repo.ListCategories(ctx, skip, limit)
}

func (s *Service) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	category, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}
	return *category, nil
}

func (s *Service) CreateCategory(ctx context.Context, req domain.CategoryCreateRequest) (domain.Category, error) {
	name, err := requireText("name", req.Name, 1, 100)
	if err != nil {
		return domain.Category{}, err
	}

	created, err := s.repo.CreateCategory(ctx, domain.Category{
		Name:        name,
		Description: req.Description,
		CreatedAt:   s.clock(),
	})
	if err != nil {
		return domain.Category{}, err
	}
	return *created, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, req domain.CategoryUpdateRequest) (domain.Category, error) {
	existing, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}

	updated := *existing
	if req.Name != nil {
		name, err := requireText("name", *req.Name, 1, 100)
		if err != nil {
			return domain.Category{}, err
		}
		updated.Name = name
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}

	saved, err := s.repo.UpdateCategory(ctx, updated)
	if err != nil {
		return domain.Category{}, err
	}
	return *saved, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.invalidateReports(ctx)
	return nil
}
