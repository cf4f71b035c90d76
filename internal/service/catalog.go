package service

import (
	"context"
	"dryclean-pos/internal/dto"
	"dryclean-pos/internal/model"
	"dryclean-pos/internal/repository"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CatalogService interface {
	CreateCategory(ctx context.Context, req *dto.CategoryRequest) (*model.Category, error)
	ListCategories(ctx context.Context) ([]*model.Category, error)
	UpdateCategory(ctx context.Context, categoryID string, req *dto.CategoryRequest) (*model.Category, error)
	DeleteCategory(ctx context.Context, categoryID string) error

	CreateItem(ctx context.Context, req *dto.ItemCreateRequest) (*model.Item, error)
	ListItems(ctx context.Context, filter dto.ItemFilter) ([]*model.Item, error)
	GetItem(ctx context.Context, itemID string) (*model.Item, error)
	UpdateItem(ctx context.Context, itemID string, req *dto.ItemUpdateRequest) (*model.Item, error)
	DeleteItem(ctx context.Context, itemID string) error
}

type catalogServiceImpl struct {
	catalogRepo repository.CatalogRepository
}

func NewCatalogService(catalogRepo repository.CatalogRepository) CatalogService {
	return &catalogServiceImpl{
		catalogRepo: catalogRepo,
	}
}

func (s *catalogServiceImpl) CreateCategory(ctx context.Context, req *dto.CategoryRequest) (*model.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, newError(KindValidation, "name is required")
	}

	category := &model.Category{
		ID:          uuid.NewString(),
		Name:        name,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	}
	if err := s.catalogRepo.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newError(KindConflict, "category %q already exists", name)
		}
		return nil, fmt.Errorf("store category: %w", err)
	}

	return category, nil
}

func (s *catalogServiceImpl) ListCategories(ctx context.Context) ([]*model.Category, error) {
	categories, err := s.catalogRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *catalogServiceImpl) UpdateCategory(ctx context.Context, categoryID string, req *dto.CategoryRequest) (*model.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, newError(KindValidation, "name is required")
	}

	category, err := s.catalogRepo.FindCategory(ctx, categoryID)
	if err != nil {
		return nil, notFoundOr(err, "category")
	}

	category.Name = name
	category.Description = req.Description
	category.SortOrder = req.SortOrder
	if err := s.catalogRepo.SaveCategory(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, newError(KindConflict, "category %q already exists", name)
		}
		return nil, fmt.Errorf("save category: %w", err)
	}

	return category, nil
}

func (s *catalogServiceImpl) DeleteCategory(ctx context.Context, categoryID string) error {
	count, err := s.catalogRepo.CountItemsInCategory(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("count category items: %w", err)
	}
	if count > 0 {
		return newError(KindConflict, "category still has %d items", count)
	}

	if err := s.catalogRepo.DeleteCategory(ctx, categoryID); err != nil {
		return notFoundOr(err, "category")
	}
	return nil
}

// checkItem enforces the catalog rules: prices and tiers are sane, the
// category exists and the parent is a top-level item.
func (s *catalogServiceImpl) checkItem(ctx context.Context, item *model.Item) error {
	if strings.TrimSpace(item.Name) == "" {
		return newError(KindValidation, "name is required")
	}
	if item.Prices.Regular.IsNegative() || item.Prices.Express.IsNegative() || item.Prices.Delicate.IsNegative() {
		return newError(KindValidation, "prices must not be negative")
	}

	seen := make(map[int]bool, len(item.VolumeDiscounts))
	for _, tier := range item.VolumeDiscounts {
		if tier.MinQuantity <= 0 {
			return newError(KindValidation, "volume discount min_quantity must be positive")
		}
		if tier.DiscountPercent.IsNegative() || tier.DiscountPercent.GreaterThan(hundred) {
			return newError(KindValidation, "volume discount percent must be between 0 and 100")
		}
		if seen[tier.MinQuantity] {
			return newError(KindValidation, "two volume discounts share min_quantity %d", tier.MinQuantity)
		}
		seen[tier.MinQuantity] = true
	}
	sort.SliceStable(item.VolumeDiscounts, func(i, j int) bool {
		return item.VolumeDiscounts[i].MinQuantity < item.VolumeDiscounts[j].MinQuantity
	})

	if _, err := s.catalogRepo.FindCategory(ctx, item.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(KindValidation, "category %s does not exist", item.CategoryID)
		}
		return fmt.Errorf("get category: %w", err)
	}

	if item.ParentID == nil {
		return nil
	}
	if *item.ParentID == item.ID {
		return newError(KindValidation, "an item cannot be its own parent")
	}

	parent, err := s.catalogRepo.FindItem(ctx, *item.ParentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(KindValidation, "parent item %s does not exist", *item.ParentID)
		}
		return fmt.Errorf("get parent item: %w", err)
	}
	if parent.ParentID != nil {
		return newError(KindValidation, "parent item %s is itself a variant", parent.Name)
	}

	if item.ID != "" {
		children, err := s.catalogRepo.CountChildren(ctx, item.ID)
		if err != nil {
			return fmt.Errorf("count item variants: %w", err)
		}
		if children > 0 {
			return newError(KindValidation, "item with variants cannot become a variant")
		}
	}

	return nil
}

func (s *catalogServiceImpl) CreateItem(ctx context.Context, req *dto.ItemCreateRequest) (*model.Item, error) {
	item := &model.Item{
		Name:            strings.TrimSpace(req.Name),
		CategoryID:      req.CategoryID,
		Description:     req.Description,
		Prices:          req.Prices,
		ParentID:        req.ParentID,
		VolumeDiscounts: req.VolumeDiscounts,
		IsActive:        true,
	}
	if err := s.checkItem(ctx, item); err != nil {
		return nil, err
	}

	item.ID = uuid.NewString()
	if err := s.catalogRepo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("store item: %w", err)
	}

	return item, nil
}

func (s *catalogServiceImpl) ListItems(ctx context.Context, filter dto.ItemFilter) ([]*model.Item, error) {
	items, err := s.catalogRepo.ListItems(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (s *catalogServiceImpl) GetItem(ctx context.Context, itemID string) (*model.Item, error) {
	item, err := s.catalogRepo.FindItem(ctx, itemID)
	if err != nil {
		return nil, notFoundOr(err, "item")
	}
	return item, nil
}

func (s *catalogServiceImpl) UpdateItem(ctx context.Context, itemID string, req *dto.ItemUpdateRequest) (*model.Item, error) {
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	applied := false
	applied = req.Name.Apply(&item.Name) || applied
	applied = req.CategoryID.Apply(&item.CategoryID) || applied
	applied = req.Description.Apply(&item.Description) || applied
	applied = req.Prices.Apply(&item.Prices) || applied
	applied = req.ParentID.Apply(&item.ParentID) || applied
	applied = req.VolumeDiscounts.Apply(&item.VolumeDiscounts) || applied
	applied = req.IsActive.Apply(&item.IsActive) || applied
	if !applied {
		return nil, newError(KindValidation, "no fields to update")
	}

	if err := s.checkItem(ctx, item); err != nil {
		return nil, err
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.catalogRepo.SaveItem(ctx, item); err != nil {
		return nil, fmt.Errorf("save item: %w", err)
	}

	return item, nil
}

func (s *catalogServiceImpl) DeleteItem(ctx context.Context, itemID string) error {
	children, err := s.catalogRepo.CountChildren(ctx, itemID)
	if err != nil {
		return fmt.Errorf("count item variants: %w", err)
	}
	if children > 0 {
		return newError(KindConflict, "item still has %d variants", children)
	}

	if err := s.catalogRepo.DeleteItem(ctx, itemID); err != nil {
		return notFoundOr(err, "item")
	}
	return nil
}
