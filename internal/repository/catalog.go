package repository

import (
	"context"
	"dryclean-pos/internal/dto"
	"dryclean-pos/internal/model"

	"gorm.io/gorm"
)

type CatalogRepository interface {
	CreateCategory(ctx context.Context, category *model.Category) error
	FindCategory(ctx context.Context, categoryID string) (*model.Category, error)
	ListCategories(ctx context.Context) ([]*model.Category, error)
	SaveCategory(ctx context.Context, category *model.Category) error
	DeleteCategory(ctx context.Context, categoryID string) error
	CountItemsInCategory(ctx context.Context, categoryID string) (int64, error)

	CreateItem(ctx context.Context, item *model.Item) error
	FindItem(ctx context.Context, itemID string) (*model.Item, error)
	FindItems(ctx context.Context, itemIDs []string) ([]*model.Item, error)
	ListItems(ctx context.Context, filter dto.ItemFilter) ([]*model.Item, error)
	SaveItem(ctx context.Context, item *model.Item) error
	DeleteItem(ctx context.Context, itemID string) error
	CountChildren(ctx context.Context, itemID string) (int64, error)
}

type catalogRepoImpl struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepoImpl{
		db: db,
	}
}

func (r *catalogRepoImpl) CreateCategory(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *catalogRepoImpl) FindCategory(ctx context.Context, categoryID string) (*model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).
		Where("id = ?", categoryID).
		First(&category).Error
	if err != nil {
		return nil, err
	}

	return &category, nil
}

func (r *catalogRepoImpl) ListCategories(ctx context.Context) ([]*model.Category, error) {
	var categories []*model.Category
	err := r.db.WithContext(ctx).Order("sort_order, name").Find(&categories).Error
	if err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *catalogRepoImpl) SaveCategory(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *catalogRepoImpl) DeleteCategory(ctx context.Context, categoryID string) error {
	result := r.db.WithContext(ctx).Where("id = ?", categoryID).Delete(&model.Category{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *catalogRepoImpl) CountItemsInCategory(ctx context.Context, categoryID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Item{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

func (r *catalogRepoImpl) CreateItem(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *catalogRepoImpl) FindItem(ctx context.Context, itemID string) (*model.Item, error) {
	var item model.Item
	err := r.db.WithContext(ctx).
		Where("id = ?", itemID).
		First(&item).Error
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *catalogRepoImpl) FindItems(ctx context.Context, itemIDs []string) ([]*model.Item, error) {
	var items []*model.Item
	if len(itemIDs) == 0 {
		return items, nil
	}

	err := r.db.WithContext(ctx).
		Where("id IN ?", itemIDs).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *catalogRepoImpl) ListItems(ctx context.Context, filter dto.ItemFilter) ([]*model.Item, error) {
	query := r.db.WithContext(ctx).Model(&model.Item{})
	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.ParentsOnly {
		query = query.Where("parent_id IS NULL")
	}
	if filter.ParentID != "" {
		query = query.Where("parent_id = ?", filter.ParentID)
	}

	var items []*model.Item
	if err := query.Order("name").Find(&items).Error; err != nil {
		return nil, err
	}

	return items, nil
}

func (r *catalogRepoImpl) SaveItem(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *catalogRepoImpl) DeleteItem(ctx context.Context, itemID string) error {
	result := r.db.WithContext(ctx).Where("id = ?", itemID).Delete(&model.Item{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *catalogRepoImpl) CountChildren(ctx context.Context, itemID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Item{}).
		Where("parent_id = ?", itemID).
		Count(&count).Error
	return count, err
}
