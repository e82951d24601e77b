package infrastructure

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"ecommerce/internal/service/product/domain"
)

// GormProductRepository 是 ProductRepository 的 GORM 实现
type GormProductRepository struct {
	db    *gorm.DB
	table string
}

// NewGormProductRepository 创建一个新的 GORM 仓储实例
func NewGormProductRepository(db *gorm.DB, table string) *GormProductRepository {
	return &GormProductRepository{db: db, table: table}
}

// Migrate 创建或更新商品表结构。
func (r *GormProductRepository) Migrate() error {
	return r.db.Table(r.table).AutoMigrate(&ProductModel{})
}

func (r *GormProductRepository) scoped(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.table)
}

func (r *GormProductRepository) GetAll(ctx context.Context) ([]*domain.Product, error) {
	var models []ProductModel
	if err := r.scoped(ctx).Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "scan products")
	}
	out := make([]*domain.Product, 0, len(models))
	for i := range models {
		out = append(out, ToDomainProduct(&models[i]))
	}
	return out, nil
}

func (r *GormProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var model ProductModel
	err := r.scoped(ctx).Where("product_id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &domain.NotFoundError{ProductID: id}
		}
		return nil, errors.Wrapf(err, "get product %s", id)
	}
	return ToDomainProduct(&model), nil
}

func (r *GormProductRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Product, []string, error) {
	ids = domain.DistinctIDs(ids)
	if len(ids) == 0 {
		return []*domain.Product{}, nil, nil
	}

	var models []ProductModel
	if err := r.scoped(ctx).Where("product_id IN ?", ids).Find(&models).Error; err != nil {
		return nil, nil, errors.Wrap(err, "batch get products")
	}

	byID := make(map[string]*ProductModel, len(models))
	for i := range models {
		byID[models[i].ProductID] = &models[i]
	}
	found := make([]*domain.Product, 0, len(models))
	var missing []string
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			found = append(found, ToDomainProduct(m))
		} else {
			missing = append(missing, id)
		}
	}
	return found, missing, nil
}

func (r *GormProductRepository) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	created := *p
	created.ProductID = uuid.NewString()
	if err := r.scoped(ctx).Create(FromDomainProduct(&created)).Error; err != nil {
		return nil, errors.Wrap(err, "create product")
	}
	return &created, nil
}

func (r *GormProductRepository) Update(ctx context.Context, id string, p *domain.Product) (*domain.Product, error) {
	// 使用 map 保证零值字段同样被覆盖
	updateData := map[string]any{
		"product_name": p.ProductName,
		"code":         p.Code,
		"price":        p.Price,
		"model":        p.Model,
		"product_url":  p.ProductURL,
	}
	res := r.scoped(ctx).Where("product_id = ?", id).Updates(updateData)
	if res.Error != nil {
		return nil, errors.Wrapf(res.Error, "update product %s", id)
	}
	if res.RowsAffected == 0 {
		return nil, &domain.NotFoundError{ProductID: id}
	}
	updated := *p
	updated.ProductID = id
	return &updated, nil
}

func (r *GormProductRepository) Delete(ctx context.Context, id string) (*domain.Product, error) {
	var prior ProductModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(r.table).Where("product_id = ?", id).First(&prior).Error; err != nil {
			return err
		}
		return tx.Table(r.table).Where("product_id = ?", id).Delete(&ProductModel{}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &domain.NotFoundError{ProductID: id}
		}
		return nil, errors.Wrapf(err, "delete product %s", id)
	}
	return ToDomainProduct(&prior), nil
}
