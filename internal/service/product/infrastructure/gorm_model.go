package infrastructure

import (
	"github.com/shopspring/decimal"

	"ecommerce/internal/service/product/domain"
)

// ProductModel 对应数据库中的商品表，表名由配置决定。
type ProductModel struct {
	ProductID   string          `gorm:"primaryKey;type:char(36)"`
	ProductName string          `gorm:"type:varchar(255);not null"`
	Code        string          `gorm:"type:varchar(64);not null;index"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Model       string          `gorm:"type:varchar(255)"`
	ProductURL  string          `gorm:"type:varchar(1024)"`
}

// ToDomainProduct 将数据库模型转换为领域模型
func ToDomainProduct(m *ProductModel) *domain.Product {
	if m == nil {
		return nil
	}
	return &domain.Product{
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Code:        m.Code,
		Price:       m.Price,
		Model:       m.Model,
		ProductURL:  m.ProductURL,
	}
}

// FromDomainProduct 将领域模型转换为数据库模型
func FromDomainProduct(p *domain.Product) *ProductModel {
	if p == nil {
		return nil
	}
	return &ProductModel{
		ProductID:   p.ProductID,
		ProductName: p.ProductName,
		Code:        p.Code,
		Price:       p.Price,
		Model:       p.Model,
		ProductURL:  p.ProductURL,
	}
}
