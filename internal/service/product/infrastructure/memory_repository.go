package infrastructure

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"ecommerce/internal/service/product/domain"
)

// MemoryProductRepository 是进程内实现，用于 memory 存储驱动和测试。
type MemoryProductRepository struct {
	mu       sync.RWMutex
	products map[string]domain.Product
}

func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{products: make(map[string]domain.Product)}
}

func (r *MemoryProductRepository) GetAll(_ context.Context) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, &domain.NotFoundError{ProductID: id}
	}
	return &p, nil
}

func (r *MemoryProductRepository) GetByIDs(_ context.Context, ids []string) ([]*domain.Product, []string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	found := []*domain.Product{}
	var missing []string
	for _, id := range domain.DistinctIDs(ids) {
		if p, ok := r.products[id]; ok {
			found = append(found, &p)
		} else {
			missing = append(missing, id)
		}
	}
	return found, missing, nil
}

func (r *MemoryProductRepository) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	created := *p
	created.ProductID = uuid.NewString()
	r.products[created.ProductID] = created
	return &created, nil
}

func (r *MemoryProductRepository) Update(_ context.Context, id string, p *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return nil, &domain.NotFoundError{ProductID: id}
	}
	updated := *p
	updated.ProductID = id
	r.products[id] = updated
	return &updated, nil
}

func (r *MemoryProductRepository) Delete(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prior, ok := r.products[id]
	if !ok {
		return nil, &domain.NotFoundError{ProductID: id}
	}
	delete(r.products, id)
	return &prior, nil
}
