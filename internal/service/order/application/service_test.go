package application

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"ecommerce/internal/pkg/eventbus"
	"ecommerce/internal/pkg/outbox"
	"ecommerce/internal/pkg/requestinfo"
	"ecommerce/internal/service/order/domain"
	"ecommerce/internal/service/order/infrastructure"
	"ecommerce/internal/service/order/port"
	"ecommerce/internal/shared"
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetByIDs(ctx context.Context, ids []string) ([]port.CatalogProduct, []string, error) {
	args := m.Called(ctx, ids)
	var found []port.CatalogProduct
	if v := args.Get(0); v != nil {
		found = v.([]port.CatalogProduct)
	}
	var missing []string
	if v := args.Get(1); v != nil {
		missing = v.([]string)
	}
	return found, missing, args.Error(2)
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, order *domain.Order, intent domain.EventIntent) (*outbox.Entry, error) {
	args := m.Called(ctx, order, intent)
	entry, _ := args.Get(0).(*outbox.Entry)
	return entry, args.Error(1)
}

func (m *MockRepository) GetAll(ctx context.Context) ([]*domain.Order, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]*domain.Order)
	return orders, args.Error(1)
}

func (m *MockRepository) GetByCustomer(ctx context.Context, customerKey string) ([]*domain.Order, error) {
	args := m.Called(ctx, customerKey)
	orders, _ := args.Get(0).([]*domain.Order)
	return orders, args.Error(1)
}

func (m *MockRepository) GetOne(ctx context.Context, customerKey, orderKey string) (*domain.Order, error) {
	args := m.Called(ctx, customerKey, orderKey)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, customerKey, orderKey string, intent domain.EventIntent) (*domain.Order, *outbox.Entry, error) {
	args := m.Called(ctx, customerKey, orderKey, intent)
	order, _ := args.Get(0).(*domain.Order)
	entry, _ := args.Get(1).(*outbox.Entry)
	return order, entry, args.Error(2)
}

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Name() string { return "mock" }

func (m *MockTransport) Send(ctx context.Context, key string, env eventbus.Envelope) error {
	return m.Called(ctx, key, env).Error(0)
}

var validRequest = CreateOrderRequest{
	CustomerEmail: "alice@example.com",
	ProductIDs:    []string{"A", "B"},
	Payment:       shared.PaymentCreditCard,
	Shipping:      ShippingRequest{Kind: shared.ShippingEconomic, Carrier: shared.CarrierCorreios},
}

func catalogAB() []port.CatalogProduct {
	return []port.CatalogProduct{
		{ProductID: "A", Code: "COD-A", Price: decimal.NewFromInt(10)},
		{ProductID: "B", Code: "COD-B", Price: decimal.NewFromInt(20)},
	}
}

type fixture struct {
	svc       *OrderApplicationService
	repo      *infrastructure.MemoryOrderRepository
	store     *outbox.MemoryStore
	catalog   *MockCatalog
	transport *MockTransport
}

func newFixture() *fixture {
	store := outbox.NewMemoryStore()
	repo := infrastructure.NewMemoryOrderRepository(store)
	catalog := new(MockCatalog)
	transport := new(MockTransport)
	relay := outbox.NewRelay(store, eventbus.NewEmitter(transport, eventbus.PropagateErrors))
	return &fixture{
		svc:       NewOrderApplicationService(repo, catalog, relay, noop.NewTracerProvider().Tracer("test")),
		repo:      repo,
		store:     store,
		catalog:   catalog,
		transport: transport,
	}
}

func TestCreateOrderPersistsAndPublishes(t *testing.T) {
	// Arrange
	f := newFixture()
	f.catalog.On("GetByIDs", mock.Anything, []string{"A", "B"}).Return(catalogAB(), nil, nil)
	var sent eventbus.Envelope
	f.transport.On("Send", mock.Anything, "alice@example.com", mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(2).(eventbus.Envelope) }).
		Return(nil).Once()
	ctx := requestinfo.NewContext(context.Background(), requestinfo.Info{APIRequestID: "req-42"})
	req := validRequest

	// Act
	order, err := f.svc.CreateOrder(ctx, &req)

	// Assert
	require.NoError(t, err)
	assert.True(t, order.Billing.TotalPrice.Equal(decimal.NewFromInt(30)))
	assert.NotEmpty(t, order.OrderKey)
	assert.Equal(t, []domain.LineItem{
		{Code: "COD-A", Price: decimal.NewFromInt(10)},
		{Code: "COD-B", Price: decimal.NewFromInt(20)},
	}, order.Products)

	assert.Equal(t, "ORDER_CREATED", sent.EventKind)
	var ev domain.OrderEvent
	require.NoError(t, sent.Decode(&ev))
	assert.Equal(t, []string{"COD-A", "COD-B"}, ev.ProductCodes)
	assert.Equal(t, "req-42", ev.RequestID)
	assert.Equal(t, order.OrderKey, ev.OrderKey)

	stored, err := f.repo.GetOne(context.Background(), "alice@example.com", order.OrderKey)
	require.NoError(t, err)
	assert.Equal(t, order, stored)

	pending, _ := f.store.Pending(context.Background(), time.Now().Add(time.Hour), 10)
	assert.Empty(t, pending)
	f.transport.AssertExpectations(t)
}

func TestCreateOrderRejectsMissingProducts(t *testing.T) {
	f := newFixture()
	f.catalog.On("GetByIDs", mock.Anything, []string{"A", "B"}).
		Return([]port.CatalogProduct{{ProductID: "A", Code: "COD-A", Price: decimal.NewFromInt(10)}}, []string{"B"}, nil)
	req := validRequest

	_, err := f.svc.CreateOrder(context.Background(), &req)

	var missing *MissingProductsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"B"}, missing.ProductIDs)

	orders, _ := f.repo.GetAll(context.Background())
	assert.Empty(t, orders)
	f.transport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateOrderRejectsDuplicateProducts(t *testing.T) {
	f := newFixture()
	f.catalog.On("GetByIDs", mock.Anything, []string{"A", "B", "A"}).Return(catalogAB(), nil, nil)
	req := validRequest
	req.ProductIDs = []string{"A", "B", "A"}

	_, err := f.svc.CreateOrder(context.Background(), &req)

	var missing *MissingProductsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"A"}, missing.ProductIDs)

	orders, _ := f.repo.GetAll(context.Background())
	assert.Empty(t, orders)
	f.transport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestDuplicateIDs(t *testing.T) {
	assert.Empty(t, duplicateIDs([]string{"A", "B"}))
	assert.Equal(t, []string{"B", "A"}, duplicateIDs([]string{"A", "B", "B", "A", "A"}))
}

func TestCreateOrderPublishFailureKeepsOutboxEntry(t *testing.T) {
	f := newFixture()
	f.catalog.On("GetByIDs", mock.Anything, mock.Anything).Return(catalogAB(), nil, nil)
	f.transport.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()
	req := validRequest

	_, err := f.svc.CreateOrder(context.Background(), &req)
	require.Error(t, err)

	// 订单已写入，事件保持 PENDING 等待调度器补发
	orders, _ := f.repo.GetByCustomer(context.Background(), "alice@example.com")
	require.Len(t, orders, 1)
	pending, _ := f.store.Pending(context.Background(), time.Now().Add(time.Hour), 10)
	require.Len(t, pending, 1)
	assert.Equal(t, orders[0].OrderKey, pending[0].AggregateID)
	assert.Equal(t, 1, pending[0].Attempts)
}

func TestCreateOrderCatalogFailure(t *testing.T) {
	f := newFixture()
	f.catalog.On("GetByIDs", mock.Anything, mock.Anything).Return(nil, nil, errors.New("db timeout"))
	req := validRequest

	_, err := f.svc.CreateOrder(context.Background(), &req)

	assert.ErrorContains(t, err, "db timeout")
	var missing *MissingProductsError
	assert.False(t, errors.As(err, &missing))
}

func TestCreateOrderRepositoryFailureSkipsPublish(t *testing.T) {
	repo := new(MockRepository)
	catalog := new(MockCatalog)
	transport := new(MockTransport)
	relay := outbox.NewRelay(outbox.NewMemoryStore(), eventbus.NewEmitter(transport, eventbus.PropagateErrors))
	svc := NewOrderApplicationService(repo, catalog, relay, noop.NewTracerProvider().Tracer("test"))

	catalog.On("GetByIDs", mock.Anything, mock.Anything).Return(catalogAB(), nil, nil)
	repo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("deadlock"))
	req := validRequest

	_, err := svc.CreateOrder(context.Background(), &req)

	assert.ErrorContains(t, err, "deadlock")
	transport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestDeleteOrderPublishesDeletedEvent(t *testing.T) {
	f := newFixture()
	f.catalog.On("GetByIDs", mock.Anything, mock.Anything).Return(catalogAB(), nil, nil)
	f.transport.On("Send", mock.Anything, mock.Anything, mock.MatchedBy(func(env eventbus.Envelope) bool {
		return env.EventKind == "ORDER_CREATED"
	})).Return(nil).Once()
	f.transport.On("Send", mock.Anything, mock.Anything, mock.MatchedBy(func(env eventbus.Envelope) bool {
		return env.EventKind == "ORDER_DELETED"
	})).Return(nil).Once()
	req := validRequest

	created, err := f.svc.CreateOrder(context.Background(), &req)
	require.NoError(t, err)

	deleted, err := f.svc.DeleteOrder(context.Background(), created.CustomerKey, created.OrderKey)
	require.NoError(t, err)
	assert.Equal(t, created, deleted)
	f.transport.AssertExpectations(t)

	_, err = f.svc.GetOrder(context.Background(), created.CustomerKey, created.OrderKey)
	assert.True(t, errors.Is(err, domain.ErrOrderNotFound))

	_, err = f.svc.DeleteOrder(context.Background(), created.CustomerKey, created.OrderKey)
	assert.True(t, errors.Is(err, domain.ErrOrderNotFound))
}

func TestListOrdersRoutesByCustomerKey(t *testing.T) {
	repo := new(MockRepository)
	svc := NewOrderApplicationService(repo, new(MockCatalog), nil, noop.NewTracerProvider().Tracer("test"))

	all := []*domain.Order{{CustomerKey: "a"}, {CustomerKey: "b"}}
	repo.On("GetAll", mock.Anything).Return(all, nil).Once()
	repo.On("GetByCustomer", mock.Anything, "a").Return(all[:1], nil).Once()

	got, err := svc.ListOrders(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.ListOrders(context.Background(), "a")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	repo.AssertExpectations(t)
}

func TestToOrderResponseUsesMillis(t *testing.T) {
	created := time.Date(2026, 5, 1, 8, 30, 0, 250*int(time.Millisecond), time.UTC)
	resp := ToOrderResponse(&domain.Order{CustomerKey: "a", OrderKey: "o", CreatedAt: created})

	assert.Equal(t, created.UnixMilli(), resp.CreatedAt)
	assert.Empty(t, resp.Products)
	assert.Nil(t, ToOrderResponse(nil))
}
