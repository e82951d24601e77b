package application

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"ecommerce/internal/pkg/eventbus"
	"ecommerce/internal/pkg/requestinfo"
	"ecommerce/internal/service/product/domain"
	"ecommerce/internal/service/product/infrastructure"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Name() string { return "mock" }

func (m *MockTransport) Send(ctx context.Context, key string, env eventbus.Envelope) error {
	args := m.Called(ctx, key, env)
	return args.Error(0)
}

func newService(transport eventbus.Transport, policy eventbus.Policy) (*CatalogService, *infrastructure.MemoryProductRepository) {
	repo := infrastructure.NewMemoryProductRepository()
	svc := NewCatalogService(repo, eventbus.NewEmitter(transport, policy), noop.NewTracerProvider().Tracer("test"))
	return svc, repo
}

func TestCreateProductEmitsEvent(t *testing.T) {
	// Arrange
	transport := new(MockTransport)
	var sent eventbus.Envelope
	transport.On("Send", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(2).(eventbus.Envelope) }).
		Return(nil).Once()
	svc, _ := newService(transport, eventbus.SwallowErrors)
	ctx := requestinfo.NewContext(context.Background(), requestinfo.Info{APIRequestID: "req-9"})

	// Act
	created, err := svc.CreateProduct(ctx, &domain.Product{ProductID: "mine", ProductName: "Phone", Code: "COD1", Price: decimal.NewFromInt(10)}, "admin@example.com")

	// Assert
	require.NoError(t, err)
	assert.NotEqual(t, "mine", created.ProductID)
	assert.Equal(t, string(domain.ProductCreated), sent.EventKind)

	var ev domain.ProductEvent
	require.NoError(t, sent.Decode(&ev))
	assert.Equal(t, created.ProductID, ev.ProductID)
	assert.Equal(t, "COD1", ev.ProductCode)
	assert.Equal(t, "req-9", ev.RequestID)
	assert.Equal(t, "admin@example.com", ev.Email)
	transport.AssertExpectations(t)
}

func TestCreateProductSwallowsDeliveryFailure(t *testing.T) {
	transport := new(MockTransport)
	transport.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("events function down")).Once()
	svc, repo := newService(transport, eventbus.SwallowErrors)

	created, err := svc.CreateProduct(context.Background(), &domain.Product{Code: "COD1"}, "")

	require.NoError(t, err)
	stored, err := repo.GetByID(context.Background(), created.ProductID)
	require.NoError(t, err)
	assert.Equal(t, created, stored)
}

func TestCreateProductPropagatesWhenConfigured(t *testing.T) {
	transport := new(MockTransport)
	transport.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("events function down")).Once()
	svc, _ := newService(transport, eventbus.PropagateErrors)

	_, err := svc.CreateProduct(context.Background(), &domain.Product{Code: "COD1"}, "")
	assert.Error(t, err)
}

func TestUpdateAndDeleteMissingProductDoNotEmit(t *testing.T) {
	transport := new(MockTransport)
	svc, _ := newService(transport, eventbus.SwallowErrors)

	_, err := svc.UpdateProduct(context.Background(), "ghost", &domain.Product{Code: "X"}, "")
	assert.True(t, errors.Is(err, domain.ErrProductNotFound))

	_, err = svc.DeleteProduct(context.Background(), "ghost", "")
	assert.True(t, errors.Is(err, domain.ErrProductNotFound))

	transport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteProductReturnsPriorRecord(t *testing.T) {
	transport := new(MockTransport)
	transport.On("Send", mock.Anything, mock.Anything, mock.MatchedBy(func(env eventbus.Envelope) bool {
		return env.EventKind == string(domain.ProductDeleted)
	})).Return(nil).Once()
	transport.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc, _ := newService(transport, eventbus.SwallowErrors)

	created, err := svc.CreateProduct(context.Background(), &domain.Product{ProductName: "Mug", Code: "M1", Price: decimal.NewFromInt(5)}, "")
	require.NoError(t, err)

	deleted, err := svc.DeleteProduct(context.Background(), created.ProductID, "")
	require.NoError(t, err)
	assert.Equal(t, created, deleted)

	_, err = svc.GetProduct(context.Background(), created.ProductID)
	assert.True(t, errors.Is(err, domain.ErrProductNotFound))
	transport.AssertExpectations(t)
}
