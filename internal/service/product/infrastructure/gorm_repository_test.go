package infrastructure

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecommerce/internal/pkg/database"
	"ecommerce/internal/service/product/domain"
)

var productColumns = []string{"product_id", "product_name", "code", "price", "model", "product_url"}

func newMockProductRepository(t *testing.T) (*GormProductRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	db, err := database.FromConn(sqlDB)
	require.NoError(t, err)
	return NewGormProductRepository(db, "products"), mock
}

func TestGormUpdateMissingProduct(t *testing.T) {
	repo, mock := newMockProductRepository(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `products` SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	_, err := repo.Update(context.Background(), "ghost", &domain.Product{ProductName: "P", Code: "C", Price: decimal.NewFromInt(1)})

	assert.True(t, errors.Is(err, domain.ErrProductNotFound))
	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "ghost", nf.ProductID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUpdateOverwritesAllFields(t *testing.T) {
	repo, mock := newMockProductRepository(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `products` SET `code`=?,`model`=?,`price`=?,`product_name`=?,`product_url`=? WHERE product_id = ?")).
		WithArgs("COD1", "", sqlmock.AnyArg(), "Phone 2", "", "p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	updated, err := repo.Update(context.Background(), "p-1", &domain.Product{ProductName: "Phone 2", Code: "COD1", Price: decimal.NewFromInt(12)})

	require.NoError(t, err)
	assert.Equal(t, "p-1", updated.ProductID)
	assert.Equal(t, "Phone 2", updated.ProductName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormGetByIDsQueriesDistinctIDs(t *testing.T) {
	repo, mock := newMockProductRepository(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `products` WHERE product_id IN (?,?)")).
		WithArgs("A", "B").
		WillReturnRows(sqlmock.NewRows(productColumns).AddRow("A", "Mouse", "COD-A", "10.00", "", ""))

	found, missing, err := repo.GetByIDs(context.Background(), []string{"A", "B", "A"})

	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "COD-A", found[0].Code)
	assert.True(t, found[0].Price.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, []string{"B"}, missing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormDeleteMissingProductRollsBack(t *testing.T) {
	repo, mock := newMockProductRepository(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `products` WHERE product_id = ?")).
		WillReturnRows(sqlmock.NewRows(productColumns))
	mock.ExpectRollback()

	_, err := repo.Delete(context.Background(), "ghost")

	assert.True(t, errors.Is(err, domain.ErrProductNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
