package repository

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func TestFindBySKUReturnsNilWhenAbsent(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewProductsRepository(gormDB, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	product, err := repo.FindBySKU("MISSING-SKU")
	assert.NoError(t, err)
	assert.Nil(t, product)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindBySKUReturnsProduct(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewProductsRepository(gormDB, nil)

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "name", "slug", "sku", "price"}).
		AddRow(id, "Air Zoom", "air-zoom", "NIK-1", "1200000")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products"`)).
		WillReturnRows(rows)

	product, err := repo.FindBySKU("NIK-1")
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, id, product.ID)
	assert.Equal(t, "NIK-1", product.SKU)
}

func TestGetProductByIDReturnsNilWhenAbsent(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewProductsRepository(gormDB, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	product, err := repo.GetProductByID(uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, product)
}

func TestGetProductBySlugReturnsNilWhenAbsent(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewProductsRepository(gormDB, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	product, err := repo.GetProductBySlug("gone-forever")
	assert.NoError(t, err)
	assert.Nil(t, product)
}

func TestGetCategoryByIDReturnsNilWhenAbsent(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewProductsRepository(gormDB, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "categories"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	category, err := repo.GetCategoryByID(uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, category)
}

func TestSKUExists(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := NewProductsRepository(gormDB, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "products"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.SKUExists("NIK-1")
	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestGenerateSlug(t *testing.T) {
	cases := map[string]string{
		"Air Zoom Pegasus 41":  "air-zoom-pegasus-41",
		"  Trimmed Name  ":     "trimmed-name",
		"Weird!@# Characters?": "weird-characters",
		"already-a-slug":       "already-a-slug",
	}

	for input, expected := range cases {
		assert.Equal(t, expected, GenerateSlug(input), "input %q", input)
	}
}
