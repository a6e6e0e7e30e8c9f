package services

import (
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sneakerflash/internal/models"
)

type fakeProductStore struct {
	bySKU   map[string]*models.Product
	created int
	updated int
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{bySKU: make(map[string]*models.Product)}
}

func (s *fakeProductStore) FindBySKU(sku string) (*models.Product, error) {
	if p, ok := s.bySKU[sku]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeProductStore) SKUExists(sku string) (bool, error) {
	_, ok := s.bySKU[sku]
	return ok, nil
}

func (s *fakeProductStore) CreateProduct(product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	copied := *product
	s.bySKU[product.SKU] = &copied
	s.created++
	return nil
}

func (s *fakeProductStore) UpdateProduct(product *models.Product) error {
	copied := *product
	s.bySKU[product.SKU] = &copied
	s.updated++
	return nil
}

type fakeCategoryStore struct {
	byName map[string]*models.Category
}

func newFakeCategoryStore() *fakeCategoryStore {
	return &fakeCategoryStore{byName: make(map[string]*models.Category)}
}

func (s *fakeCategoryStore) GetOrCreateCategoryByName(name string) (*models.Category, bool, error) {
	if c, ok := s.byName[name]; ok {
		return c, false, nil
	}
	c := &models.Category{ID: uuid.New(), Name: name}
	s.byName[name] = c
	return c, true, nil
}

func newTestImportService(products *fakeProductStore) *ImportService {
	log := logrus.New()
	log.SetOutput(io.Discard)
	svc := NewImportService(products, newFakeCategoryStore(), log)
	svc.randomPart = func(n int) string { return "XXXX"[:n] }
	return svc
}

func TestRunSkipsRowsWithBlankNameAndPrice(t *testing.T) {
	store := newFakeProductStore()
	svc := newTestImportService(store)

	result := svc.Run([]map[string]string{
		{"name": "", "price": ""},
		{"name": "", "price": "", "brand": "Nike"},
	})

	assert.Equal(t, 2, result.SkipCount)
	assert.Equal(t, 0, result.SuccessCount)
	assert.Equal(t, 0, result.ErrorCount)
	assert.True(t, result.Success)
	assert.Equal(t, 0, store.created)
}

func TestRunIsIdempotentPerSKU(t *testing.T) {
	store := newFakeProductStore()
	svc := newTestImportService(store)

	rows := []map[string]string{
		{"name": "Air Zoom", "price": "1200000", "sku": "NIK-AIRZOO-1111"},
		{"name": "Court Vision", "price": "800000", "sku": "NIK-COURTV-2222"},
	}

	first := svc.Run(rows)
	require.Equal(t, 2, first.SuccessCount)
	require.Equal(t, 2, first.CreatedCount)

	second := svc.Run(rows)
	assert.Equal(t, 2, second.SuccessCount)
	assert.Equal(t, 0, second.CreatedCount)
	assert.Equal(t, 2, second.UpdatedCount)
	assert.Len(t, store.bySKU, 2)
}

func TestRunReimportOverwritesFields(t *testing.T) {
	store := newFakeProductStore()
	svc := newTestImportService(store)

	svc.Run([]map[string]string{
		{"name": "Air Zoom", "price": "1200000", "sku": "SKU-1", "brand": "Nike"},
	})
	svc.Run([]map[string]string{
		{"name": "Air Zoom Pegasus", "price": "1300000", "sku": "SKU-1"},
	})

	p := store.bySKU["SKU-1"]
	require.NotNil(t, p)
	assert.Equal(t, "Air Zoom Pegasus", p.Name)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(1300000)))
	assert.Nil(t, p.Brand)
}

func TestRunMissingPriceRecordsRowError(t *testing.T) {
	store := newFakeProductStore()
	svc := newTestImportService(store)

	result := svc.Run([]map[string]string{
		{"name": "Valid", "price": "100", "sku": "A-1"},
		{"name": "No Price", "price": ""},
	})

	assert.Equal(t, 1, result.SuccessCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Error, "price is required")
	assert.Equal(t, "No Price", result.Errors[0].Data["name"])
	assert.False(t, result.Success)
}

func TestRunRejectsNonPositivePrice(t *testing.T) {
	store := newFakeProductStore()
	svc := newTestImportService(store)

	result := svc.Run([]map[string]string{
		{"name": "Free Shoe", "price": "0", "sku": "A-1"},
		{"name": "Negative Shoe", "price": "-50", "sku": "A-2"},
	})

	assert.Equal(t, 0, result.SuccessCount)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0].Error, "greater than zero")
	assert.Contains(t, result.Errors[1].Error, "greater than zero")
	assert.Nil(t, store.bySKU["A-1"])
	assert.Nil(t, store.bySKU["A-2"])
}

func TestRunUsesParserRowNumbers(t *testing.T) {
	store := newFakeProductStore()
	svc := newTestImportService(store)

	result := svc.Run([]map[string]string{
		{"name": "Broken", "price": "abc", "_row": "17"},
	})

	require.Len(t, result.Errors, 1)
	assert.Equal(t, 17, result.Errors[0].Row)
	assert.NotContains(t, result.Errors[0].Data, "_row")
}

func TestRunRowFailureIsIsolated(t *testing.T) {
	store := newFakeProductStore()
	svc := newTestImportService(store)

	result := svc.Run([]map[string]string{
		{"name": "Bad", "price": "not-a-number"},
		{"name": "Good", "price": "500", "sku": "G-1"},
	})

	assert.Equal(t, 1, result.ErrorCount)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Contains(t, store.bySKU, "G-1")
}

func TestNormalizeRowPriceAndEmptySalePrice(t *testing.T) {
	svc := newTestImportService(newFakeProductStore())

	product, err := svc.normalizeRow(map[string]string{
		"name":       "Pegasus",
		"price":      "1200000",
		"sale_price": "",
	})

	require.NoError(t, err)
	assert.True(t, product.Price.Equal(decimal.NewFromInt(1200000)))
	assert.Nil(t, product.SalePrice)
}

func TestNormalizeRowMalformedOptionalsAreDropped(t *testing.T) {
	svc := newTestImportService(newFakeProductStore())

	product, err := svc.normalizeRow(map[string]string{
		"name":            "Pegasus",
		"price":           "100",
		"sale_price":      "cheap",
		"weight":          "heavy",
		"sale_start_date": "soon",
	})

	require.NoError(t, err)
	assert.Nil(t, product.SalePrice)
	assert.Nil(t, product.Weight)
	assert.Nil(t, product.SaleStartDate)
}

func TestNormalizeRowParsesDates(t *testing.T) {
	svc := newTestImportService(newFakeProductStore())

	product, err := svc.normalizeRow(map[string]string{
		"name":            "Pegasus",
		"price":           "100",
		"sale_start_date": "2026-01-01",
		"sale_end_date":   "31/01/2026",
	})

	require.NoError(t, err)
	require.NotNil(t, product.SaleStartDate)
	require.NotNil(t, product.SaleEndDate)
	assert.Equal(t, "2026-01-01", product.SaleStartDate.Format("2006-01-02"))
	assert.Equal(t, "2026-01-31", product.SaleEndDate.Format("2006-01-02"))
}

func TestNormalizeRowResolvesCategory(t *testing.T) {
	svc := newTestImportService(newFakeProductStore())

	product, err := svc.normalizeRow(map[string]string{
		"name":     "Pegasus",
		"price":    "100",
		"category": "Running",
	})

	require.NoError(t, err)
	assert.NotNil(t, product.CategoryID)
}

func TestParseBoolCoercion(t *testing.T) {
	cases := []struct {
		value    string
		expected bool
	}{
		{"0", false},
		{"false", false},
		{"", true}, // default applies
		{"aktif", true},
		{"ya", true},
		{"ACTIVE", true},
		{"no", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, parseBool(tc.value, true), "value %q", tc.value)
	}

	assert.False(t, parseBool("", false))
	assert.True(t, parseBool("1", false))
}

func TestResolveImages(t *testing.T) {
	images := ResolveImages("http://a.jpg, b.jpg, sub/c.jpg")
	assert.Equal(t, models.StringList{"http://a.jpg", "products/b.jpg", "sub/c.jpg"}, images)
}

func TestResolveImagesDropsEmptyTokens(t *testing.T) {
	images := ResolveImages(" , https://cdn.example.com/x.png ,, shoe.png ")
	assert.Equal(t, models.StringList{"https://cdn.example.com/x.png", "products/shoe.png"}, images)
}

func TestParseListJSONAndComma(t *testing.T) {
	assert.Equal(t, models.StringList{"black", "white"}, parseList(`["black","white"]`, false))
	assert.Equal(t, models.StringList{"black", "white"}, parseList("black, white", false))
	assert.Equal(t, models.StringList{"black", "White"}, parseList("black, White, black", false))
	// broken JSON falls back to comma splitting
	assert.Equal(t, models.StringList{`["black"`, `"white"`}, parseList(`["black", "white"`, true))
}

func TestGenerateSKUFormat(t *testing.T) {
	svc := newTestImportService(newFakeProductStore())

	sku, err := svc.GenerateSKU("Air Zoom Pegasus 41", "Nike")
	require.NoError(t, err)
	assert.Equal(t, "NIK-AIRZOO-XXXX", sku)
}

func TestGenerateSKUDefaultsBrand(t *testing.T) {
	svc := newTestImportService(newFakeProductStore())

	sku, err := svc.GenerateSKU("Runner", "")
	require.NoError(t, err)
	assert.Equal(t, "PRD-RUNNER-XXXX", sku)
}

func TestGenerateSKUAppendsSuffixOnCollision(t *testing.T) {
	store := newFakeProductStore()
	store.bySKU["NIK-AIRZOO-XXXX"] = &models.Product{SKU: "NIK-AIRZOO-XXXX"}
	store.bySKU["NIK-AIRZOO-XXXX-1"] = &models.Product{SKU: "NIK-AIRZOO-XXXX-1"}
	svc := newTestImportService(store)

	sku, err := svc.GenerateSKU("Air Zoom Pegasus", "Nike")
	require.NoError(t, err)
	assert.Equal(t, "NIK-AIRZOO-XXXX-2", sku)

	exists, err := store.SKUExists(sku)
	require.NoError(t, err)
	assert.False(t, exists)
}
