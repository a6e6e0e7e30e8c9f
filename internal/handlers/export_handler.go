package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"sneakerflash/internal/models"
	"sneakerflash/internal/repository"
)

// ExportHandler streams the product catalog as a spreadsheet whose columns
// match the import template, so an export can be edited and re-imported.
type ExportHandler struct {
	repo *repository.ProductsRepository
	log  *logrus.Logger
}

func NewExportHandler(repo *repository.ProductsRepository, log *logrus.Logger) *ExportHandler {
	return &ExportHandler{repo: repo, log: log}
}

// ExportProducts downloads the full catalog
// GET /api/v1/products/export?format=xlsx|csv
func (h *ExportHandler) ExportProducts(c *gin.Context) {
	products, err := h.repo.ListAllProducts()
	if err != nil {
		h.log.WithError(err).Error("failed to load products for export")
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to export products")
		return
	}

	filename := fmt.Sprintf("products_%s", time.Now().Format("20060102"))
	switch c.DefaultQuery("format", "xlsx") {
	case "csv":
		h.exportCSV(c, products, filename+".csv")
	default:
		h.exportXLSX(c, products, filename+".xlsx")
	}
}

func (h *ExportHandler) exportCSV(c *gin.Context, products []models.Product, filename string) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename="+filename)

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders())
	for i := range products {
		writer.Write(exportRow(&products[i]))
	}
}

func (h *ExportHandler) exportXLSX(c *gin.Context, products []models.Product, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Products"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})

	for i, header := range exportHeaders() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx := range products {
		for colIdx, value := range exportRow(&products[rowIdx]) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	if err := f.Write(c.Writer); err != nil {
		h.log.WithError(err).Error("failed to write export file")
	}
}

func exportHeaders() []string {
	columns := models.ProductImportColumns()
	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.Name
	}
	return headers
}

func exportRow(p *models.Product) []string {
	category := ""
	if p.Category != nil {
		category = p.Category.Name
	}
	return []string{
		p.Name,
		p.Slug,
		derefString(p.ShortDescription),
		derefString(p.Description),
		p.Price.String(),
		decimalString(p.SalePrice),
		p.SKU,
		category,
		derefString(p.Brand),
		strings.Join(p.Images, ", "),
		strings.Join(p.GenderTarget, ", "),
		derefString(p.ProductType),
		strings.Join(p.AvailableColors, ", "),
		strings.Join(p.AvailableSizes, ", "),
		strings.Join(p.Features, ", "),
		strings.Join(p.SearchKeywords, ", "),
		fmt.Sprintf("%d", p.StockQuantity),
		decimalString(p.Weight),
		boolString(p.IsActive),
		boolString(p.IsFeatured),
		boolString(p.IsFeaturedSale),
		dateString(p.SaleStartDate),
		dateString(p.SaleEndDate),
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func decimalString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func dateString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
