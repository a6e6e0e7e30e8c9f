package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"sneakerflash/internal/events"
	"sneakerflash/internal/models"
	"sneakerflash/internal/services"
)

const maxImportFileSize = 10 << 20 // 10 MB

// ImportHandler accepts spreadsheet uploads and feeds them through the
// import pipeline
type ImportHandler struct {
	importSvc *services.ImportService
	publisher *events.Publisher
	log       *logrus.Logger
}

func NewImportHandler(importSvc *services.ImportService, publisher *events.Publisher, log *logrus.Logger) *ImportHandler {
	return &ImportHandler{
		importSvc: importSvc,
		publisher: publisher,
		log:       log,
	}
}

// GetImportTemplate returns the import template definition or file
// GET /api/v1/products/import/template?format=json|csv|xlsx
func (h *ImportHandler) GetImportTemplate(c *gin.Context) {
	template := models.ProductImportTemplate()

	switch c.DefaultQuery("format", "json") {
	case "csv":
		h.generateCSVTemplate(c, template)
	case "xlsx":
		h.generateXLSXTemplate(c, template)
	default:
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"template": template,
		})
	}
}

// generateCSVTemplate downloads a CSV template (headers only)
func (h *ImportHandler) generateCSVTemplate(c *gin.Context, template models.ImportTemplate) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=products_import_template.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	headers := make([]string, len(template.Columns))
	for i, col := range template.Columns {
		headers[i] = col.Name
	}
	writer.Write(headers)
}

// generateXLSXTemplate downloads an Excel template with an instructions
// sheet describing each column
func (h *ImportHandler) generateXLSXTemplate(c *gin.Context, template models.ImportTemplate) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Products"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
	})

	for i, col := range template.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		headerText := col.Name
		if col.Required {
			headerText = col.Name + " *"
		}
		f.SetCellValue(sheetName, cell, headerText)
		if col.Required {
			f.SetCellStyle(sheetName, cell, cell, requiredStyle)
		} else {
			f.SetCellStyle(sheetName, cell, cell, headerStyle)
		}
	}

	if _, err := f.NewSheet("Instructions"); err == nil {
		f.SetCellValue("Instructions", "A1", "Column")
		f.SetCellValue("Instructions", "B1", "Required")
		f.SetCellValue("Instructions", "C1", "Description")
		f.SetCellValue("Instructions", "D1", "Example")
		for i, col := range template.Columns {
			row := i + 2
			f.SetCellValue("Instructions", fmt.Sprintf("A%d", row), col.Name)
			f.SetCellValue("Instructions", fmt.Sprintf("B%d", row), col.Required)
			f.SetCellValue("Instructions", fmt.Sprintf("C%d", row), col.Description)
			f.SetCellValue("Instructions", fmt.Sprintf("D%d", row), col.Example)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=products_import_template.xlsx")
	if err := f.Write(c.Writer); err != nil {
		h.log.WithError(err).Error("failed to write template file")
	}
}

// ImportProducts imports products from an uploaded CSV or XLSX file
// POST /api/v1/products/import
func (h *ImportHandler) ImportProducts(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "No file uploaded")
		return
	}
	if fileHeader.Size > maxImportFileSize {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "File exceeds the 10MB limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read uploaded file")
		return
	}
	defer file.Close()

	var rows []map[string]string
	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".csv":
		rows, err = parseCSV(file)
	case ".xlsx":
		rows, err = parseXLSX(file)
	default:
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unsupported file type; use .csv or .xlsx")
		return
	}
	if err != nil {
		respondError(c, http.StatusBadRequest, "PARSE_ERROR", err.Error())
		return
	}

	result := h.importSvc.Run(rows)
	h.log.WithFields(logrus.Fields{
		"total":   result.TotalRows,
		"success": result.SuccessCount,
		"skipped": result.SkipCount,
		"errors":  result.ErrorCount,
	}).Info("import finished")
	h.publisher.PublishImportCompleted(c.Request.Context(), result)

	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

// parseCSV parses a CSV file into string-keyed rows. Headers are lowercased
// and the original spreadsheet position is tracked under "_row".
func parseCSV(file io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(file)

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	normalizeHeaders(headers)

	var rows []map[string]string
	lineNum := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading line %d: %w", lineNum+1, err)
		}

		row := make(map[string]string)
		for i, value := range record {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(value)
			}
		}
		row["_row"] = strconv.Itoa(lineNum + 1)
		rows = append(rows, row)
		lineNum++
	}

	return rows, nil
}

// parseXLSX parses an Excel file into string-keyed rows
func parseXLSX(file io.Reader) ([]map[string]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	sheetName := sheets[0]
	for _, name := range sheets {
		if strings.EqualFold(name, "Products") {
			sheetName = name
			break
		}
	}

	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(excelRows) < 2 {
		return nil, fmt.Errorf("file must have a header row and at least one data row")
	}

	headers := excelRows[0]
	normalizeHeaders(headers)

	var rows []map[string]string
	for rowIdx, excelRow := range excelRows[1:] {
		row := make(map[string]string)
		for i, value := range excelRow {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(value)
			}
		}
		row["_row"] = strconv.Itoa(rowIdx + 2)
		rows = append(rows, row)
	}

	return rows, nil
}

// normalizeHeaders lowercases headers and strips the required marker the
// template adds
func normalizeHeaders(headers []string) {
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.ToLower(headers[i]))
		headers[i] = strings.TrimSuffix(headers[i], " *")
	}
}
