package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

// Catalog sheet columns. The first row is a header.
const (
	colName = iota
	colBrand
	colCategory
	colImages
	colDescription
	colPrice
	requiredColumns
)

type importReport struct {
	totalRows  int
	valid      int
	skipped    int
	duplicates int
}

func (r importReport) print() {
	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows: %d\n", r.totalRows)
	fmt.Printf("  Valid products: %d\n", r.valid)
	fmt.Printf("  Skipped rows: %d\n", r.skipped)
	fmt.Printf("  Duplicate rows: %d\n", r.duplicates)
}

// readProductsFromXLSX reads the first sheet. Rows missing a name, category,
// image or a parseable price are skipped; name+brand duplicates keep the
// first row.
func readProductsFromXLSX(filePath string) ([]model.Product, importReport, error) {
	var report importReport

	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, report, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, report, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, report, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, report, fmt.Errorf("no data found in XLSX file")
	}

	var products []model.Product
	seen := make(map[string]bool)

	for i, row := range rows {
		if i == 0 {
			continue
		}
		report.totalRows++

		// trailing empty cells are trimmed by excelize
		for len(row) < requiredColumns {
			row = append(row, "")
		}

		name := strings.TrimSpace(row[colName])
		brand := strings.TrimSpace(row[colBrand])
		category := model.NormalizeCategory(row[colCategory])
		images := splitImages(row[colImages])
		price, err := strconv.ParseFloat(strings.TrimSpace(row[colPrice]), 64)

		if name == "" || category == "" || len(images) == 0 || err != nil {
			report.skipped++
			continue
		}

		key := strings.ToLower(name + "|" + brand)
		if seen[key] {
			report.duplicates++
			continue
		}
		seen[key] = true

		products = append(products, model.Product{
			Name:        name,
			Brand:       brand,
			Category:    category,
			Images:      images,
			Description: strings.TrimSpace(row[colDescription]),
			Price:       price,
		})
	}

	report.valid = len(products)
	return products, report, nil
}

// splitImages accepts URLs separated by "|", "," or newlines
func splitImages(cell string) []string {
	fields := strings.FieldsFunc(cell, func(r rune) bool {
		return r == '|' || r == ',' || r == '\n'
	})
	images := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			images = append(images, f)
		}
	}
	return images
}
