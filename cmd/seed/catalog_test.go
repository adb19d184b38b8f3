package main

import (
	"path/filepath"
	"testing"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeCatalog(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadProductsFromXLSX(t *testing.T) {
	path := writeCatalog(t, [][]interface{}{
		{"name", "brand", "category", "images", "description", "price"},
		{"Air Max 90", "Nike", "shoes", "https://cdn.example.com/a.jpg | https://cdn.example.com/b.jpg", "Classic runner", "129.99"},
		{"Canvas Tote Bag", "Everyday", "BAGS", "https://cdn.example.com/tote.jpg", "", "25"},
		{"air max 90", "NIKE", "SHOES", "https://cdn.example.com/dup.jpg", "", "99"},
		{"No Images", "Acme", "MEN", "", "", "10"},
		{"", "Acme", "MEN", "https://cdn.example.com/x.jpg", "", "10"},
		{"Bad Price", "Acme", "MEN", "https://cdn.example.com/x.jpg", "", "free"},
		{"Bucket Hat", "Acme", "hats", "https://cdn.example.com/hat.jpg", "", "15"},
	})

	products, report, err := readProductsFromXLSX(path)
	require.NoError(t, err)

	require.Len(t, products, 3)
	assert.Equal(t, "Air Max 90", products[0].Name)
	assert.Equal(t, model.CategoryShoes, products[0].Category)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"}, products[0].Images)
	assert.Equal(t, 129.99, products[0].Price)
	assert.Equal(t, model.ProductCategory("HATS"), products[2].Category)

	assert.Equal(t, 7, report.totalRows)
	assert.Equal(t, 3, report.valid)
	assert.Equal(t, 3, report.skipped)
	assert.Equal(t, 1, report.duplicates)
}

func TestReadProductsFromXLSX_MissingFile(t *testing.T) {
	_, _, err := readProductsFromXLSX(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

func TestSplitImages(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitImages("a|b, c"))
	assert.Empty(t, splitImages("  "))
}
