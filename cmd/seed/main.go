package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/pkg/logger"
)

func main() {
	assumeYes := flag.Bool("y", false, "import without asking for confirmation")
	flag.Usage = func() {
		fmt.Println("Usage: go run ./cmd/seed [-y] <catalog.xlsx>")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		log.Fatal("missing catalog file")
	}
	filePath := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.Initialize(logger.Config{Level: "warn", Format: "console"})

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	products, report, err := readProductsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}
	report.print()

	if len(products) == 0 {
		fmt.Println("Nothing to import.")
		return
	}

	if !*assumeYes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	// go through the service so imported rows get the same validation as the API
	productService := service.NewProductService(db.GetDB(), repository.NewProductRepository(db.GetDB()))

	ctx := context.Background()
	imported, failed := 0, 0
	for i := range products {
		if err := productService.Create(ctx, &products[i]); err != nil {
			failed++
			fmt.Printf("  row %q rejected: %v\n", products[i].Name, err)
			continue
		}
		imported++
	}

	fmt.Println("Import completed.")
	fmt.Printf("Total products imported: %d (rejected: %d)\n", imported, failed)
}
