package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"

	"github.com/recipebox/recipebox/internal/config"
	"github.com/recipebox/recipebox/internal/models"
	"github.com/recipebox/recipebox/internal/repository"
	"github.com/recipebox/recipebox/pkg/logger"
)

// 预置标签集合
var defaultTags = []*models.Tag{
	{Name: "Breakfast", Slug: "breakfast"},
	{Name: "Lunch", Slug: "lunch"},
	{Name: "Dinner", Slug: "dinner"},
}

func main() {
	ingredientsPath := flag.String("ingredients", "data/ingredients.csv", "path to the ingredients CSV file (name,measurement_unit)")
	skipTags := flag.Bool("skip-tags", false, "do not create the default tag set")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logger.NewLogger("info")

	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	ctx := context.Background()
	tagRepo := repository.NewTagRepository(db.DB)
	ingredientRepo := repository.NewIngredientRepository(db.DB)

	if !*skipTags {
		if err := tagRepo.CreateBatch(ctx, defaultTags); err != nil {
			logger.WithError(err).Fatal("Failed to create default tags")
		}
		logger.WithField("count", len(defaultTags)).Info("Default tags created")
	}

	ingredients, err := readIngredients(*ingredientsPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to read ingredients file")
	}

	if len(ingredients) > 0 {
		if err := ingredientRepo.CreateBatch(ctx, ingredients); err != nil {
			logger.WithError(err).Fatal("Failed to load ingredients")
		}
	}
	logger.WithField("count", len(ingredients)).Info("Ingredients loaded")
}

// readIngredients 读取 name,measurement_unit 两列的CSV文件
func readIngredients(path string) ([]*models.Ingredient, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 2

	var ingredients []*models.Ingredient
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		ingredients = append(ingredients, &models.Ingredient{
			Name:            record[0],
			MeasurementUnit: record[1],
		})
	}
	return ingredients, nil
}
