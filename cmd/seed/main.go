package main

import (
	"fmt"

	"github.com/bookvault-next/internal/config"
	"github.com/bookvault-next/internal/logger"
	"github.com/bookvault-next/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加分类
	categories := []models.Category{
		{Slug: "fiction", Name: "Fiction", SortOrder: 300},
		{Slug: "science", Name: "Science", SortOrder: 200},
		{Slug: "history", Name: "History", SortOrder: 100},
	}

	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&cat).Error; err != nil {
				stdLog.Printf("Failed to create category %s: %v", cat.Slug, err)
			} else {
				stdLog.Printf("Created category: %s", cat.Slug)
			}
		} else {
			stdLog.Printf("Category already exists: %s", cat.Slug)
		}
	}

	categoryIDs := map[string]uint{}
	var categoryList []models.Category
	if err := models.DB.Where("slug IN ?", []string{"fiction", "science", "history"}).Find(&categoryList).Error; err != nil {
		stdLog.Printf("Failed to load categories: %v", err)
	}
	for _, cat := range categoryList {
		categoryIDs[cat.Slug] = cat.ID
	}

	// 添加作者
	authors := []models.Author{
		{FirstName: "Fyodor", LastName: "Dostoevsky", Bio: "Russian novelist, author of Crime and Punishment and The Brothers Karamazov."},
		{FirstName: "Carl", LastName: "Sagan", Bio: "Astronomer and science communicator, best known for Cosmos."},
		{FirstName: "Yuval Noah", LastName: "Harari", Bio: "Historian, author of Sapiens and Homo Deus."},
	}

	authorIDs := map[string]uint{}
	for _, author := range authors {
		var existing models.Author
		if err := models.DB.Where("first_name = ? AND last_name = ?", author.FirstName, author.LastName).First(&existing).Error; err != nil {
			if err := models.DB.Create(&author).Error; err != nil {
				stdLog.Printf("Failed to create author %s: %v", author.FullName(), err)
				continue
			}
			stdLog.Printf("Created author: %s", author.FullName())
			authorIDs[author.FullName()] = author.ID
		} else {
			stdLog.Printf("Author already exists: %s", existing.FullName())
			authorIDs[existing.FullName()] = existing.ID
		}
	}

	// 添加图书
	books := []models.Book{
		{
			Slug:            "crime-and-punishment",
			Name:            "Crime and Punishment",
			Description:     "A former student murders a pawnbroker and wrestles with guilt, morality and redemption in 19th-century Petersburg.",
			AuthorID:        authorIDs["Fyodor Dostoevsky"],
			CategoryID:      categoryIDs["fiction"],
			PricePerUnit:    models.NewMoneyFromDecimal(decimal.NewFromInt(520)),
			DiscountPercent: 10,
			NumberInStock:   120,
			Images:          models.StringArray([]string{"https://images.unsplash.com/photo-1544947950-fa07a98d237f?w=800"}),
			Tags:            models.StringArray([]string{"classics", "russian-literature"}),
			IsActive:        true,
			SortOrder:       300,
		},
		{
			Slug:            "the-brothers-karamazov",
			Name:            "The Brothers Karamazov",
			Description:     "Dostoevsky's final novel about faith, doubt and patricide in a provincial Russian family.",
			AuthorID:        authorIDs["Fyodor Dostoevsky"],
			CategoryID:      categoryIDs["fiction"],
			PricePerUnit:    models.NewMoneyFromDecimal(decimal.NewFromInt(640)),
			DiscountPercent: 0,
			NumberInStock:   75,
			Images:          models.StringArray([]string{"https://images.unsplash.com/photo-1512820790803-83ca734da794?w=800"}),
			Tags:            models.StringArray([]string{"classics", "russian-literature"}),
			IsActive:        true,
			SortOrder:       290,
		},
		{
			Slug:            "cosmos",
			Name:            "Cosmos",
			Description:     "A sweeping tour of the universe and humanity's place in it, from the companion book to the landmark TV series.",
			AuthorID:        authorIDs["Carl Sagan"],
			CategoryID:      categoryIDs["science"],
			PricePerUnit:    models.NewMoneyFromDecimal(decimal.NewFromInt(780)),
			DiscountPercent: 15,
			NumberInStock:   48,
			Images:          models.StringArray([]string{"https://images.unsplash.com/photo-1462331940025-496dfbfc7564?w=800"}),
			Tags:            models.StringArray([]string{"astronomy", "popular-science"}),
			IsActive:        true,
			SortOrder:       280,
		},
		{
			Slug:            "sapiens",
			Name:            "Sapiens: A Brief History of Humankind",
			Description:     "From the Stone Age to the present, how Homo sapiens came to dominate the planet.",
			AuthorID:        authorIDs["Yuval Noah Harari"],
			CategoryID:      categoryIDs["history"],
			PricePerUnit:    models.NewMoneyFromDecimal(decimal.NewFromInt(850)),
			DiscountPercent: 0,
			NumberInStock:   200,
			Images:          models.StringArray([]string{"https://images.unsplash.com/photo-1529699211952-734e80c4d42b?w=800"}),
			Tags:            models.StringArray([]string{"history", "anthropology"}),
			IsActive:        true,
			SortOrder:       270,
		},
		{
			Slug:            "demo-out-of-stock",
			Name:            "Demo Book - Out of Stock",
			Description:     "Used to demonstrate the sold-out badge and disabled purchase button on the storefront.",
			AuthorID:        authorIDs["Carl Sagan"],
			CategoryID:      categoryIDs["science"],
			PricePerUnit:    models.NewMoneyFromDecimal(decimal.NewFromInt(300)),
			DiscountPercent: 0,
			NumberInStock:   0,
			Images:          models.StringArray([]string{"https://images.unsplash.com/photo-1495446815901-a7297e633e8d?w=800"}),
			Tags:            models.StringArray([]string{"demo"}),
			IsActive:        true,
			SortOrder:       100,
		},
	}

	for _, book := range books {
		if book.AuthorID == 0 || book.CategoryID == 0 {
			stdLog.Printf("Skip book %s: author_id or category_id missing", book.Slug)
			continue
		}
		var existing models.Book
		if err := models.DB.Where("slug = ?", book.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&book).Error; err != nil {
				stdLog.Printf("Failed to create book %s: %v", book.Slug, err)
			} else {
				stdLog.Printf("Created book: %s", book.Slug)
			}
		} else {
			existing.Name = book.Name
			existing.Description = book.Description
			existing.AuthorID = book.AuthorID
			existing.CategoryID = book.CategoryID
			existing.PricePerUnit = book.PricePerUnit
			existing.DiscountPercent = book.DiscountPercent
			existing.NumberInStock = book.NumberInStock
			existing.Images = book.Images
			existing.Tags = book.Tags
			existing.IsActive = book.IsActive
			existing.SortOrder = book.SortOrder
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update book %s: %v", book.Slug, err)
			} else {
				stdLog.Printf("Updated book: %s", book.Slug)
			}
		}
	}

	fmt.Println("\n✅ Seed data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 3 Categories")
	fmt.Println("- 3 Authors")
	fmt.Println("- 5 Books (含售罄演示图书)")
}
