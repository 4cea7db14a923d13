package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chronoshop/chronoshop/internal/model"
)

// Seed populates an empty database with the starter catalog and the
// bootstrap accounts. It is a no-op when categories already exist, so it
// is safe to call on every startup. hash is used to derive the stored
// password hashes for the bootstrap users.
func (r *Repository) Seed(ctx context.Context, hash func(string) (string, error)) error {
	count, err := r.CountCategories(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()

	categories := []*model.Category{
		{
			ID:          uuid.NewString(),
			Name:        "Prospex",
			Description: "Professional sports watches built for adventure and precision",
			ImageURL:    "https://source.unsplash.com/400x300/?seiko+prospex+sport+watch",
			IsActive:    true,
			CreatedAt:   now,
		},
		{
			ID:          uuid.NewString(),
			Name:        "Presage",
			Description: "Elegant dress watches showcasing Japanese craftsmanship",
			ImageURL:    "https://source.unsplash.com/400x300/?seiko+presage+dress+watch",
			IsActive:    true,
			CreatedAt:   now,
		},
		{
			ID:          uuid.NewString(),
			Name:        "Astron",
			Description: "Solar GPS watches representing cutting-edge technology",
			ImageURL:    "https://source.unsplash.com/400x300/?seiko+astron+solar+watch",
			IsActive:    true,
			CreatedAt:   now,
		},
		{
			ID:          uuid.NewString(),
			Name:        "5 Sports",
			Description: "Automatic sports watches with modern style and reliability",
			ImageURL:    "https://source.unsplash.com/400x300/?seiko+5+sports+automatic",
			IsActive:    true,
			CreatedAt:   now,
		},
	}

	for _, c := range categories {
		if err := r.CreateCategory(ctx, c); err != nil {
			return fmt.Errorf("seed category %s: %w", c.Name, err)
		}
	}

	prospex, presage, astron, fiveSports := categories[0].ID, categories[1].ID, categories[2].ID, categories[3].ID

	products := []*model.Product{
		{
			Name:              "Seiko Prospex Solar Diver",
			ModelNumber:       "SNE497",
			Description:       "Professional solar-powered dive watch with 200m water resistance. Features unidirectional rotating bezel and luminous hands for underwater visibility.",
			Price:             295.00,
			OriginalPrice:     350.00,
			StockQuantity:     15,
			CategoryID:        prospex,
			MovementType:      "Solar Quartz",
			CaseMaterial:      "Stainless Steel",
			CaseDiameter:      "43.5mm",
			WaterResistance:   "200m",
			StrapMaterial:     "Silicone",
			MainImageURL:      "https://source.unsplash.com/600x600/?seiko+prospex+diver+watch",
			DetailImageURL:    "https://source.unsplash.com/600x600/?watch+mechanism+detail",
			LifestyleImageURL: "https://source.unsplash.com/600x600/?diving+watch+lifestyle",
			IsFeatured:        true,
			IsOnSale:          true,
		},
		{
			Name:              "Seiko Prospex Automatic GMT",
			ModelNumber:       "SSK001",
			Description:       "Robust GMT watch perfect for world travelers. Features 24-hour GMT hand and date display with automatic movement.",
			Price:             425.00,
			StockQuantity:     8,
			CategoryID:        prospex,
			MovementType:      "Automatic",
			CaseMaterial:      "Stainless Steel",
			CaseDiameter:      "42mm",
			WaterResistance:   "100m",
			StrapMaterial:     "Stainless Steel",
			MainImageURL:      "https://source.unsplash.com/600x600/?seiko+gmt+automatic+watch",
			DetailImageURL:    "https://source.unsplash.com/600x600/?gmt+watch+face+detail",
			LifestyleImageURL: "https://source.unsplash.com/600x600/?travel+watch+lifestyle",
			IsFeatured:        true,
		},
		{
			Name:              "Seiko Presage Cocktail Time",
			ModelNumber:       "SRPB41",
			Description:       "Elegant automatic dress watch inspired by Japanese cocktail culture. Features power reserve indicator and exhibition case back.",
			Price:             350.00,
			StockQuantity:     12,
			CategoryID:        presage,
			MovementType:      "Automatic",
			CaseMaterial:      "Stainless Steel",
			CaseDiameter:      "40.5mm",
			WaterResistance:   "50m",
			StrapMaterial:     "Leather",
			MainImageURL:      "https://source.unsplash.com/600x600/?seiko+presage+cocktail+dress+watch",
			DetailImageURL:    "https://source.unsplash.com/600x600/?automatic+movement+exhibition",
			LifestyleImageURL: "https://source.unsplash.com/600x600/?elegant+dress+watch+lifestyle",
			IsFeatured:        true,
		},
		{
			Name:              "Seiko Presage Sharp Edged GMT",
			ModelNumber:       "SPB221",
			Description:       "Modern interpretation of classic design with GMT functionality. Sharp-edged case design with dual-time capability.",
			Price:             495.00,
			StockQuantity:     6,
			CategoryID:        presage,
			MovementType:      "Automatic",
			CaseMaterial:      "Stainless Steel",
			CaseDiameter:      "40.5mm",
			WaterResistance:   "100m",
			StrapMaterial:     "Stainless Steel",
			MainImageURL:      "https://source.unsplash.com/600x600/?seiko+presage+sharp+edge+gmt",
			DetailImageURL:    "https://source.unsplash.com/600x600/?sharp+edge+watch+design",
			LifestyleImageURL: "https://source.unsplash.com/600x600/?business+professional+watch",
		},
		{
			Name:              "Seiko Astron GPS Solar",
			ModelNumber:       "SSE167",
			Description:       "Revolutionary GPS solar watch that adjusts to any timezone automatically. Perpetual calendar and world time functionality.",
			Price:             1200.00,
			OriginalPrice:     1400.00,
			StockQuantity:     4,
			CategoryID:        astron,
			MovementType:      "GPS Solar",
			CaseMaterial:      "Titanium",
			CaseDiameter:      "44.6mm",
			WaterResistance:   "100m",
			StrapMaterial:     "Titanium",
			MainImageURL:      "https://source.unsplash.com/600x600/?seiko+astron+gps+solar+titanium",
			DetailImageURL:    "https://source.unsplash.com/600x600/?gps+solar+watch+technology",
			LifestyleImageURL: "https://source.unsplash.com/600x600/?luxury+technology+watch+lifestyle",
			IsFeatured:        true,
			IsOnSale:          true,
		},
		{
			Name:              "Seiko 5 Sports Automatic",
			ModelNumber:       "SRPD55",
			Description:       "Classic automatic sports watch with day-date display. Reliable 4R36 movement with 41-hour power reserve.",
			Price:             195.00,
			StockQuantity:     20,
			CategoryID:        fiveSports,
			MovementType:      "Automatic",
			CaseMaterial:      "Stainless Steel",
			CaseDiameter:      "42.5mm",
			WaterResistance:   "100m",
			StrapMaterial:     "Nylon NATO",
			MainImageURL:      "https://source.unsplash.com/600x600/?seiko+5+sports+automatic+nato",
			DetailImageURL:    "https://source.unsplash.com/600x600/?automatic+watch+movement+4r36",
			LifestyleImageURL: "https://source.unsplash.com/600x600/?casual+sports+watch+lifestyle",
		},
		{
			Name:              "Seiko 5 Sports Street Style",
			ModelNumber:       "SRPD79",
			Description:       "Modern street-style automatic watch with bold design. Perfect for everyday wear with reliable automatic movement.",
			Price:             225.00,
			StockQuantity:     18,
			CategoryID:        fiveSports,
			MovementType:      "Automatic",
			CaseMaterial:      "Stainless Steel",
			CaseDiameter:      "42.5mm",
			WaterResistance:   "100m",
			StrapMaterial:     "Silicone",
			MainImageURL:      "https://source.unsplash.com/600x600/?seiko+5+sports+street+style",
			DetailImageURL:    "https://source.unsplash.com/600x600/?modern+watch+design+detail",
			LifestyleImageURL: "https://source.unsplash.com/600x600/?street+style+watch+casual",
		},
	}

	for _, p := range products {
		p.ID = uuid.NewString()
		p.IsActive = true
		p.CreatedAt = now
		p.UpdatedAt = now
		if err := r.CreateProduct(ctx, p); err != nil {
			return fmt.Errorf("seed product %s: %w", p.ModelNumber, err)
		}
	}

	users, err := r.CountUsers(ctx)
	if err != nil {
		return err
	}
	if users > 0 {
		return nil
	}

	adminHash, err := hash("admin123")
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	demoHash, err := hash("demo123")
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	bootstrap := []*model.User{
		{
			ID:             uuid.NewString(),
			Username:       "admin",
			Email:          "admin@chronoshop.example",
			FullName:       "Store Administrator",
			HashedPassword: adminHash,
			IsActive:       true,
			IsAdmin:        true,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		{
			ID:             uuid.NewString(),
			Username:       "demo",
			Email:          "demo@example.com",
			FullName:       "Demo User",
			HashedPassword: demoHash,
			IsActive:       true,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
	}

	for _, u := range bootstrap {
		if err := r.CreateUser(ctx, u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Username, err)
		}
	}

	return nil
}
