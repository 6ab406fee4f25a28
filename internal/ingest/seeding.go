package ingest

import (
	"context"
	"errors"

	"github.com/appetiteclub/apt"

	"github.com/menulingua/menulingua/internal/catalog"
)

// DemoSeedingFunc returns a lifecycle hook that pushes a small demo catalog
// through the ingestor. Re-running is harmless: the matcher rejects the
// seeds as duplicates on subsequent starts.
func DemoSeedingFunc(seedCtx context.Context, ingestor *Ingestor, logger apt.Logger) func(context.Context) error {
	return func(context.Context) error {
		logger.Info("Seeding demo catalog")
		applied := 0
		for _, dish := range demoDishes() {
			if seedCtx.Err() != nil {
				return seedCtx.Err()
			}
			_, err := ingestor.Propose(seedCtx, dish, catalog.BaseLanguage)
			if err != nil {
				if errors.Is(err, ErrDuplicateDish) {
					continue
				}
				return err
			}
			applied++
		}
		logger.Info("Demo catalog seeded", "dishes", applied)
		return nil
	}
}

func demoDishes() []*catalog.Dish {
	return []*catalog.Dish{
		{
			Name:        map[string]string{"en": "Pad Thai", "th": "ผัดไทย", "es": "Pad Thai"},
			Description: map[string]string{"en": "Stir-fried rice noodles with tamarind, egg and peanuts"},
			Price:       11.50,
			Allergens:   []string{"peanuts", "egg", "soy"},
			DietaryTags: []string{},
			Section:     map[string]string{"en": "Noodles", "es": "Fideos"},
			Variants: []catalog.Variant{
				{Name: map[string]string{"en": "Chicken"}, Price: 12.50},
				{Name: map[string]string{"en": "Tofu"}, Price: 11.50},
			},
		},
		{
			Name:        map[string]string{"en": "Green Curry", "th": "แกงเขียวหวาน"},
			Description: map[string]string{"en": "Coconut green curry with bamboo shoots and thai basil"},
			Price:       13.00,
			Allergens:   []string{"shellfish"},
			DietaryTags: []string{},
			Section:     map[string]string{"en": "Curries"},
		},
		{
			Name:        map[string]string{"en": "Papaya Salad", "th": "ส้มตำ"},
			Description: map[string]string{"en": "Green papaya, lime, chili and peanuts"},
			Price:       8.00,
			Allergens:   []string{"peanuts", "fish"},
			DietaryTags: []string{},
			Section:     map[string]string{"en": "Salads"},
		},
		{
			Name:        map[string]string{"en": "Mango Sticky Rice", "th": "ข้าวเหนียวมะม่วง"},
			Description: map[string]string{"en": "Sweet sticky rice with ripe mango and coconut cream"},
			Price:       7.50,
			Allergens:   []string{},
			DietaryTags: []string{"vegetarian", "vegan", "gluten-free"},
			Section:     map[string]string{"en": "Desserts"},
		},
		{
			Name:        map[string]string{"en": "Vegetable Spring Rolls"},
			Description: map[string]string{"en": "Crispy rolls with glass noodles and vegetables"},
			Price:       6.00,
			Allergens:   []string{"gluten", "soy"},
			DietaryTags: []string{"vegetarian", "vegan"},
			Section:     map[string]string{"en": "Starters"},
		},
	}
}
