package catalog

import (
	"fmt"
	"strings"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateDish validates a dish before it is proposed to the catalog.
func ValidateDish(d *Dish) []ValidationError {
	var errors []ValidationError

	if d == nil {
		return []ValidationError{{Field: "dish", Message: "dish is required"}}
	}

	if len(d.Name) == 0 {
		errors = append(errors, ValidationError{
			Field:   "name",
			Message: "at least one name translation is required",
		})
	} else {
		if strings.TrimSpace(d.Name[string(BaseLanguage)]) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("name.%s", BaseLanguage),
				Message: "base language name is required",
			})
		}
		for lang, name := range d.Name {
			if strings.TrimSpace(name) == "" {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("name.%s", lang),
					Message: "name cannot be empty",
				})
			}
		}
	}

	if d.Price < 0 {
		errors = append(errors, ValidationError{
			Field:   "price",
			Message: "price cannot be negative",
		})
	}

	for i, variant := range d.Variants {
		if len(variant.Name) == 0 {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("variants[%d].name", i),
				Message: "variant name is required",
			})
		}
		if variant.Price < 0 {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("variants[%d].price", i),
				Message: "price cannot be negative",
			})
		}
	}

	for i, allergen := range d.Allergens {
		if strings.TrimSpace(allergen) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("allergens[%d]", i),
				Message: "allergen label cannot be empty",
			})
		}
	}

	for i, tag := range d.DietaryTags {
		if strings.TrimSpace(tag) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("dietary_tags[%d]", i),
				Message: "dietary tag cannot be empty",
			})
		}
	}

	return errors
}
