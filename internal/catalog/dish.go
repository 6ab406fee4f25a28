package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

const CurrentDishSchemaVersion = 1

// Dish represents a catalog entry contributed by independent sources and
// served to diners through the menu view.
type Dish struct {
	ID            uuid.UUID         `json:"id" bson:"_id"`
	Name          map[string]string `json:"name" bson:"name"`
	Description   map[string]string `json:"description" bson:"description"`
	Explanation   map[string]string `json:"explanation,omitempty" bson:"explanation,omitempty"`
	Price         float64           `json:"price" bson:"price"`
	Allergens     []string          `json:"allergens" bson:"allergens"`
	DietaryTags   []string          `json:"dietary_tags" bson:"dietary_tags"`
	Section       map[string]string `json:"section" bson:"section"`
	Variants      []Variant         `json:"variants,omitempty" bson:"variants,omitempty"`
	SchemaVersion int               `json:"schema_version" bson:"schema_version"`
	CreatedAt     time.Time         `json:"created_at" bson:"created_at"`
	CreatedBy     string            `json:"created_by" bson:"created_by"`
	UpdatedAt     time.Time         `json:"updated_at" bson:"updated_at"`
	UpdatedBy     string            `json:"updated_by" bson:"updated_by"`
}

// Variant is a priced serving option that overrides the dish base price.
type Variant struct {
	ID    uuid.UUID         `json:"id" bson:"id"`
	Name  map[string]string `json:"name" bson:"name"`
	Price float64           `json:"price" bson:"price"`
}

// EnsureID generates a new UUID if ID is nil
func (d *Dish) EnsureID() {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	for i := range d.Variants {
		if d.Variants[i].ID == uuid.Nil {
			d.Variants[i].ID = uuid.New()
		}
	}
}

// GetID returns the dish ID
func (d *Dish) GetID() uuid.UUID {
	return d.ID
}

// ResourceType returns the resource type for URL generation
func (d *Dish) ResourceType() string {
	return "catalog/dish"
}

// BeforeCreate sets up the dish before creation
func (d *Dish) BeforeCreate() {
	d.EnsureID()
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	if d.SchemaVersion == 0 {
		d.SchemaVersion = CurrentDishSchemaVersion
	}
	if d.Name == nil {
		d.Name = make(map[string]string)
	}
	if d.Description == nil {
		d.Description = make(map[string]string)
	}
	if d.Section == nil {
		d.Section = make(map[string]string)
	}
}

// BeforeUpdate updates the timestamp
func (d *Dish) BeforeUpdate() {
	d.UpdatedAt = time.Now()
}

// Variant returns the variant with the given ID, or nil when absent.
func (d *Dish) VariantByID(id uuid.UUID) *Variant {
	for i := range d.Variants {
		if d.Variants[i].ID == id {
			return &d.Variants[i]
		}
	}
	return nil
}

// UnitPrice resolves the price for a variant selection. A nil variant ID
// resolves to the dish base price.
func (d *Dish) UnitPrice(variantID uuid.UUID) (float64, error) {
	if variantID == uuid.Nil {
		return d.Price, nil
	}
	v := d.VariantByID(variantID)
	if v == nil {
		return 0, fmt.Errorf("dish %s has no variant %s", d.ID, variantID)
	}
	return v.Price, nil
}

// MarshalBSON custom BSON marshaling for UUID handling
func (d *Dish) MarshalBSON() ([]byte, error) {
	variants := make([]bson.M, len(d.Variants))
	for i, v := range d.Variants {
		variants[i] = bson.M{
			"id":    v.ID.String(),
			"name":  v.Name,
			"price": v.Price,
		}
	}

	return bson.Marshal(bson.M{
		"_id":            d.ID.String(),
		"name":           d.Name,
		"description":    d.Description,
		"explanation":    d.Explanation,
		"price":          d.Price,
		"allergens":      d.Allergens,
		"dietary_tags":   d.DietaryTags,
		"section":        d.Section,
		"variants":       variants,
		"schema_version": d.SchemaVersion,
		"created_at":     d.CreatedAt,
		"created_by":     d.CreatedBy,
		"updated_at":     d.UpdatedAt,
		"updated_by":     d.UpdatedBy,
	})
}

// UnmarshalBSON custom BSON unmarshaling for UUID handling
func (d *Dish) UnmarshalBSON(data []byte) error {
	var doc bson.M
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}

	if idStr, ok := doc["_id"].(string); ok && idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			return fmt.Errorf("invalid UUID format for _id: %w", err)
		}
		d.ID = id
	}

	d.Name = stringMapFrom(doc["name"])
	d.Description = stringMapFrom(doc["description"])
	d.Explanation = stringMapFrom(doc["explanation"])
	d.Section = stringMapFrom(doc["section"])

	if v, ok := doc["price"].(float64); ok {
		d.Price = v
	}

	d.Allergens = stringSliceFrom(doc["allergens"])
	d.DietaryTags = stringSliceFrom(doc["dietary_tags"])

	if variantsArr, ok := doc["variants"].(bson.A); ok {
		d.Variants = make([]Variant, len(variantsArr))
		for i, raw := range variantsArr {
			variantMap, ok := raw.(bson.M)
			if !ok {
				continue
			}
			if idStr, ok := variantMap["id"].(string); ok {
				id, _ := uuid.Parse(idStr)
				d.Variants[i].ID = id
			}
			d.Variants[i].Name = stringMapFrom(variantMap["name"])
			if v, ok := variantMap["price"].(float64); ok {
				d.Variants[i].Price = v
			}
		}
	}

	if v, ok := doc["schema_version"].(int32); ok {
		d.SchemaVersion = int(v)
	} else if v, ok := doc["schema_version"].(int64); ok {
		d.SchemaVersion = int(v)
	}

	if v, ok := doc["created_at"].(time.Time); ok {
		d.CreatedAt = v
	}
	if v, ok := doc["created_by"].(string); ok {
		d.CreatedBy = v
	}
	if v, ok := doc["updated_at"].(time.Time); ok {
		d.UpdatedAt = v
	}
	if v, ok := doc["updated_by"].(string); ok {
		d.UpdatedBy = v
	}

	return nil
}

func stringMapFrom(raw interface{}) map[string]string {
	m, ok := raw.(bson.M)
	if !ok {
		return nil
	}
	out := make(map[string]string)
	for k, v := range m {
		if str, ok := v.(string); ok {
			out[k] = str
		}
	}
	return out
}

func stringSliceFrom(raw interface{}) []string {
	arr, ok := raw.(bson.A)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if str, ok := v.(string); ok {
			out = append(out, str)
		}
	}
	return out
}
