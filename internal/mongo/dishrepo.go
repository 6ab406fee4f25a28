package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/menulingua/menulingua/internal/catalog"
)

// DishRepo implements the catalog.Store interface using MongoDB
type DishRepo struct {
	collection *mongo.Collection
}

// NewDishRepo creates a new MongoDB dish repository. Indexes are bootstrapped
// by BaseRepo.Start before any repo is constructed.
func NewDishRepo(db *mongo.Database) *DishRepo {
	return &DishRepo{
		collection: db.Collection(dishesCollection),
	}
}

// InsertDish inserts a new catalog dish. The duplicate decision was already
// made by the matcher; this is a plain append.
func (r *DishRepo) InsertDish(ctx context.Context, dish *catalog.Dish) error {
	if dish == nil {
		return fmt.Errorf("dish cannot be nil")
	}

	dish.EnsureID()

	_, err := r.collection.InsertOne(ctx, dish)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("dish %s already exists", dish.ID)
		}
		return fmt.Errorf("cannot insert dish: %w", err)
	}
	return nil
}

// ListNames returns every dish name recorded for the given language.
func (r *DishRepo) ListNames(ctx context.Context, lang catalog.Language) ([]string, error) {
	field := fmt.Sprintf("name.%s", lang)

	filter := bson.M{field: bson.M{"$exists": true, "$ne": ""}}
	opts := options.Find().SetProjection(bson.M{"name": 1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list dish names: %w", err)
	}
	defer cursor.Close(ctx)

	var names []string
	for cursor.Next(ctx) {
		var doc struct {
			Name map[string]string `bson:"name"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("cannot decode dish name document: %w", err)
		}
		if name := doc.Name[string(lang)]; name != "" {
			names = append(names, name)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error listing dish names: %w", err)
	}

	return names, nil
}

// ListDishes returns all catalog dishes.
func (r *DishRepo) ListDishes(ctx context.Context) ([]*catalog.Dish, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("cannot list dishes: %w", err)
	}
	defer cursor.Close(ctx)

	var dishes []*catalog.Dish
	for cursor.Next(ctx) {
		var dish catalog.Dish
		if err := cursor.Decode(&dish); err != nil {
			return nil, fmt.Errorf("cannot decode dish: %w", err)
		}
		dishes = append(dishes, &dish)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error listing dishes: %w", err)
	}

	return dishes, nil
}

// Get returns the dish with the given ID, or nil when absent.
func (r *DishRepo) Get(ctx context.Context, id uuid.UUID) (*catalog.Dish, error) {
	var dish catalog.Dish
	err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&dish)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get dish %s: %w", id, err)
	}
	return &dish, nil
}
