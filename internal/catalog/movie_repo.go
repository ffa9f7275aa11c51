package catalog

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Movie is one entry in the quiz catalog. The title doubles as the search
// term for the track provider and as the canonical answer.
type Movie struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Title     string    `bson:"title" json:"title"`
	Year      int       `bson:"year,omitempty" json:"year,omitempty"`
	Language  string    `bson:"language,omitempty" json:"language,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// MovieRepo handles MongoDB operations for the movie catalog.
type MovieRepo interface {
	Insert(ctx context.Context, movie *Movie) error
	InsertMany(ctx context.Context, movies []*Movie) error
	RandomTitle(ctx context.Context) (string, error)
	Search(ctx context.Context, query string, limit int) ([]string, error)
	Count(ctx context.Context) (int64, error)
}

type movieRepo struct {
	collection *mongo.Collection
}

func NewMovieRepo(client *mongo.Client, database string) MovieRepo {
	db := client.Database(database)
	return &movieRepo{
		collection: db.Collection("movies"),
	}
}

func (r *movieRepo) Insert(ctx context.Context, movie *Movie) error {
	if movie.ID == "" {
		movie.ID = primitive.NewObjectID().Hex()
	}
	if movie.CreatedAt.IsZero() {
		movie.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, movie)
	return err
}

func (r *movieRepo) InsertMany(ctx context.Context, movies []*Movie) error {
	if len(movies) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(movies))
	now := time.Now()
	for _, m := range movies {
		if m.ID == "" {
			m.ID = primitive.NewObjectID().Hex()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		docs = append(docs, m)
	}
	// Unordered so one duplicate does not abort the batch.
	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	return err
}

// RandomTitle draws one title uniformly from the catalog.
func (r *movieRepo) RandomTitle(ctx context.Context) (string, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sample", Value: bson.M{"size": 1}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return "", err
	}
	defer cursor.Close(ctx)

	var movies []*Movie
	if err = cursor.All(ctx, &movies); err != nil {
		return "", err
	}
	if len(movies) == 0 {
		return "", mongo.ErrNoDocuments
	}
	return movies[0].Title, nil
}

// Search returns up to limit titles containing the query, case-insensitive.
func (r *movieRepo) Search(ctx context.Context, query string, limit int) ([]string, error) {
	filter := bson.M{"title": bson.M{
		"$regex":   regexp.QuoteMeta(query),
		"$options": "i",
	}}
	opts := options.Find().SetLimit(int64(limit)).SetProjection(bson.M{"title": 1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var movies []*Movie
	if err = cursor.All(ctx, &movies); err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(movies))
	for _, m := range movies {
		titles = append(titles, m.Title)
	}
	return titles, nil
}

func (r *movieRepo) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
