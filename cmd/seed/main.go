package main

import (
	"context"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tunequiz/internal/catalog"
)

// Fallback titles so a fresh checkout can run games without a dataset.
var defaultTitles = []string{
	"Dilwale Dulhania Le Jayenge",
	"Kabhi Khushi Kabhie Gham",
	"Kuch Kuch Hota Hai",
	"Om Shanti Om",
	"Zindagi Na Milegi Dobara",
	"Dil Chahta Hai",
	"Rockstar",
	"Aashiqui 2",
	"Yeh Jawaani Hai Deewani",
	"Kal Ho Naa Ho",
}

func main() {
	csvPath := flag.String("csv", "", "CSV file of movies: title[,year[,language]]")
	flag.Parse()

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	database := os.Getenv("MONGO_DB")
	if database == "" {
		database = "tunequiz"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	repo := catalog.NewMovieRepo(client, database)

	var movies []*catalog.Movie
	if *csvPath != "" {
		movies, err = readCSV(*csvPath)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", *csvPath, err)
		}
	} else {
		log.Println("No -csv given, seeding built-in titles")
		for _, title := range defaultTitles {
			movies = append(movies, &catalog.Movie{Title: title})
		}
	}

	if err := repo.InsertMany(ctx, movies); err != nil {
		log.Printf("Insert finished with errors (duplicates are skipped): %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		log.Fatalf("Failed to count movies: %v", err)
	}
	log.Printf("Catalog now holds %d movies", count)
}

func readCSV(path string) ([]*catalog.Movie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var movies []*catalog.Movie
	for _, rec := range records {
		if len(rec) == 0 || rec[0] == "" || rec[0] == "title" {
			continue
		}
		m := &catalog.Movie{Title: rec[0]}
		if len(rec) > 1 {
			if year, err := strconv.Atoi(rec[1]); err == nil {
				m.Year = year
			}
		}
		if len(rec) > 2 {
			m.Language = rec[2]
		}
		movies = append(movies, m)
	}
	return movies, nil
}
