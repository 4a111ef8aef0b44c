package repositories

import (
	"database/sql"
	"fmt"

	"github.com/dovermoor/cinefetch/internal/models"
)

// MovieRepository manages the movies table inside standalone SQLite dataset files.
//
// Dataset files are self-contained exports, not part of the app database: they
// carry no migration history, so the repository owns its own schema. The adult
// column is nullable so datasets harvested without the adult flag round-trip
// without inventing a value.
type MovieRepository struct {
	db *sql.DB
}

// NewMovieRepository creates a new MovieRepository with the given database connection
func NewMovieRepository(db *sql.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// EnsureSchema creates the movies table if the dataset file does not have one yet
func (r *MovieRepository) EnsureSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS movies (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			year TEXT NOT NULL DEFAULT '',
			rating REAL NOT NULL DEFAULT 0,
			description TEXT NOT NULL DEFAULT '',
			genre TEXT NOT NULL DEFAULT '',
			adult INTEGER
		)
	`

	if _, err := r.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create movies table: %w", err)
	}

	return nil
}

// Truncate removes every movie row, preserving the schema.
// Exports use it to replace a dataset wholesale instead of appending.
func (r *MovieRepository) Truncate() error {
	if _, err := r.db.Exec("DELETE FROM movies"); err != nil {
		return fmt.Errorf("failed to truncate movies table: %w", err)
	}

	return nil
}

// CreateBatch inserts movies in a single transaction, preserving slice order
func (r *MovieRepository) CreateBatch(movies []models.Movie) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO movies (title, year, rating, description, genre, adult)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, movie := range movies {
		var adult any
		if movie.Adult != nil {
			adult = *movie.Adult
		}

		_, err := stmt.Exec(movie.Title, movie.Year, movie.Rating, movie.Description, movie.Genre, adult)
		if err != nil {
			return fmt.Errorf("failed to insert movie %q: %w", movie.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit movie batch: %w", err)
	}

	return nil
}

// ListAll retrieves every movie in insertion order
func (r *MovieRepository) ListAll() ([]models.Movie, error) {
	query := `
		SELECT title, year, rating, description, genre, adult
		FROM movies
		ORDER BY id
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer rows.Close()

	var movies []models.Movie
	for rows.Next() {
		var (
			movie models.Movie
			adult sql.NullBool
		)

		err := rows.Scan(&movie.Title, &movie.Year, &movie.Rating, &movie.Description, &movie.Genre, &adult)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}

		if adult.Valid {
			flag := adult.Bool
			movie.Adult = &flag
		}

		movies = append(movies, movie)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return movies, nil
}

// Count returns the number of movie rows in the dataset
func (r *MovieRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM movies").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}

	return count, nil
}
