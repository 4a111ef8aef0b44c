// package formatter provides functions to export movie datasets to various formats (CSV, JSON, XLSX, SQLite)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dovermoor/cinefetch/internal/models"
	"github.com/dovermoor/cinefetch/internal/repositories"
	"github.com/dovermoor/cinefetch/internal/shared"
)

// Supported dataset formats.
const (
	FormatCSV    = "csv"
	FormatJSON   = "json"
	FormatXLSX   = "xlsx"
	FormatSQLite = "sqlite"
)

// movieColumns is the canonical column order shared by every format.
// The Adult column is appended only when the dataset carries the flag.
var movieColumns = []string{"Title", "Year", "Rating", "Description", "Genre"}

// Formats lists the supported dataset formats in display order
func Formats() []string {
	return []string{FormatCSV, FormatJSON, FormatXLSX, FormatSQLite}
}

// NormalizeFormat lowercases and validates a format name, accepting the
// common aliases for SQLite database files
func NormalizeFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatSQLite, "db", "sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", shared.ErrInvalidFormat, format)
	}
}

// FormatFromPath infers a dataset format from the file extension, defaulting to CSV
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".xlsx":
		return FormatXLSX
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return FormatCSV
	}
}

// ExtensionFor returns the file extension conventionally used for a format
func ExtensionFor(format string) string {
	if format == FormatSQLite {
		return "db"
	}
	return format
}

// DefaultFilename builds a timestamped export name for runs that did not
// specify one.
func DefaultFilename(format string) string {
	return fmt.Sprintf("movies_%s.%s", time.Now().Format("20060102_150405"), ExtensionFor(format))
}

// hasAdultColumn reports whether any record carries the adult-content flag
func hasAdultColumn(movies []models.Movie) bool {
	for _, movie := range movies {
		if movie.Adult != nil {
			return true
		}
	}
	return false
}

// ExportToCSV converts movies to CSV format with columns: Title, Year, Rating, Description, Genre
// and an Adult column when the dataset carries the flag
func ExportToCSV(movies []models.Movie) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	withAdult := hasAdultColumn(movies)
	headers := append([]string{}, movieColumns...)
	if withAdult {
		headers = append(headers, "Adult")
	}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, movie := range movies {
		record := []string{
			movie.Title,
			movie.Year,
			strconv.FormatFloat(movie.Rating, 'f', -1, 64),
			movie.Description,
			movie.Genre,
		}
		if withAdult {
			cell := ""
			if movie.Adult != nil {
				cell = strconv.FormatBool(*movie.Adult)
			}
			record = append(record, cell)
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts movies to a pretty-printed JSON array.
// Records without the adult flag omit the Adult key entirely.
func ExportToJSON(movies []models.Movie) ([]byte, error) {
	if movies == nil {
		movies = []models.Movie{}
	}
	return shared.MarshalJSON(movies, true)
}

// ReadCSV parses CSV data produced by [ExportToCSV], locating columns by header name
func ReadCSV(data []byte) ([]models.Movie, error) {
	reader := csv.NewReader(bytes.NewReader(data))

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidFormat, err)
	}

	return moviesFromRows(rows)
}

// ReadJSON parses a JSON array of movie records
func ReadJSON(data []byte) ([]models.Movie, error) {
	var movies []models.Movie
	if err := json.Unmarshal(data, &movies); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidFormat, err)
	}
	return movies, nil
}

// moviesFromRows builds movie records from a header row plus data rows.
// Rows shorter than the header are padded with empty cells, which tabular
// sources produce for trailing blanks.
func moviesFromRows(rows [][]string) ([]models.Movie, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: missing header row", shared.ErrInvalidFormat)
	}

	columns := map[string]int{}
	for i, name := range rows[0] {
		columns[strings.TrimSpace(name)] = i
	}
	if _, ok := columns["Title"]; !ok {
		return nil, fmt.Errorf("%w: missing Title column", shared.ErrInvalidFormat)
	}

	cell := func(row []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	var movies []models.Movie
	for _, row := range rows[1:] {
		movie := models.Movie{
			Title:       cell(row, "Title"),
			Year:        cell(row, "Year"),
			Description: cell(row, "Description"),
			Genre:       cell(row, "Genre"),
		}

		if raw := cell(row, "Rating"); raw != "" {
			rating, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad Rating value %q", shared.ErrInvalidFormat, raw)
			}
			movie.Rating = rating
		}

		if raw := cell(row, "Adult"); raw != "" {
			adult, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: bad Adult value %q", shared.ErrInvalidFormat, raw)
			}
			movie.Adult = &adult
		}

		movies = append(movies, movie)
	}

	return movies, nil
}

// WriteDataset writes movies to path in the given format
func WriteDataset(path string, format string, movies []models.Movie) error {
	normalized, err := NormalizeFormat(format)
	if err != nil {
		return err
	}

	if normalized == FormatSQLite {
		return writeSQLite(path, movies)
	}

	var data []byte
	switch normalized {
	case FormatCSV:
		data, err = ExportToCSV(movies)
	case FormatJSON:
		data, err = ExportToJSON(movies)
	case FormatXLSX:
		data, err = ExportToXLSX(movies)
	}
	if err != nil {
		return fmt.Errorf("failed to generate %s: %w", normalized, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s file: %w", normalized, err)
	}

	return nil
}

// ReadDataset reads movies from path in the given format
func ReadDataset(path string, format string) ([]models.Movie, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrDatasetMissing, path)
	}

	normalized, err := NormalizeFormat(format)
	if err != nil {
		return nil, err
	}

	if normalized == FormatSQLite {
		return readSQLite(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s file: %w", normalized, err)
	}

	switch normalized {
	case FormatCSV:
		return ReadCSV(data)
	case FormatJSON:
		return ReadJSON(data)
	default:
		return ReadXLSX(data)
	}
}

// writeSQLite replaces the movies table of the dataset file at path.
// Matches the replace-wholesale behavior of the other formats: converting
// onto an existing dataset never appends.
func writeSQLite(path string, movies []models.Movie) error {
	db, err := shared.NewDatabase(path)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewMovieRepository(db)
	if err := repo.EnsureSchema(); err != nil {
		return err
	}
	if err := repo.Truncate(); err != nil {
		return err
	}

	return repo.CreateBatch(movies)
}

// readSQLite loads every movie from the dataset file at path
func readSQLite(path string) ([]models.Movie, error) {
	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return repositories.NewMovieRepository(db).ListAll()
}

// ColumnCount pairs a column name with its populated-cell count.
type ColumnCount struct {
	Name  string
	Count int
}

// DatasetSummary holds the statistics displayed by the info command.
type DatasetSummary struct {
	Records      int
	YearMin      string
	YearMax      string
	AvgRating    float64
	RatingMin    float64
	RatingMax    float64
	UniqueGenres int
	Columns      []ColumnCount
	HasAdult     bool
	AdultCount   int
}

// Summarize computes dataset statistics: record count, year range, rating
// spread, distinct genre count, and per-column populated-cell counts
func Summarize(movies []models.Movie) DatasetSummary {
	summary := DatasetSummary{Records: len(movies)}

	var titleCount, yearCount, descriptionCount, genreCount, adultCells int
	genres := map[string]bool{}

	for i, movie := range movies {
		if movie.Title != "" {
			titleCount++
		}

		if movie.Year != "" {
			yearCount++
			if summary.YearMin == "" || movie.Year < summary.YearMin {
				summary.YearMin = movie.Year
			}
			if movie.Year > summary.YearMax {
				summary.YearMax = movie.Year
			}
		}

		summary.AvgRating += movie.Rating
		if i == 0 || movie.Rating < summary.RatingMin {
			summary.RatingMin = movie.Rating
		}
		if movie.Rating > summary.RatingMax {
			summary.RatingMax = movie.Rating
		}

		if movie.Description != "" {
			descriptionCount++
		}

		if movie.Genre != "" {
			genreCount++
			for _, genre := range strings.Split(movie.Genre, ",") {
				if name := strings.TrimSpace(genre); name != "" {
					genres[name] = true
				}
			}
		}

		if movie.Adult != nil {
			summary.HasAdult = true
			adultCells++
			if *movie.Adult {
				summary.AdultCount++
			}
		}
	}

	if len(movies) > 0 {
		summary.AvgRating /= float64(len(movies))
	}
	summary.UniqueGenres = len(genres)

	summary.Columns = []ColumnCount{
		{Name: "Title", Count: titleCount},
		{Name: "Year", Count: yearCount},
		{Name: "Rating", Count: len(movies)},
		{Name: "Description", Count: descriptionCount},
		{Name: "Genre", Count: genreCount},
	}
	if summary.HasAdult {
		summary.Columns = append(summary.Columns, ColumnCount{Name: "Adult", Count: adultCells})
	}

	return summary
}
