package formatter

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/dovermoor/cinefetch/internal/models"
	"github.com/dovermoor/cinefetch/internal/shared"
	th "github.com/dovermoor/cinefetch/internal/testing"
)

// plainMovies returns a dataset harvested without the adult flag
func plainMovies() []models.Movie {
	return []models.Movie{
		{Title: "Heat", Year: "1995", Rating: 8.3, Description: "A thief plans one last score.", Genre: "Action, Crime"},
		{Title: "Interstellar", Year: "2014", Rating: 8.4, Description: "Explorers travel through a wormhole.", Genre: "Adventure, Drama, Science Fiction"},
	}
}

// flaggedMovies returns a dataset that carries the adult column
func flaggedMovies() []models.Movie {
	safe := false
	flagged := true
	return []models.Movie{
		{Title: "Movie One", Year: "2001", Rating: 6.5, Description: "First record.", Genre: "Drama", Adult: &safe},
		{Title: "Movie Two", Year: "2002", Rating: 7, Description: "Second record.", Genre: "Comedy", Adult: &flagged},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		t.Run("WithoutAdultColumn", func(t *testing.T) {
			data, err := ExportToCSV(plainMovies())
			if err != nil {
				t.Fatalf("ExportToCSV failed: %v", err)
			}

			output := string(data)

			if !strings.HasPrefix(output, "Title,Year,Rating,Description,Genre\n") {
				t.Errorf("CSV missing headers, got: %s", output)
			}
			if strings.Contains(output, "Adult") {
				t.Errorf("CSV should not carry an Adult column, got: %s", output)
			}

			if !strings.Contains(output, "Heat") {
				t.Errorf("CSV missing title")
			}
			if !strings.Contains(output, "1995") {
				t.Errorf("CSV missing year")
			}
			if !strings.Contains(output, "8.3") {
				t.Errorf("CSV missing rating")
			}
			if !strings.Contains(output, `"Action, Crime"`) {
				t.Errorf("CSV genre list should be quoted, got: %s", output)
			}
		})

		t.Run("WithAdultColumn", func(t *testing.T) {
			data, err := ExportToCSV(flaggedMovies())
			if err != nil {
				t.Fatalf("ExportToCSV failed: %v", err)
			}

			output := string(data)

			if !strings.HasPrefix(output, "Title,Year,Rating,Description,Genre,Adult\n") {
				t.Errorf("CSV missing Adult header, got: %s", output)
			}
			if !strings.Contains(output, "false") || !strings.Contains(output, "true") {
				t.Errorf("CSV missing adult flags, got: %s", output)
			}
		})

		t.Run("EmptyDataset", func(t *testing.T) {
			data, err := ExportToCSV(nil)
			if err != nil {
				t.Fatalf("ExportToCSV failed: %v", err)
			}

			if strings.TrimSpace(string(data)) != "Title,Year,Rating,Description,Genre" {
				t.Errorf("expected header-only CSV, got: %s", string(data))
			}
		})
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		t.Run("PrettyArray", func(t *testing.T) {
			data, err := ExportToJSON(plainMovies())
			if err != nil {
				t.Fatalf("ExportToJSON failed: %v", err)
			}

			output := string(data)

			if !strings.Contains(output, `"Title": "Heat"`) {
				t.Errorf("JSON missing title field, got: %s", output)
			}
			if !strings.Contains(output, `"Rating": 8.3`) {
				t.Errorf("JSON missing rating field")
			}
			if strings.Contains(output, `"Adult"`) {
				t.Errorf("JSON should omit Adult for plain datasets")
			}
		})

		t.Run("AdultFlagSerialized", func(t *testing.T) {
			data, err := ExportToJSON(flaggedMovies())
			if err != nil {
				t.Fatalf("ExportToJSON failed: %v", err)
			}

			output := string(data)

			if !strings.Contains(output, `"Adult": false`) || !strings.Contains(output, `"Adult": true`) {
				t.Errorf("JSON missing adult flags, got: %s", output)
			}
		})

		t.Run("EmptyDataset", func(t *testing.T) {
			data, err := ExportToJSON(nil)
			if err != nil {
				t.Fatalf("ExportToJSON failed: %v", err)
			}

			if strings.TrimSpace(string(data)) != "[]" {
				t.Errorf("expected empty array, got: %s", string(data))
			}
		})
	})

	t.Run("ExportToXLSX", func(t *testing.T) {
		data, err := ExportToXLSX(flaggedMovies())
		if err != nil {
			t.Fatalf("ExportToXLSX failed: %v", err)
		}

		movies, err := ReadXLSX(data)
		if err != nil {
			t.Fatalf("ReadXLSX failed: %v", err)
		}

		if len(movies) != 2 {
			t.Fatalf("expected 2 movies, got %d", len(movies))
		}

		if movies[0].Title != "Movie One" {
			t.Errorf("expected title 'Movie One', got %s", movies[0].Title)
		}
		if movies[0].Rating != 6.5 {
			t.Errorf("expected rating 6.5, got %v", movies[0].Rating)
		}
		if movies[0].Adult == nil || *movies[0].Adult {
			t.Error("expected first movie adult flag false")
		}
		if movies[1].Adult == nil || !*movies[1].Adult {
			t.Error("expected second movie adult flag true")
		}
	})
}

func TestReaders(t *testing.T) {
	t.Run("ReadCSV", func(t *testing.T) {
		t.Run("RoundTrip", func(t *testing.T) {
			data, err := ExportToCSV(plainMovies())
			if err != nil {
				t.Fatalf("ExportToCSV failed: %v", err)
			}

			movies, err := ReadCSV(data)
			if err != nil {
				t.Fatalf("ReadCSV failed: %v", err)
			}

			if len(movies) != 2 {
				t.Fatalf("expected 2 movies, got %d", len(movies))
			}

			if movies[1].Genre != "Adventure, Drama, Science Fiction" {
				t.Errorf("quoted genre list should survive, got %s", movies[1].Genre)
			}
			if movies[1].Rating != 8.4 {
				t.Errorf("expected rating 8.4, got %v", movies[1].Rating)
			}
			if movies[0].Adult != nil {
				t.Error("plain dataset should read back without adult flags")
			}
		})

		t.Run("AdultCells", func(t *testing.T) {
			csvData := "Title,Year,Rating,Description,Genre,Adult\n" +
				"Movie One,2001,6.5,First.,Drama,false\n" +
				"Movie Two,2002,7,Second.,Comedy,true\n" +
				"Movie Three,2003,7.5,Third.,Horror,\n"

			movies, err := ReadCSV([]byte(csvData))
			if err != nil {
				t.Fatalf("ReadCSV failed: %v", err)
			}

			if movies[0].Adult == nil || *movies[0].Adult {
				t.Error("expected false adult flag")
			}
			if movies[1].Adult == nil || !*movies[1].Adult {
				t.Error("expected true adult flag")
			}
			if movies[2].Adult != nil {
				t.Error("empty adult cell should stay nil")
			}
		})

		t.Run("MissingTitleColumn", func(t *testing.T) {
			_, err := ReadCSV([]byte("Name,Score\nHeat,8.3\n"))
			if err == nil {
				t.Fatal("expected error for CSV without a Title column")
			}
			if !errors.Is(err, shared.ErrInvalidFormat) {
				t.Errorf("expected ErrInvalidFormat, got %v", err)
			}
		})

		t.Run("BadRating", func(t *testing.T) {
			_, err := ReadCSV([]byte("Title,Rating\nHeat,amazing\n"))
			if err == nil {
				t.Fatal("expected error for unparseable rating")
			}
			if !errors.Is(err, shared.ErrInvalidFormat) {
				t.Errorf("expected ErrInvalidFormat, got %v", err)
			}
		})

		t.Run("EmptyInput", func(t *testing.T) {
			if _, err := ReadCSV(nil); !errors.Is(err, shared.ErrInvalidFormat) {
				t.Errorf("expected ErrInvalidFormat for empty input, got %v", err)
			}
		})
	})

	t.Run("ReadJSON", func(t *testing.T) {
		t.Run("RoundTrip", func(t *testing.T) {
			data, err := ExportToJSON(flaggedMovies())
			if err != nil {
				t.Fatalf("ExportToJSON failed: %v", err)
			}

			movies, err := ReadJSON(data)
			if err != nil {
				t.Fatalf("ReadJSON failed: %v", err)
			}

			if len(movies) != 2 {
				t.Fatalf("expected 2 movies, got %d", len(movies))
			}
			if movies[1].Adult == nil || !*movies[1].Adult {
				t.Error("adult flag should survive a JSON round trip")
			}
		})

		t.Run("InvalidPayload", func(t *testing.T) {
			_, err := ReadJSON([]byte(`{"Title": "not an array"}`))
			if err == nil {
				t.Fatal("expected error for non-array JSON")
			}
			if !errors.Is(err, shared.ErrInvalidFormat) {
				t.Errorf("expected ErrInvalidFormat, got %v", err)
			}
		})
	})
}

func TestFormatHelpers(t *testing.T) {
	t.Run("NormalizeFormat", func(t *testing.T) {
		cases := []struct {
			input string
			want  string
			fails bool
		}{
			{input: "csv", want: FormatCSV},
			{input: "CSV", want: FormatCSV},
			{input: " json ", want: FormatJSON},
			{input: "xlsx", want: FormatXLSX},
			{input: "sqlite", want: FormatSQLite},
			{input: "sqlite3", want: FormatSQLite},
			{input: "db", want: FormatSQLite},
			{input: "yaml", fails: true},
			{input: "", fails: true},
		}

		for _, tc := range cases {
			got, err := NormalizeFormat(tc.input)
			if tc.fails {
				if !errors.Is(err, shared.ErrInvalidFormat) {
					t.Errorf("NormalizeFormat(%q): expected ErrInvalidFormat, got %v", tc.input, err)
				}
				continue
			}
			if err != nil {
				t.Errorf("NormalizeFormat(%q) failed: %v", tc.input, err)
				continue
			}
			if got != tc.want {
				t.Errorf("NormalizeFormat(%q) = %q, want %q", tc.input, got, tc.want)
			}
		}
	})

	t.Run("FormatFromPath", func(t *testing.T) {
		cases := map[string]string{
			"movies.csv":     FormatCSV,
			"movies.JSON":    FormatJSON,
			"movies.xlsx":    FormatXLSX,
			"movies.db":      FormatSQLite,
			"movies.sqlite":  FormatSQLite,
			"movies.sqlite3": FormatSQLite,
			"movies.txt":     FormatCSV,
			"movies":         FormatCSV,
		}

		for path, want := range cases {
			if got := FormatFromPath(path); got != want {
				t.Errorf("FormatFromPath(%q) = %q, want %q", path, got, want)
			}
		}
	})

	t.Run("ExtensionFor", func(t *testing.T) {
		if got := ExtensionFor(FormatSQLite); got != "db" {
			t.Errorf("expected db extension for sqlite, got %q", got)
		}
		if got := ExtensionFor(FormatCSV); got != "csv" {
			t.Errorf("expected csv extension, got %q", got)
		}
	})

	t.Run("Formats", func(t *testing.T) {
		formats := Formats()
		if len(formats) != 4 {
			t.Fatalf("expected 4 formats, got %d", len(formats))
		}
		if formats[0] != FormatCSV {
			t.Errorf("expected csv first, got %s", formats[0])
		}
	})

	t.Run("DefaultFilename", func(t *testing.T) {
		name := DefaultFilename(FormatSQLite)
		if matched, _ := regexp.MatchString(`^movies_\d{8}_\d{6}\.db$`, name); !matched {
			t.Errorf("DefaultFilename() = %q, want movies_{timestamp}.db", name)
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("RoundTripEveryFormat", func(t *testing.T) {
		for _, format := range Formats() {
			t.Run(format, func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "movies."+ExtensionFor(format))

				if err := WriteDataset(path, format, flaggedMovies()); err != nil {
					t.Fatalf("WriteDataset failed: %v", err)
				}

				th.AssertFileExists(t, path)

				movies, err := ReadDataset(path, format)
				if err != nil {
					t.Fatalf("ReadDataset failed: %v", err)
				}

				if len(movies) != 2 {
					t.Fatalf("expected 2 movies, got %d", len(movies))
				}
				if movies[0].Title != "Movie One" {
					t.Errorf("expected title 'Movie One', got %s", movies[0].Title)
				}
				if movies[1].Adult == nil || !*movies[1].Adult {
					t.Error("adult flag should survive the round trip")
				}
			})
		}
	})

	t.Run("SQLiteReplacesExistingDataset", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "movies.db")

		if err := WriteDataset(path, FormatSQLite, flaggedMovies()); err != nil {
			t.Fatalf("first WriteDataset failed: %v", err)
		}
		if err := WriteDataset(path, FormatSQLite, plainMovies()[:1]); err != nil {
			t.Fatalf("second WriteDataset failed: %v", err)
		}

		movies, err := ReadDataset(path, FormatSQLite)
		if err != nil {
			t.Fatalf("ReadDataset failed: %v", err)
		}

		if len(movies) != 1 {
			t.Errorf("expected the dataset to be replaced, got %d movies", len(movies))
		}
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := ReadDataset(filepath.Join(t.TempDir(), "nope.csv"), FormatCSV)
		if err == nil {
			t.Fatal("expected error for missing dataset file")
		}
		if !errors.Is(err, shared.ErrDatasetMissing) {
			t.Errorf("expected ErrDatasetMissing, got %v", err)
		}
	})

	t.Run("UnsupportedFormat", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "movies.yaml")

		err := WriteDataset(path, "yaml", plainMovies())
		if !errors.Is(err, shared.ErrInvalidFormat) {
			t.Errorf("expected ErrInvalidFormat from WriteDataset, got %v", err)
		}
	})
}

func TestSummarize(t *testing.T) {
	t.Run("ComputesStats", func(t *testing.T) {
		flagged := true
		movies := []models.Movie{
			{Title: "Heat", Year: "1995", Rating: 8.3, Description: "A thief plans one last score.", Genre: "Action, Crime"},
			{Title: "Interstellar", Year: "2014", Rating: 8.4, Description: "Explorers travel through a wormhole.", Genre: "Adventure, Drama, Science Fiction"},
			{Title: "Mystery Reel", Year: "", Rating: 5.3, Description: "", Genre: "Drama", Adult: &flagged},
		}

		summary := Summarize(movies)

		if summary.Records != 3 {
			t.Errorf("expected 3 records, got %d", summary.Records)
		}
		if summary.YearMin != "1995" || summary.YearMax != "2014" {
			t.Errorf("expected year range 1995-2014, got %s-%s", summary.YearMin, summary.YearMax)
		}

		wantAvg := (8.3 + 8.4 + 5.3) / 3
		if summary.AvgRating < wantAvg-0.001 || summary.AvgRating > wantAvg+0.001 {
			t.Errorf("expected average rating %.2f, got %.2f", wantAvg, summary.AvgRating)
		}
		if summary.RatingMin != 5.3 || summary.RatingMax != 8.4 {
			t.Errorf("expected rating range 5.3-8.4, got %v-%v", summary.RatingMin, summary.RatingMax)
		}

		// Action, Crime, Adventure, Drama, Science Fiction
		if summary.UniqueGenres != 5 {
			t.Errorf("expected 5 unique genres, got %d", summary.UniqueGenres)
		}

		if !summary.HasAdult {
			t.Error("expected adult column to be detected")
		}
		if summary.AdultCount != 1 {
			t.Errorf("expected 1 adult record, got %d", summary.AdultCount)
		}

		counts := map[string]int{}
		for _, column := range summary.Columns {
			counts[column.Name] = column.Count
		}
		if counts["Title"] != 3 {
			t.Errorf("expected 3 titles, got %d", counts["Title"])
		}
		if counts["Year"] != 2 {
			t.Errorf("expected 2 populated years, got %d", counts["Year"])
		}
		if counts["Description"] != 2 {
			t.Errorf("expected 2 populated descriptions, got %d", counts["Description"])
		}
		if counts["Adult"] != 1 {
			t.Errorf("expected 1 populated adult cell, got %d", counts["Adult"])
		}
	})

	t.Run("EmptyDataset", func(t *testing.T) {
		summary := Summarize(nil)

		if summary.Records != 0 {
			t.Errorf("expected 0 records, got %d", summary.Records)
		}
		if summary.AvgRating != 0 {
			t.Errorf("expected zero average, got %v", summary.AvgRating)
		}
		if summary.HasAdult {
			t.Error("empty dataset should not detect an adult column")
		}
		if len(summary.Columns) != 5 {
			t.Errorf("expected the 5 base columns, got %d", len(summary.Columns))
		}
	})
}
