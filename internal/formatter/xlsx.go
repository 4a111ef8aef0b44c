package formatter

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/dovermoor/cinefetch/internal/models"
	"github.com/dovermoor/cinefetch/internal/shared"
)

// sheetName is the single worksheet every XLSX export carries.
const sheetName = "Movies"

// ExportToXLSX converts movies to an XLSX workbook with a Movies sheet
// holding the same columns as the CSV export
func ExportToXLSX(movies []models.Movie) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	withAdult := hasAdultColumn(movies)
	headers := make([]any, 0, len(movieColumns)+1)
	for _, column := range movieColumns {
		headers = append(headers, column)
	}
	if withAdult {
		headers = append(headers, "Adult")
	}
	if err := file.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	for i, movie := range movies {
		row := []any{movie.Title, movie.Year, movie.Rating, movie.Description, movie.Genre}
		if withAdult {
			if movie.Adult != nil {
				row = append(row, *movie.Adult)
			} else {
				row = append(row, nil)
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		if err := file.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	return buf.Bytes(), nil
}

// ReadXLSX parses an XLSX workbook produced by [ExportToXLSX].
// Falls back to the first sheet so foreign workbooks with the right
// columns still load.
func ReadXLSX(data []byte) ([]models.Movie, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidFormat, err)
	}
	defer file.Close()

	sheet := sheetName
	if idx, err := file.GetSheetIndex(sheetName); err != nil || idx < 0 {
		sheet = file.GetSheetName(0)
	}

	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	return moviesFromRows(rows)
}
