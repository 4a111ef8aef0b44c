// package models defines the data model for the movie harvest service
package models

import (
	"time"
)

// Model defines the base interface for all persistent models in the harvest service.
// Implementations include HarvestRun.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Movie is the normalized record produced by a harvest and consumed by every
// downstream surface (exports, dataset readers, dashboard downloads).
//
// Adult is a pointer so the field can be omitted entirely from serialized
// output when a harvest ran without the adult-content flag; a non-nil value is
// emitted even when false.
type Movie struct {
	Title       string  `json:"Title"`
	Year        string  `json:"Year"`
	Rating      float64 `json:"Rating"`
	Description string  `json:"Description"`
	Genre       string  `json:"Genre"`
	Adult       *bool   `json:"Adult,omitempty"`
}

// HasAdult reports whether the record carries the adult-content column.
func (m Movie) HasAdult() bool {
	return m.Adult != nil
}
