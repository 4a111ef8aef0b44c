package repositories

import (
	"errors"
	"testing"

	"github.com/dovermoor/cinefetch/internal/models"
	"github.com/dovermoor/cinefetch/internal/shared"
)

func TestHarvestRepositoryErrors(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewHarvestRepository(db)
			run := models.NewHarvestRun(0, 0, "csv")

			if err := repo.Create(run); err == nil {
				t.Fatal("expected validation error for zero target")
			}
		})

		t.Run("InvalidStatus", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewHarvestRepository(db)
			run := models.NewHarvestRun(0, 100, "csv")
			run.SetStatus("paused")

			if err := repo.Create(run); err == nil {
				t.Fatal("expected validation error for unknown status")
			}
		})

		t.Run("MissingFormat", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewHarvestRepository(db)
			run := models.NewHarvestRun(0, 100, "")

			if err := repo.Create(run); err == nil {
				t.Fatal("expected validation error for empty format")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewHarvestRepository(db)

			_, err := repo.Get("nonexistent-id")
			if err == nil {
				t.Fatal("expected error when getting nonexistent run")
			}

			if !errors.Is(err, shared.ErrRunNotFound) {
				t.Errorf("expected ErrRunNotFound, got %v", err)
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewHarvestRepository(db)
			run := models.NewHarvestRun(0, 100, "csv")
			run.SetID("nonexistent-id")

			err := repo.Update(run)
			if err == nil {
				t.Fatal("expected error when updating nonexistent run")
			}

			if !errors.Is(err, shared.ErrRunNotFound) {
				t.Errorf("expected ErrRunNotFound, got %v", err)
			}
		})

		t.Run("Deleted", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewHarvestRepository(db)
			run := models.NewHarvestRun(0, 100, "csv")

			if err := repo.Create(run); err != nil {
				t.Fatalf("failed to create harvest run: %v", err)
			}

			if err := repo.Delete(run.ID()); err != nil {
				t.Fatalf("failed to delete harvest run: %v", err)
			}

			err := repo.Update(run)
			if err == nil {
				t.Fatal("expected error when updating deleted run")
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewHarvestRepository(db)

			err := repo.Delete("nonexistent-id")
			if err == nil {
				t.Fatal("expected error when deleting nonexistent run")
			}
		})

		t.Run("AlreadyDeleted", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewHarvestRepository(db)
			run := models.NewHarvestRun(0, 100, "csv")

			if err := repo.Create(run); err != nil {
				t.Fatalf("failed to create harvest run: %v", err)
			}

			if err := repo.Delete(run.ID()); err != nil {
				t.Fatalf("failed to delete harvest run: %v", err)
			}

			err := repo.Delete(run.ID())
			if err == nil {
				t.Fatal("expected error when deleting already deleted run")
			}
		})
	})

	t.Run("List", func(t *testing.T) {
		t.Run("ExcludesDeleted", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewHarvestRepository(db)

			run1 := models.NewHarvestRun(0, 100, "csv")
			run2 := models.NewHarvestRun(0, 200, "json")

			if err := repo.Create(run1); err != nil {
				t.Fatalf("failed to create run1: %v", err)
			}
			if err := repo.Create(run2); err != nil {
				t.Fatalf("failed to create run2: %v", err)
			}

			if err := repo.Delete(run1.ID()); err != nil {
				t.Fatalf("failed to delete run1: %v", err)
			}

			runs, err := repo.List(map[string]any{})
			if err != nil {
				t.Fatalf("failed to list runs: %v", err)
			}

			if len(runs) != 1 {
				t.Errorf("expected 1 run (excluding deleted), got %d", len(runs))
			}

			if len(runs) > 0 && runs[0].Target() != 200 {
				t.Errorf("expected surviving run target 200, got %d", runs[0].Target())
			}
		})

		t.Run("FilterByStatus", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewHarvestRepository(db)

			run1 := models.NewHarvestRun(0, 100, "csv")
			if err := repo.Create(run1); err != nil {
				t.Fatalf("failed to create run1: %v", err)
			}

			run2 := models.NewHarvestRun(0, 200, "csv")
			run2.SetStatus("completed")
			if err := repo.Create(run2); err != nil {
				t.Fatalf("failed to create run2: %v", err)
			}

			run3 := models.NewHarvestRun(0, 300, "csv")
			run3.SetStatus("completed")
			if err := repo.Create(run3); err != nil {
				t.Fatalf("failed to create run3: %v", err)
			}

			completed, err := repo.List(map[string]any{"status": "completed"})
			if err != nil {
				t.Fatalf("failed to list completed runs: %v", err)
			}

			if len(completed) != 2 {
				t.Errorf("expected 2 completed runs, got %d", len(completed))
			}

			running, err := repo.List(map[string]any{"status": "running"})
			if err != nil {
				t.Fatalf("failed to list running runs: %v", err)
			}

			if len(running) != 1 {
				t.Errorf("expected 1 running run, got %d", len(running))
			}
		})
	})
}

func TestMovieRepositoryErrors(t *testing.T) {
	t.Run("MissingSchema", func(t *testing.T) {
		db, err := shared.NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		repo := NewMovieRepository(db)

		if _, err := repo.ListAll(); err == nil {
			t.Error("expected error listing movies without a schema")
		}

		if err := repo.CreateBatch([]models.Movie{{Title: "Heat"}}); err == nil {
			t.Error("expected error inserting movies without a schema")
		}
	})
}
