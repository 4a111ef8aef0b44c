package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ResolveGenres Phase = iota
	FetchPages
	Accumulate
	Finalize
)

func (p Phase) String() string {
	switch p {
	case ResolveGenres:
		return "resolve_genres"
	case FetchPages:
		return "fetch_pages"
	case Accumulate:
		return "accumulate"
	case Finalize:
		return "finalize"
	default:
		return ""
	}
}

// BatchDelta carries per-batch accumulation counts for consumers that need
// more than the display message.
type BatchDelta struct {
	Batch   int // Batch just finished, 1-based
	Batches int // Planned batch count
	Found   int // Records accumulated so far
	Target  int // Harvest target
}

func resolvingGenresUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveGenres,
		Step:    1,
		Total:   1,
		Message: "Resolving genre catalog...",
	}
}

func genresResolvedUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveGenres,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Resolved %d genres", count),
		Data:    count,
	}
}

func batchStartUpdate(batch, batches, first, last int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPages,
		Step:    batch,
		Total:   batches,
		Message: fmt.Sprintf("[%d/%d] Fetching pages %d-%d...", batch, batches, first, last),
	}
}

func batchCompleteUpdate(batch, batches, found, target int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPages,
		Step:    batch,
		Total:   batches,
		Message: fmt.Sprintf("[%d/%d] Batch complete: %d/%d movies", batch, batches, found, target),
		Data:    BatchDelta{Batch: batch, Batches: batches, Found: found, Target: target},
	}
}

func recordProgressUpdate(found, target int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Accumulate,
		Step:    found,
		Total:   target,
		Message: fmt.Sprintf("[%d/%d] %s", found, target, title),
	}
}

func cancellingUpdate(found, target int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Finalize,
		Step:    found,
		Total:   target,
		Message: "Cancellation requested, no further batches will run",
	}
}

func harvestCompleteUpdate(found, skipped int, status string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Finalize,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Harvest %s: %d movies collected, %d skipped", status, found, skipped),
	}
}

func harvestFailedUpdate(reason string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Finalize,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Harvest failed: %s", reason),
	}
}
