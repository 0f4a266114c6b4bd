package dispatch

import "fmt"

// DefaultMaxChunks caps the number of parallel chunks per cycle.
const DefaultMaxChunks = 256

// Plan describes one cycle's partitioning of the pending set.
type Plan struct {
	PendingCount  int
	EligibleCount int
	ChunkCount    int
	// DeferredCount is how much of the pending set exceeds this cycle's
	// budget; it stays pending and is picked up by a later snapshot.
	DeferredCount int
}

// ChunkIndices returns the chunk index list handed to the orchestrator.
func (p Plan) ChunkIndices() []int {
	out := make([]int, p.ChunkCount)
	for i := range out {
		out[i] = i
	}
	return out
}

// BuildPlan computes chunk counts for a pending set of the given size.
// maxPerJob == 0 means no per-chunk budget. A zero pending count yields a
// zero-chunk plan: dispatching nothing is a no-op, not an error.
func BuildPlan(pendingCount, maxChunks, maxPerJob int) (Plan, error) {
	if maxChunks <= 0 {
		return Plan{}, fmt.Errorf("max chunks must be positive, got %d", maxChunks)
	}
	if maxPerJob < 0 {
		return Plan{}, fmt.Errorf("max per job must not be negative, got %d", maxPerJob)
	}
	plan := Plan{PendingCount: pendingCount}
	if pendingCount == 0 {
		return plan, nil
	}
	if maxPerJob == 0 {
		plan.EligibleCount = pendingCount
		plan.ChunkCount = min(maxChunks, pendingCount)
		return plan, nil
	}
	plan.EligibleCount = min(maxChunks*maxPerJob, pendingCount)
	plan.ChunkCount = min(maxChunks, ceilDiv(plan.EligibleCount, maxPerJob))
	plan.DeferredCount = pendingCount - plan.EligibleCount
	return plan, nil
}

// Slice returns chunkIndex's share of the pending sequence: every
// chunkCount-th id starting at chunkIndex, optionally capped at maxPerJob.
// The chunkCount slices partition the eligible prefix exactly, which is
// what lets workers run concurrently without any locking.
func Slice(pending []string, chunkIndex, chunkCount, maxPerJob int) ([]string, error) {
	if chunkCount <= 0 {
		return nil, fmt.Errorf("chunk count must be positive, got %d", chunkCount)
	}
	if chunkIndex < 0 || chunkIndex >= chunkCount {
		return nil, fmt.Errorf("chunk index %d out of range [0, %d)", chunkIndex, chunkCount)
	}
	var out []string
	for i := chunkIndex; i < len(pending); i += chunkCount {
		out = append(out, pending[i])
	}
	if maxPerJob > 0 && len(out) > maxPerJob {
		out = out[:maxPerJob]
	}
	return out, nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
