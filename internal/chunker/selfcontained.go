package chunker

import "github.com/mvp-joe/project-cortex/internal/model"

// SelfContainmentRate returns the fraction of chunks satisfying the
// self-containment invariant of spec §4.E. The repository-level rate must
// meet >=95% across a representative sample (spec §8).
func SelfContainmentRate(chunks []model.Chunk) float64 {
	if len(chunks) == 0 {
		return 1
	}
	ok := 0
	for _, c := range chunks {
		if c.SelfContained() {
			ok++
		}
	}
	return float64(ok) / float64(len(chunks))
}
