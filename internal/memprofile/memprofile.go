// Package memprofile implements the MemoryProfiler: estimating a safe
// per-chunk document count from a sample of documents and the machine's
// available memory, so the builder never tries to hold more in RAM than
// it can afford.
package memprofile

import (
	"fmt"

	"github.com/pbnjay/memory"

	"mircv/internal/mircverr"
)

// GuardrailFraction is the portion of system memory the profiler is
// willing to let one in-memory chunk occupy: of total memory in Estimate,
// of currently available memory in Reestimate.
const GuardrailFraction = 0.8

// DefaultMaxChunkSize is the hard ceiling on the estimated chunk size,
// independent of how much memory is actually available.
const DefaultMaxChunkSize = 1_000_000

// DefaultSampleSize is the number of documents sampled to estimate average
// bytes per document.
const DefaultSampleSize = 10_000

// Profiler estimates a safe chunk size from a document byte-size sample.
type Profiler struct {
	maxChunkSize    int
	totalMemory     func() uint64
	availableMemory func() uint64

	bytesPerDoc float64 // set by Estimate, consumed by Reestimate
}

// New returns a Profiler with the given hard cap on estimated chunk size.
// A non-positive cap falls back to DefaultMaxChunkSize.
func New(maxChunkSize int) *Profiler {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}
	return &Profiler{
		maxChunkSize:    maxChunkSize,
		totalMemory:     memory.TotalMemory,
		availableMemory: memory.FreeMemory,
	}
}

// SampleSize returns min(DefaultSampleSize, totalDocs): the number of
// documents the builder should sample before calling Estimate.
func SampleSize(totalDocs int) int {
	if totalDocs < DefaultSampleSize {
		return totalDocs
	}
	return DefaultSampleSize
}

// Estimate computes a safe chunk size from the total bytes consumed by a
// sample of sampleDocs documents. It applies the 80% guardrail against
// total system memory, then caps the result at maxChunkSize. Returns
// mircverr.ErrOutOfMemory if no positive chunk size fits.
func (p *Profiler) Estimate(sampleBytes int64, sampleDocs int) (int, error) {
	if sampleDocs <= 0 {
		return 0, fmt.Errorf("%w: empty sample", mircverr.ErrInvalidArgument)
	}
	bytesPerDoc := float64(sampleBytes) / float64(sampleDocs)
	if bytesPerDoc <= 0 {
		return 0, fmt.Errorf("%w: non-positive bytes per document", mircverr.ErrInvalidArgument)
	}

	budget := GuardrailFraction * float64(p.totalMemory())
	estimated := int(budget / bytesPerDoc)

	if estimated <= 0 {
		return 0, mircverr.ErrOutOfMemory
	}
	if estimated > p.maxChunkSize {
		estimated = p.maxChunkSize
	}
	p.bytesPerDoc = bytesPerDoc
	return estimated, nil
}

// Reestimate re-applies the 80% guardrail against current available
// system memory rather than the total captured at Estimate time, using
// the bytes-per-document average Estimate measured. The streaming build
// loop calls this once per iteration so a drop in available memory
// partway through a long pass is caught before the next pull; the
// returned size never exceeds currentChunkSize, only ever shrinks it.
func (p *Profiler) Reestimate(currentChunkSize int) (int, error) {
	if p.bytesPerDoc <= 0 {
		return 0, fmt.Errorf("%w: Reestimate called before Estimate", mircverr.ErrInvalidArgument)
	}

	budget := GuardrailFraction * float64(p.availableMemory())
	safe := int(budget / p.bytesPerDoc)
	if safe <= 0 {
		return 0, mircverr.ErrOutOfMemory
	}
	if safe > p.maxChunkSize {
		safe = p.maxChunkSize
	}
	if safe < currentChunkSize {
		return safe, nil
	}
	return currentChunkSize, nil
}
