// Package tuner sizes scan concurrency to the machine. A configured worker
// count of zero asks for a detected value: one walker per logical core,
// bounded by the memory available for read buffers and directory batches.
package tuner

// SystemResources contains detected system resources.
type SystemResources struct {
	// CPUCores is the number of logical CPU cores available.
	CPUCores int

	// TotalRAM is the total physical RAM in bytes. Zero means unknown.
	TotalRAM int64
}

// Worker limits.
const (
	// MaxWorkers caps any worker count, detected or requested.
	MaxWorkers = 32

	// minWorkers keeps directory reads overlapping with hashing even on a
	// single core machine.
	minWorkers = 2

	// bytesPerWorker is the memory assumed per walker: a digest read buffer
	// plus the directory entries it holds in flight.
	bytesPerWorker = 64 << 20
)

// Workers returns the walker count suited to resources.
func Workers(resources SystemResources) int {
	n := max(resources.CPUCores, minWorkers)
	if resources.TotalRAM > 0 {
		byMemory := int(resources.TotalRAM / bytesPerWorker)
		n = min(n, max(byMemory, 1))
	}
	return min(n, MaxWorkers)
}

// Resolve returns requested when it is positive (capped at MaxWorkers) and
// a detected count otherwise. Detection failures fall back to the core
// count alone.
func Resolve(requested int) int {
	if requested > 0 {
		return min(requested, MaxWorkers)
	}
	resources, err := Detect()
	if err != nil {
		resources.TotalRAM = 0
	}
	return Workers(resources)
}
