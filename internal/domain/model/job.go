package model

// Job is one unit of grid work: the period slab at index Slab of run RunID.
type Job struct {
	RunID string
	Slab  int
}
