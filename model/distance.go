// Package model holds the value objects and builders exchanged between
// callers, the planner and the executor: collection configuration,
// insert/search/delete requests, and the query plan itself.
package model

// DistanceFunction selects the metric the ANN index orders results by.
type DistanceFunction int

const (
	L2 DistanceFunction = iota
	Cosine
	InnerProduct
)

// AsSQLToken returns the literal vectorlite expects after the vector
// column's "float32[N]" type in the virtual-table declaration.
func (d DistanceFunction) AsSQLToken() string {
	switch d {
	case L2:
		return "l2"
	case InnerProduct:
		return "ip"
	default:
		return "cosine"
	}
}

func (d DistanceFunction) String() string {
	return d.AsSQLToken()
}
