package retrieval

import "github.com/poiesic/energuide/core"

// Monitor receives callbacks at each stage of a retrieval.
type Monitor interface {
	Start(query string)
	AfterNeighborSearch(neighbors []core.Neighbor)
	AfterThreshold(relevant []core.ScoredDocument)
	AfterDedup(unique []core.ScoredDocument)
	AfterContextAssembly(context string)
	Finish(result Result)
}

type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                         {}
func (n *noopMonitor) AfterNeighborSearch(_ []core.Neighbor)  {}
func (n *noopMonitor) AfterThreshold(_ []core.ScoredDocument) {}
func (n *noopMonitor) AfterDedup(_ []core.ScoredDocument)     {}
func (n *noopMonitor) AfterContextAssembly(_ string)          {}
func (n *noopMonitor) Finish(_ Result)                        {}
