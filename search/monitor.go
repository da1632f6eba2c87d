package search

import (
	"github.com/poiesic/recipesearch/core"
	"github.com/poiesic/recipesearch/threshold"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
// Recipe and ingredient pipelines run concurrently, so implementations must
// be safe for concurrent use.
type SearchMonitor interface {
	Start(requestID string, query core.Query)
	AfterRepair(query core.CorrectedQuery)
	AfterRetrieval(kind core.EntityKind, candidates *core.Candidates)
	AfterFusion(kind core.EntityKind, results []*core.FusedResult)
	AfterRerank(kind core.EntityKind, results []*core.FusedResult)
	AfterThreshold(kind core.EntityKind, decision threshold.Decision, dropped int)
	Finish(response *core.Response)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ core.Query)                                  {}
func (n *noopMonitor) AfterRepair(_ core.CorrectedQuery)                             {}
func (n *noopMonitor) AfterRetrieval(_ core.EntityKind, _ *core.Candidates)          {}
func (n *noopMonitor) AfterFusion(_ core.EntityKind, _ []*core.FusedResult)          {}
func (n *noopMonitor) AfterRerank(_ core.EntityKind, _ []*core.FusedResult)          {}
func (n *noopMonitor) AfterThreshold(_ core.EntityKind, _ threshold.Decision, _ int) {}
func (n *noopMonitor) Finish(_ *core.Response)                                       {}
