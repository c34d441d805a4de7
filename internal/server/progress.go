package server

import (
	"fmt"

	"github.com/ironsheep/scan-merge-mcp/internal/merge"
)

// progressNotifier forwards search progress as MCP notifications/progress
// messages tagged with the caller's token.
type progressNotifier struct {
	s     *Server
	token interface{}
}

func (s *Server) newProgressNotifier(token interface{}) *progressNotifier {
	return &progressNotifier{s: s, token: token}
}

// Update implements merge.Reporter.
func (p *progressNotifier) Update(sample merge.ProgressSample) {
	p.s.notify("notifications/progress", map[string]interface{}{
		"progressToken": p.token,
		"progress":      sample.Progress,
		"total":         1.0,
		"message": fmt.Sprintf("scale %d: best x=%d y=%d deviation %.2f",
			sample.Scale, sample.BestX, sample.BestY, sample.BestDeviation),
	})
}

// foldReporter rescales the progress of each search in a multi-fragment
// merge onto the whole fold. A search is finished once it reports 1.
type foldReporter struct {
	next  merge.Reporter
	steps int
	done  int
}

// Update implements merge.Reporter.
func (f *foldReporter) Update(sample merge.ProgressSample) {
	p := sample.Progress
	sample.Progress = (float64(f.done) + p) / float64(f.steps)
	if p >= 1 {
		f.done++
	}
	f.next.Update(sample)
}
