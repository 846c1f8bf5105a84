package brain

import (
	"github.com/wonny/aegis/momentum/internal/report"
)

// DefaultTopContributors is how many tickers results.txt lists by contribution
const DefaultTopContributors = 5

// Artifacts packages a completed run for the report writer
func (o *Orchestrator) Artifacts(result *RunResult) report.Artifacts {
	return report.Artifacts{
		Results: report.Results{
			RunID:       result.RunID,
			TopK:        o.strategy.Selection.TopK,
			Summary:     result.Summary,
			Report:      result.Report,
			Attribution: result.Attribution,
			TopN:        DefaultTopContributors,
			Risk:        result.Risk,
		},
		Outliers: result.Preprocess.Outliers,
		Panel:    result.Preprocess.Panel,
		Series:   result.Series,
	}
}
