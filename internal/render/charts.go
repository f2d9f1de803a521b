package render

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/testwell-ci/testpages/internal/resultset"
)

// writeBranchCharts renders a pass/fail bar chart over the branch's
// platforms into a standalone charts page linked from the branch index.
func writeBranchCharts(path, branch, repoID string, verdicts map[string]resultset.Verdict) error {
	ids := make([]string, 0, len(verdicts))
	for pid := range verdicts {
		ids = append(ids, pid)
	}
	sort.Strings(ids)

	var passed, failed []opts.BarData
	for _, pid := range ids {
		switch verdicts[pid] {
		case resultset.VerdictPassed:
			passed = append(passed, opts.BarData{Value: 1})
			failed = append(failed, opts.BarData{Value: 0})
		case resultset.VerdictFailed:
			passed = append(passed, opts.BarData{Value: 0})
			failed = append(failed, opts.BarData{Value: 1})
		default:
			passed = append(passed, opts.BarData{Value: 0})
			failed = append(failed, opts.BarData{Value: 0})
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s / %s", repoID, branch),
			Subtitle: "pass/fail per platform",
		}),
	)
	bar.SetXAxis(ids).
		AddSeries("passed", passed).
		AddSeries("failed", failed)

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("%s %s charts", repoID, branch)
	page.AddCharts(bar)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return page.Render(io.MultiWriter(f))
}
