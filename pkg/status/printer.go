package status

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/testwell-ci/testpages/internal/resultset"
)

// PrintTable renders the aggregated status as a terminal table, one
// row per repository with a cell per tracked branch.
func PrintTable(w io.Writer, results []*RepoStatus, branches []string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Test Results (pages)")

	header := table.Row{"Repo", "Branch"}
	for _, b := range branches {
		header = append(header, b)
	}
	t.AppendHeader(header)

	for _, rs := range results {
		localBranch := rs.LocalBranch
		if localBranch == "" {
			localBranch = "?"
		}
		row := table.Row{rs.Ref.Name, localBranch}
		for _, b := range branches {
			row = append(row, formatBranchCell(rs.Branches[b], rs.LocalHead))
		}
		t.AppendRow(row)
	}

	t.SetStyle(table.StyleLight)
	t.Render()
	fmt.Fprintln(w, "commit marked * is stale (does not match local HEAD)")
}

// formatBranchCell renders one branch's platforms, one line each.
func formatBranchCell(bs BranchStatus, localHead string) string {
	if len(bs) == 0 {
		return "—"
	}

	pids := make([]string, 0, len(bs))
	for pid := range bs {
		pids = append(pids, pid)
	}
	sort.Strings(pids)

	var lines []string
	for _, pid := range pids {
		info := bs[pid]

		var state string
		switch info.Verdict {
		case resultset.VerdictPassed:
			state = "pass"
		case resultset.VerdictFailed:
			state = "FAIL"
		default:
			state = "?"
		}

		short := info.CommitHash
		if len(short) > 7 {
			short = short[:7]
		}
		if short == "" {
			short = "?"
		}
		if Classify(info.CommitHash, localHead) != Fresh {
			short += "*"
		}

		lines = append(lines, fmt.Sprintf("%s %s %s", shortPlatform(pid), state, short))
	}
	return strings.Join(lines, "\n")
}

// shortPlatform compacts a platform id for narrow table cells.
func shortPlatform(pid string) string {
	r := strings.NewReplacer(
		"windows-portable", "wp",
		"windows", "win",
		"linux", "lnx",
		"macos", "mac",
	)
	return r.Replace(pid)
}
