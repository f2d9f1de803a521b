package status

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "status"

// WriteXLSX exports the aggregated status as a workbook, one row per
// (repository, branch, platform).
func WriteXLSX(path string, results []*RepoStatus) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}

	headers := []string{"Repo", "Branch", "Platform", "Result", "Commit", "Freshness", "Timestamp"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(xlsxSheet, cell, h); err != nil {
			return errors.Wrap(err, "writing header")
		}
	}

	row := 2
	for _, rs := range results {
		branches := make([]string, 0, len(rs.Branches))
		for b := range rs.Branches {
			branches = append(branches, b)
		}
		sort.Strings(branches)

		for _, branch := range branches {
			bs := rs.Branches[branch]
			pids := make([]string, 0, len(bs))
			for pid := range bs {
				pids = append(pids, pid)
			}
			sort.Strings(pids)

			for _, pid := range pids {
				info := bs[pid]
				values := []interface{}{
					rs.Ref.Name,
					branch,
					pid,
					info.Verdict.String(),
					info.CommitHash,
					Classify(info.CommitHash, rs.LocalHead).String(),
					info.Timestamp,
				}
				for i, v := range values {
					cell, _ := excelize.CoordinatesToCellName(i+1, row)
					if err := f.SetCellValue(xlsxSheet, cell, v); err != nil {
						return errors.Wrapf(err, "writing row %d", row)
					}
				}
				row++
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "saving %s", path)
	}
	return nil
}
