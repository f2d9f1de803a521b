package assets

import (
	"embed"
	"io/fs"
)

var efs *embed.FS

func GetData() *embed.FS {
	return efs
}

// UpdateData installs the embedded filesystem provided by main. Templates
// are embedded from the repository root, so main owns the embed directive.
func UpdateData(d *embed.FS) {
	efs = d
}

// GetAllFilenames returns every file path under dir in the embedded FS.
func GetAllFilenames(efs *embed.FS, dir string) (files []string, err error) {
	if err := fs.WalkDir(efs, dir, func(path string, d fs.DirEntry, err error) error {
		if d.IsDir() {
			return nil
		}

		files = append(files, path)

		return nil
	}); err != nil {
		return nil, err
	}

	return files, nil
}
