package main

import (
	"embed"

	cmd "github.com/testwell-ci/testpages/cmd/testpages"
	"github.com/testwell-ci/testpages/internal/assets"
)

//go:embed data/templates
var vfs embed.FS

func main() {
	assets.UpdateData(&vfs)
	cmd.Execute()
}
