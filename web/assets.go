// Package web embeds the browser client served by `sortviz serve`.
//
// The client lives in dist/ as plain HTML, CSS and JavaScript. It draws the
// array on a canvas, plays tone messages through WebAudio and drives the
// control API.
package web

import (
	"embed"
	"io/fs"
	"os"
)

//go:embed dist/*
var assets embed.FS

// Assets returns the client files. When devDir names an existing directory
// it is served live instead of the embedded copy, so the client can be
// edited without rebuilding.
func Assets(devDir string) fs.FS {
	if devDir != "" {
		if stat, err := os.Stat(devDir); err == nil && stat.IsDir() {
			return os.DirFS(devDir)
		}
	}

	sub, err := fs.Sub(assets, "dist")
	if err != nil {
		panic("failed to access embedded web assets: " + err.Error())
	}
	return sub
}
