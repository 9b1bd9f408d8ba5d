// Package pages holds the HTML templates and static assets compiled into the binary.
package pages

import "embed"

//go:embed *.html partials/*.html static/*
var FS embed.FS
