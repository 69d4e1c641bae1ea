// Package web holds the page templates and static assets compiled into the
// lexdash binary.
package web

import "embed"

// TemplatesFS holds layout.html plus one file per page.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS is served under /static.
//
//go:embed static/*
var StaticFS embed.FS
