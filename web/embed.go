// Package web bundles the console's page templates and browser assets.
package web

import "embed"

// TemplatesFS holds the layout, sidebar, login and per-view templates.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds app.css and app.js, served under /static/.
//
//go:embed static/*
var StaticFS embed.FS
