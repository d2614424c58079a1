// Package web embeds the page template and static assets of the web host.
package web

import "embed"

// TemplatesFS embeds HTML templates for server-side rendering.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds static assets (js).
//
//go:embed static/*
var StaticFS embed.FS
