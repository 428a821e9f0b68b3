package web

import "embed"

// StaticFS holds the embedded static assets (console CSS and client JS).
//
//go:embed static/*
var StaticFS embed.FS
