// Package frontend embeds the portal's static PWA shell assets.
package frontend

import "embed"

// StaticFS holds the PWA support files served from root paths.
//
//go:embed static
var StaticFS embed.FS
