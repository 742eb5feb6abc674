// Package portal embeds the HTML templates served by the programme portal.
package portal

import "embed"

// TemplateFS holds the page templates under web/templates.
//
//go:embed web/templates/*.tmpl
var TemplateFS embed.FS
