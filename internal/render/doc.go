// Package render formats stored records as HTML tables for manual
// inspection.
//
// Rendering is pure: the same records always produce the same bytes. Every
// cell passes through html/template's contextual escaping, so stored text
// can never inject markup into the page.
package render
