// Package ui formats terminal output for the toplist CLI with lipgloss styles.
//
// [Palette] holds the named styles; [Banner] renders the box printed when the server starts.
package ui
