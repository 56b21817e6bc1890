// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides rich terminal output styling for the WebInsight CLI.
package ux

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Aleutian color palette - deep ocean teals and arctic waters
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7") // Bright teal - highlights, success
	ColorTealPrimary = lipgloss.Color("#20B9B4") // Primary teal - main brand color
	ColorTealDeep    = lipgloss.Color("#16858E") // Deep teal - borders, accents
	ColorSlate       = lipgloss.Color("#2C4A54") // Slate - muted text, borders

	// Semantic colors
	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style
	Box       lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Subtitle:  lipgloss.NewStyle().Foreground(ColorTealPrimary),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorSlate),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorTealBright).Bold(true),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorTealDeep).
		Padding(0, 1),
}

// Title prints a styled section title.
func Title(text string) {
	fmt.Println(Styles.Title.Render(text))
}

// Success prints a success message with a check mark.
func Success(text string) {
	fmt.Println(Styles.Success.Render("✓ " + text))
}

// Warning prints a warning message.
func Warning(text string) {
	fmt.Println(Styles.Warning.Render("⚠ " + text))
}

// Error prints an error message to stderr.
func Error(text string) {
	fmt.Fprintln(os.Stderr, Styles.Error.Render("✗ "+text))
}

// Info prints an informational message.
func Info(text string) {
	fmt.Println(Styles.Subtitle.Render(text))
}

// Muted prints de-emphasized text.
func Muted(text string) {
	fmt.Println(Styles.Muted.Render(text))
}

// Box prints content inside a rounded border with an optional title line.
func Box(title, content string) {
	body := content
	if title != "" {
		body = Styles.Bold.Render(title) + "\n" + content
	}
	fmt.Println(Styles.Box.Render(body))
}

// KeyValue formats one labeled field for report output. Empty values are
// rendered muted so missing data stands out as deliberate.
func KeyValue(label, value string) string {
	rendered := value
	if strings.TrimSpace(value) == "" {
		rendered = Styles.Muted.Render("(not found)")
	}
	return fmt.Sprintf("%s %s", Styles.Subtitle.Render(fmt.Sprintf("%-20s", label+":")), rendered)
}
