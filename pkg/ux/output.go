// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides terminal output styling for the Blueprint CLI.
package ux

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Blueprint color palette - drafting blues and print-paper tones
var (
	ColorBlueBright  = lipgloss.Color("#4FA8FF") // Bright blue - highlights, success
	ColorBluePrimary = lipgloss.Color("#2B7FD9") // Primary blue - main brand color
	ColorBlueDeep    = lipgloss.Color("#1F5FA8") // Deep blue - borders, accents
	ColorInk         = lipgloss.Color("#16324F") // Ink - dark backgrounds
	ColorSlate       = lipgloss.Color("#5C6B7A") // Slate - muted text

	// Semantic colors
	ColorSuccess = lipgloss.Color("#4FA8FF")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title   lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	Box lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorBlueBright),
	Bold:    lipgloss.NewStyle().Bold(true),
	Muted:   lipgloss.NewStyle().Foreground(ColorSlate),
	Success: lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning: lipgloss.NewStyle().Foreground(ColorWarning),
	Error:   lipgloss.NewStyle().Foreground(ColorError),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBlueDeep).
		Padding(0, 1),
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconArrow   Icon = "→"
	IconBullet  Icon = "•"
)

// Render returns the icon with appropriate styling
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	default:
		return string(i)
	}
}

// RunSummary is the data a finished compile run shows the user.
type RunSummary struct {
	RunID     string
	Phase     string
	Ordered   int
	Cycles    int
	Artifacts int
	Stubbed   int
	Repairs   int
	Warnings  []string
	Validated *bool
	Endpoint  string
}

// RenderSummary formats a finished run as a bordered summary block.
func RenderSummary(s RunSummary) string {
	var b strings.Builder

	icon := IconSuccess
	if s.Phase != "done" {
		icon = IconError
	}
	b.WriteString(fmt.Sprintf("%s Run %s %s\n", icon.Render(),
		Styles.Bold.Render(s.RunID), s.Phase))
	b.WriteString(fmt.Sprintf("  tasks: %d ordered, %d cycles excluded\n", s.Ordered, s.Cycles))
	b.WriteString(fmt.Sprintf("  artifacts: %d written, %d stubbed\n", s.Artifacts, s.Stubbed))
	if s.Repairs > 0 {
		b.WriteString(fmt.Sprintf("  drift repairs: %d\n", s.Repairs))
	}
	for _, w := range s.Warnings {
		b.WriteString(fmt.Sprintf("  %s %s\n", IconWarning.Render(), Styles.Warning.Render(w)))
	}
	if s.Validated != nil {
		b.WriteString(fmt.Sprintf("  validation passed: %t\n", *s.Validated))
	}
	if s.Endpoint != "" {
		b.WriteString(fmt.Sprintf("  deployed at: %s\n", s.Endpoint))
	}

	return Styles.Box.Render(strings.TrimRight(b.String(), "\n"))
}
