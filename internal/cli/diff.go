// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// lineDiff renders a line-oriented diff of before and after. Unchanged runs
// longer than 2*context lines are collapsed.
func lineDiff(path string, before, after []byte, context int) string {
	if string(before) == string(after) {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(before), string(after))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	added := color.New(color.FgGreen).SprintFunc()
	removed := color.New(color.FgRed).SprintFunc()
	header := color.New(color.Bold).SprintFunc()

	var sb strings.Builder
	sb.WriteString(header(fmt.Sprintf("--- %s\n+++ %s (after)\n", path, path)))

	for i, d := range diffs {
		text := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			for _, l := range text {
				sb.WriteString(added("+" + l))
				sb.WriteByte('\n')
			}
		case diffmatchpatch.DiffDelete:
			for _, l := range text {
				sb.WriteString(removed("-" + l))
				sb.WriteByte('\n')
			}
		case diffmatchpatch.DiffEqual:
			writeContext(&sb, text, context, i == 0, i == len(diffs)-1)
		}
	}
	return sb.String()
}

func writeContext(sb *strings.Builder, lines []string, context int, first, last bool) {
	head, tail := context, context
	if first {
		head = 0
	}
	if last {
		tail = 0
	}
	if len(lines) <= head+tail {
		for _, l := range lines {
			sb.WriteString(" " + l + "\n")
		}
		return
	}
	for _, l := range lines[:head] {
		sb.WriteString(" " + l + "\n")
	}
	sb.WriteString(color.New(color.FgCyan).Sprint("@@") + "\n")
	for _, l := range lines[len(lines)-tail:] {
		sb.WriteString(" " + l + "\n")
	}
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}
