// SPDX-FileCopyrightText: 2026 katax
// SPDX-License-Identifier: FSL-1.1-MIT

package routerupdate

import "strings"

const newline = "\n"

// Bytes prints the document back to source text.
//
// Parsed statements are written with their original text and the whitespace
// that preceded them. Inserted statements sit on a line of their own, and an
// original statement that directly follows one is moved to a new line.
func (d *Document) Bytes() []byte {
	var sb strings.Builder
	prevInserted := false

	for i, st := range d.statements {
		b := st.base()
		lead := b.leading

		switch {
		case b.inserted && i == 0:
			lead = ""
		case b.inserted:
			lead = newline
		case prevInserted && !strings.Contains(lead, newline):
			lead = newline + strings.TrimLeft(lead, " \t")
		}

		sb.WriteString(lead)
		sb.WriteString(b.text)
		prevInserted = b.inserted
	}

	trailer := d.trailer
	if prevInserted && !strings.HasSuffix(trailer, newline) {
		trailer += newline
	}
	sb.WriteString(trailer)

	return []byte(sb.String())
}
