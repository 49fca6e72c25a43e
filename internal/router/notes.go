package router

import "strings"

// MergeNotes merges a round-trip notes field at paragraph granularity.
// previous is the last value both sides agreed on, ledger the current ledger
// value, markdown the freshly parsed value.
//
// Per paragraph, the last writer wins; when both sides changed the same
// paragraph, markdown wins and the ledger value is surfaced as a conflict
// instead of being silently dropped. Paragraphs appended on either side are
// kept: concatenation never loses text.
func MergeNotes(previous, ledger, markdown string) (string, []NoteConflict) {
	if ledger == markdown {
		return markdown, nil
	}

	prevParas := splitParagraphs(previous)
	ledgerParas := splitParagraphs(ledger)
	mdParas := splitParagraphs(markdown)

	n := len(ledgerParas)
	if len(mdParas) > n {
		n = len(mdParas)
	}

	var merged []string
	var conflicts []NoteConflict
	for i := 0; i < n; i++ {
		prev := paragraphAt(prevParas, i)
		led := paragraphAt(ledgerParas, i)
		md := paragraphAt(mdParas, i)

		switch {
		case led == md:
			if md != "" {
				merged = append(merged, md)
			}
		case md == prev:
			// Only the ledger side changed; keep its edit.
			if led != "" {
				merged = append(merged, led)
			}
		case led == prev:
			// Only the markdown side changed.
			if md != "" {
				merged = append(merged, md)
			}
		default:
			// Both sides changed: markdown wins, conflict surfaced.
			conflicts = append(conflicts, NoteConflict{Paragraph: i, Ledger: led, Markdown: md})
			if md != "" {
				merged = append(merged, md)
			}
		}
	}

	return strings.Join(merged, "\n\n"), conflicts
}

func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var paras []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			paras = append(paras, p)
		}
	}
	return paras
}

func paragraphAt(paras []string, i int) string {
	if i < len(paras) {
		return paras[i]
	}
	return ""
}
