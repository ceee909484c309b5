package lsp

import "unicode/utf8"

// applyChanges применяет инкрементальные правки клиента; правка без Range
// заменяет весь текст.
func applyChanges(text string, changes []textDocumentContentChangeEvent) string {
	for _, change := range changes {
		if change.Range == nil {
			text = change.Text
			continue
		}
		start := min(offsetForPosition(text, change.Range.Start), len(text))
		end := min(max(offsetForPosition(text, change.Range.End), start), len(text))
		text = text[:start] + change.Text + text[end:]
	}
	return text
}

// offsetForPosition переводит позицию LSP (строка, UTF-16 единицы) в байтовое
// смещение. Позиция за концом строки прижимается к её концу.
func offsetForPosition(text string, pos position) int {
	if pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	i := 0
	for line := 0; line < pos.Line; line++ {
		nl := indexByteFrom(text, i, '\n')
		if nl < 0 {
			return len(text)
		}
		i = nl + 1
	}
	units := 0
	for i < len(text) && text[i] != '\n' && units < pos.Character {
		r, size := utf8.DecodeRuneInString(text[i:])
		need := utf16Len(r)
		if units+need > pos.Character {
			break
		}
		units += need
		i += size
	}
	return i
}

func indexByteFrom(s string, from int, b byte) int {
	for i := from; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

func utf16Len(r rune) int {
	if r > 0xFFFF {
		return 2
	}
	return 1
}
