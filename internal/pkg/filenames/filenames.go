// Package filenames derives the stored names that address uploaded
// documents, both on disk and in the attachments table.
package filenames

import (
	"path/filepath"
	"strings"
)

// PDFExtension is the only accepted document type.
const PDFExtension = ".pdf"

// asciiFold maps accented Latin characters to their ASCII equivalents so
// subject names like "Matemáticas" survive sanitization intact.
var asciiFold = map[rune]rune{
	'á': 'a', 'à': 'a', 'ä': 'a', 'â': 'a', 'ã': 'a', 'å': 'a',
	'é': 'e', 'è': 'e', 'ë': 'e', 'ê': 'e',
	'í': 'i', 'ì': 'i', 'ï': 'i', 'î': 'i',
	'ó': 'o', 'ò': 'o', 'ö': 'o', 'ô': 'o', 'õ': 'o',
	'ú': 'u', 'ù': 'u', 'ü': 'u', 'û': 'u',
	'ñ': 'n', 'ç': 'c',
	'Á': 'A', 'À': 'A', 'Ä': 'A', 'Â': 'A', 'Ã': 'A', 'Å': 'A',
	'É': 'E', 'È': 'E', 'Ë': 'E', 'Ê': 'E',
	'Í': 'I', 'Ì': 'I', 'Ï': 'I', 'Î': 'I',
	'Ó': 'O', 'Ò': 'O', 'Ö': 'O', 'Ô': 'O', 'Õ': 'O',
	'Ú': 'U', 'Ù': 'U', 'Ü': 'U', 'Û': 'U',
	'Ñ': 'N', 'Ç': 'C',
}

func isAllowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_' || r == '.' || r == '-':
		return true
	}
	return false
}

// Sanitize reduces name to a single safe path segment: accents are folded
// to ASCII, path separators and spaces become underscores, every other
// character outside [A-Za-z0-9_.-] is dropped, and leading/trailing dots
// and underscores are trimmed. The result is deterministic for a given
// input, which makes stored names reproducible.
func Sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	for _, r := range name {
		if folded, ok := asciiFold[r]; ok {
			r = folded
		}
		switch {
		case r == ' ' || r == '/' || r == '\\':
			b.WriteRune('_')
		case isAllowed(r):
			b.WriteRune(r)
		}
	}

	return strings.Trim(b.String(), "._")
}

// EnsurePDF appends the accepted extension when name does not already
// carry it (case-insensitive).
func EnsurePDF(name string) string {
	if HasPDFExt(name) {
		return name
	}
	return name + PDFExtension
}

// HasPDFExt reports whether name ends with the accepted extension,
// case-insensitively.
func HasPDFExt(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), PDFExtension)
}

// StoredName derives the canonical stored name for an upload from the
// subject, the academic period and the original filename. The original
// extension is stripped before composing so "notes.PDF" and "notes.pdf"
// produce the same stored name.
func StoredName(subject, period, originalName string) string {
	base := strings.TrimSuffix(originalName, filepath.Ext(originalName))
	return Sanitize(subject + "_" + period + "_" + base + PDFExtension)
}
