package extract

import (
	"slices"
	"strconv"
	"strings"
)

// pdfOperators are content-stream operators whose lines carry no user text.
var pdfOperators = []string{
	"BT", "ET", "Tf", "Td", "TD", "Tm", "T*", "Tj", "TJ", "'", "\"",
	"q", "Q", "cm", "w", "J", "j", "M", "d", "ri", "i", "gs",
	"CS", "cs", "SC", "SCN", "sc", "scn", "G", "g", "RG", "rg", "K", "k",
	"m", "l", "c", "v", "y", "h", "re", "S", "s", "f", "F", "f*", "B", "B*", "b", "b*", "n",
	"W", "W*", "BX", "EX", "MP", "DP", "BMC", "BDC", "EMC",
}

// parsePageContent turns one page's decoded content stream into plain text.
// Returns "" when the page carries nothing readable.
func parsePageContent(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}

	texts := collectShownText(content)
	if len(texts) == 0 {
		return cleanupExtractedText(recoverReadableText(content))
	}
	return cleanupExtractedText(strings.Join(texts, " "))
}

// collectShownText gathers the string arguments of text-show operations
// (Tj, TJ, ', ").
func collectShownText(content string) []string {
	var texts []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.Contains(line, " Tj") && !strings.Contains(line, " TJ") &&
			!strings.Contains(line, "' ") && !strings.Contains(line, "\" ") {
			continue
		}
		texts = append(texts, parseTextOperation(line)...)
	}
	return texts
}

// parseTextOperation extracts the parenthesised string literals from one
// operation line, honouring backslash escapes.
func parseTextOperation(operation string) []string {
	var texts []string
	inText := false
	start := -1

	for i, char := range operation {
		if char == '(' && (i == 0 || operation[i-1] != '\\') {
			inText = true
			start = i + 1
		} else if char == ')' && inText && (i == 0 || operation[i-1] != '\\') {
			if start != -1 && start < i {
				text := operation[start:i]
				text = strings.ReplaceAll(text, "\\(", "(")
				text = strings.ReplaceAll(text, "\\)", ")")
				text = strings.ReplaceAll(text, "\\\\", "\\")
				text = strings.ReplaceAll(text, "\\n", "\n")
				text = strings.ReplaceAll(text, "\\r", "\r")
				text = strings.ReplaceAll(text, "\\t", "\t")
				if strings.TrimSpace(text) != "" {
					texts = append(texts, text)
				}
			}
			inText = false
			start = -1
		}
	}
	return texts
}

// recoverReadableText salvages readable fragments from streams that show
// text without explicit text operators (e.g. via embedded font programs).
func recoverReadableText(content string) string {
	var readable []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isOperatorLine(line) {
			continue
		}
		if isReadableLine(line) {
			readable = append(readable, line)
		}
	}
	return strings.Join(readable, " ")
}

// isOperatorLine reports whether a line is operator/coordinate noise.
func isOperatorLine(line string) bool {
	words := strings.Fields(line)
	if len(words) == 0 {
		return false
	}

	if slices.Contains(pdfOperators, words[len(words)-1]) {
		return true
	}

	nonNumeric := 0
	for _, word := range words {
		if _, err := strconv.ParseFloat(word, 64); err != nil {
			nonNumeric++
		}
	}
	return float64(nonNumeric)/float64(len(words)) < 0.3
}

// isReadableLine requires at least 30% alphabetic characters.
func isReadableLine(line string) bool {
	if len(line) < 2 {
		return false
	}
	alpha := 0
	for _, char := range line {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') {
			alpha++
		}
	}
	return float64(alpha)/float64(len(line)) >= 0.3
}

// cleanupExtractedText normalizes escapes, strips binary noise and fixes
// spacing around punctuation.
func cleanupExtractedText(text string) string {
	text = strings.TrimSpace(text)
	text = processOctalEscapes(text)
	text = removeBinaryCharacters(text)

	for strings.Contains(text, "  ") {
		text = strings.ReplaceAll(text, "  ", " ")
	}

	text = strings.ReplaceAll(text, " .", ".")
	text = strings.ReplaceAll(text, " ,", ",")
	text = strings.ReplaceAll(text, " !", "!")
	text = strings.ReplaceAll(text, " ?", "?")

	return text
}

// processOctalEscapes maps the octal sequences common in PDF literals to
// their characters and drops the rest.
func processOctalEscapes(text string) string {
	replacements := map[string]string{
		"\\037": "",   // unit separator
		"\\260": "°",
		"\\256": "®",
		"\\251": "©",
		"\\231": "'",
		"\\221": "'",
		"\\223": "\"",
		"\\224": "\"",
		"\\226": "–",
		"\\227": "—",
		"\\240": " ", // non-breaking space
		"\\012": "\n",
		"\\015": "\r",
		"\\011": "\t",
	}
	for octal, replacement := range replacements {
		text = strings.ReplaceAll(text, octal, replacement)
	}

	result := strings.Builder{}
	i := 0
	for i < len(text) {
		if i < len(text)-3 && text[i] == '\\' &&
			text[i+1] >= '0' && text[i+1] <= '7' &&
			text[i+2] >= '0' && text[i+2] <= '7' &&
			text[i+3] >= '0' && text[i+3] <= '7' {
			i += 4
		} else {
			result.WriteByte(text[i])
			i++
		}
	}
	return result.String()
}

// removeBinaryCharacters keeps printable ASCII, common punctuation ranges
// and whitespace; other control bytes become spaces.
func removeBinaryCharacters(text string) string {
	result := strings.Builder{}
	for _, char := range text {
		if (char >= 32 && char <= 126) ||
			char == '\n' || char == '\r' || char == '\t' ||
			(char >= 0x00A0 && char <= 0x00FF) ||
			(char >= 0x2000 && char <= 0x206F) {
			result.WriteRune(char)
		} else if char < 32 {
			result.WriteRune(' ')
		}
	}
	return result.String()
}
