package privacy

import "strings"

// RedactionToken replaces every detected personal-name span
const RedactionToken = "***"

// honorifics are checked in order; each gets its own pass over the text
var honorifics = []string{"さん", "くん", "君", "ちゃん", "様", "さま", "殿", "先生", "氏"}

// roleNouns are generic actor words that precede honorifics in case notes
// but are never personal names. A candidate equal to or ending with one of
// these is left untouched.
var roleNouns = []string{"支援者", "当事者", "担当者", "相談者", "利用者", "参加者", "対象者"}

// fieldLabels mark explicitly labeled name fields in structured memo text
var fieldLabels = []string{"氏名", "名前", "お名前", "患者名", "利用者名", "対象者名"}

const (
	maxHonorificNameSpan = 5
	minLabeledNameSpan   = 2
	maxLabeledNameSpan   = 10
)

// isNameRune reports whether r can be part of a Japanese personal name:
// CJK unified ideographs and Extension A, hiragana, katakana, the
// iteration mark 々 and the long-vowel mark ー.
func isNameRune(r rune) bool {
	switch {
	case r >= 0x4E00 && r <= 0x9FFF: // CJK unified ideographs
		return true
	case r >= 0x3400 && r <= 0x4DBF: // CJK extension A
		return true
	case r >= 0x3040 && r <= 0x309F: // hiragana
		return true
	case r >= 0x30A0 && r <= 0x30FF: // katakana, includes ー
		return true
	case r == 0x3005: // 々
		return true
	}
	return false
}

// isRoleNoun reports whether the candidate span is a generic role noun.
// The backward scan can pick up a preceding particle, so ends-with counts
// the same as an exact match.
func isRoleNoun(candidate string) bool {
	for _, noun := range roleNouns {
		if candidate == noun || strings.HasSuffix(candidate, noun) {
			return true
		}
	}
	return false
}

// Redact removes personal-name spans from free text. It applies the
// honorific-suffix pass and then the labeled-field pass on the first
// pass's output. Redact is total: empty input comes back unchanged and
// already-clean text is returned as-is.
//
// The detection is a structural heuristic, not a name-entity recognizer.
// Only honorific-suffixed spans and explicitly labeled name fields are
// guaranteed to be caught; bare mid-sentence names are not.
func Redact(text string) string {
	if text == "" {
		return text
	}
	out, _ := redactHonorifics(text, nil)
	return redactLabeledFields(out)
}

// HasPersonalNames reports whether the honorific pass would redact anything
func HasPersonalNames(text string) bool {
	if text == "" {
		return false
	}
	_, found := redactHonorifics(text, nil)
	return len(found) > 0
}

// DetectPersonalNames returns the deduplicated name+honorific spans the
// honorific pass would redact, for audit and debugging. The labeled-field
// pass is not run.
func DetectPersonalNames(text string) []string {
	if text == "" {
		return nil
	}
	_, found := redactHonorifics(text, nil)
	seen := make(map[string]bool, len(found))
	var result []string
	for _, span := range found {
		if !seen[span] {
			seen[span] = true
			result = append(result, span)
		}
	}
	return result
}

// redactHonorifics runs one pass per honorific, each over the previous
// pass's output, and returns the redacted text plus every name+honorific
// span that was replaced. The extra slice parameter lets callers provide
// a preallocated buffer; nil is fine.
func redactHonorifics(text string, found []string) (string, []string) {
	runes := []rune(text)
	for _, hon := range honorifics {
		runes, found = applyHonorificPass(runes, []rune(hon), found)
	}
	return string(runes), found
}

// applyHonorificPass scans left to right for one honorific. At each
// occurrence it walks backward through contiguous name runes, at most
// maxHonorificNameSpan and never across the previous consumed occurrence,
// and replaces the span unless it is empty or a role noun. The occurrence
// is consumed either way so the scan restarts after it.
func applyHonorificPass(text, hon []rune, found []string) ([]rune, []string) {
	out := make([]rune, 0, len(text))
	boundary := 0
	i := 0
	for i < len(text) {
		if runesHavePrefix(text[i:], hon) {
			start := i
			for start > boundary && i-start < maxHonorificNameSpan && isNameRune(text[start-1]) {
				start--
			}
			name := string(text[start:i])
			if name != "" && !isRoleNoun(name) {
				out = out[:len(out)-(i-start)]
				out = append(out, []rune(RedactionToken)...)
				found = append(found, name+string(hon))
			}
			out = append(out, hon...)
			i += len(hon)
			boundary = i
			continue
		}
		out = append(out, text[i])
		i++
	}
	return out, found
}

// redactLabeledFields replaces the value after a name-field label and its
// ':' or '：' separator. Half-width spaces after the separator are kept,
// then a run of 2 to maxLabeledNameSpan name runes is replaced.
func redactLabeledFields(text string) string {
	runes := []rune(text)
	for _, label := range fieldLabels {
		runes = applyLabelPass(runes, []rune(label))
	}
	return string(runes)
}

func applyLabelPass(text, label []rune) []rune {
	out := make([]rune, 0, len(text))
	i := 0
	for i < len(text) {
		if runesHavePrefix(text[i:], label) {
			j := i + len(label)
			if j < len(text) && (text[j] == ':' || text[j] == '：') {
				j++
				valueStart := j
				for valueStart < len(text) && text[valueStart] == ' ' {
					valueStart++
				}
				valueEnd := valueStart
				for valueEnd < len(text) && valueEnd-valueStart < maxLabeledNameSpan && isNameRune(text[valueEnd]) {
					valueEnd++
				}
				if valueEnd-valueStart >= minLabeledNameSpan {
					out = append(out, text[i:valueStart]...)
					out = append(out, []rune(RedactionToken)...)
					i = valueEnd
					continue
				}
			}
		}
		out = append(out, text[i])
		i++
	}
	return out
}

func runesHavePrefix(s, prefix []rune) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i := range prefix {
		if s[i] != prefix[i] {
			return false
		}
	}
	return true
}
