package voice

import "strings"

// stopPhrases end continuous mode when heard, with no further routing.
var stopPhrases = []string{
	"stop listening",
	"stop aura",
	"goodbye aura",
	"stop voice mode",
	"exit voice mode",
	"turn off voice",
}

// agreementPhrases trigger the acknowledgement routine directly, bypassing
// intent classification.
var agreementPhrases = []string{
	"i agree",
	"i accept",
	"accept terms",
	"accept the terms",
	"agree to the terms",
	"agree to terms",
	"i consent",
}

// normalizeTranscript lowercases and strips punctuation so phrase matching
// survives transcription artifacts like trailing periods.
func normalizeTranscript(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == ' ' || r == '\'' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// isStopPhrase reports whether the transcript contains a stop phrase.
func isStopPhrase(text string) bool {
	normalized := normalizeTranscript(text)
	for _, phrase := range stopPhrases {
		if strings.Contains(normalized, phrase) {
			return true
		}
	}
	return false
}

// isAgreementPhrase reports whether the transcript contains an agreement
// phrase.
func isAgreementPhrase(text string) bool {
	normalized := normalizeTranscript(text)
	for _, phrase := range agreementPhrases {
		if strings.Contains(normalized, phrase) {
			return true
		}
	}
	return false
}
