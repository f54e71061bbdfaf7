package formatter

import (
	"strings"
	"unicode"

	"github.com/nguyentantai21042004/speech-digest/internal/recognition"
)

// UnknownSpeaker labels words the diarization left unattributed. Results
// without any speaker segments get no labels at all.
const UnknownSpeaker = "spk_unknown"

// Format renders items as speaker turns: each turn starts with a blank line
// and "{speaker}: ", words are space separated and punctuation attaches to
// the preceding word. The output depends only on the input.
func Format(res recognition.Result) string {
	speakers := speakerMap(res.SpeakerSegments)

	var b strings.Builder
	current := ""
	pendingSpace := false

	for _, item := range res.Items {
		if item.Kind == recognition.KindPunctuation {
			b.WriteString(item.Content)
			continue
		}

		speaker := resolve(speakers, item.StartTime)
		if speaker != current {
			current = speaker
			b.WriteString("\n\n")
			b.WriteString(speaker)
			b.WriteString(": ")
			pendingSpace = false
		}
		if pendingSpace {
			b.WriteByte(' ')
		}
		b.WriteString(item.Content)
		pendingSpace = true
	}

	return strings.TrimRightFunc(b.String(), unicode.IsSpace)
}

// speakerMap indexes start times by speaker; on collisions the later
// segment wins.
func speakerMap(segments []recognition.SpeakerSegment) map[string]string {
	speakers := make(map[string]string)
	for _, seg := range segments {
		for _, start := range seg.StartTimes {
			speakers[start] = seg.SpeakerLabel
		}
	}
	return speakers
}

func resolve(speakers map[string]string, start string) string {
	if len(speakers) == 0 {
		return ""
	}
	if speaker, ok := speakers[start]; ok && speaker != "" {
		return speaker
	}
	return UnknownSpeaker
}
