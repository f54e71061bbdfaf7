// Package report renders a job's transcript and summary as a Word document.
package report

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
	"github.com/nguyentantai21042004/speech-digest/internal/status"
)

const (
	fontName  = "Times New Roman"
	fontSize  = 13
	titleSize = 16
)

var (
	reHeading = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet  = regexp.MustCompile(`^[\-\*•]\s+(.+)$`)
	reTurn    = regexp.MustCompile(`^([^\s:]+):\s(.*)$`)
)

// Turn is one paragraph of a formatted transcript.
type Turn struct {
	Speaker string
	Text    string
}

// WriteDocx saves res to path: a title, the summary (or the reason it is
// missing) and the transcript with one paragraph per speaker turn.
func WriteDocx(path string, res status.Results) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	addStyledRun(doc.AddParagraph(""), "Job "+res.JobName, true, titleSize)

	addStyledRun(doc.AddParagraph(""), "Summary", true, headingSize(2))
	switch {
	case res.Summary != nil:
		addMarkdown(doc, *res.Summary)
	case res.Failure != nil:
		addStyledRun(doc.AddParagraph(""), fmt.Sprintf("Summary unavailable: %s (%s)", res.Failure.ErrorKind, res.Failure.Detail), false, fontSize)
	default:
		addStyledRun(doc.AddParagraph(""), "Summary not ready yet.", false, fontSize)
	}

	addStyledRun(doc.AddParagraph(""), "Transcript", true, headingSize(2))
	if res.Transcription == nil {
		addStyledRun(doc.AddParagraph(""), "Transcript not ready yet.", false, fontSize)
	} else {
		for _, turn := range SplitTurns(*res.Transcription) {
			p := doc.AddParagraph("")
			if turn.Speaker != "" {
				addStyledRun(p, turn.Speaker+": ", true, fontSize)
			}
			p.AddText(turn.Text).Font(fontName).Size(fontSize).Color("000000")
		}
	}

	if err := doc.SaveTo(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// SplitTurns breaks a formatted transcript on paragraph breaks. Paragraphs
// without a "label: " prefix keep an empty Speaker.
func SplitTurns(transcript string) []Turn {
	var turns []Turn
	for _, para := range strings.Split(transcript, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if m := reTurn.FindStringSubmatch(para); m != nil {
			turns = append(turns, Turn{Speaker: m[1], Text: m[2]})
			continue
		}
		turns = append(turns, Turn{Text: para})
	}
	return turns
}

func addMarkdown(doc *docx.RootDoc, markdown string) {
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "---" {
			continue
		}

		if m := reHeading.FindStringSubmatch(trimmed); m != nil {
			addStyledRun(doc.AddParagraph(""), m[2], true, headingSize(len(m[1])))
			continue
		}
		if m := reBullet.FindStringSubmatch(trimmed); m != nil {
			addRichText(doc.AddParagraph(""), "• "+m[1])
			continue
		}
		addRichText(doc.AddParagraph(""), trimmed)
	}
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 15
	case 3:
		return 14
	default:
		return fontSize
	}
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(cleanMarkdownInline(text)).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}

func addRichText(p *docx.Paragraph, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(cleanMarkdownInline(part)).Font(fontName).Size(fontSize).Color("000000")
		}
		if i < len(matches) {
			p.AddText(cleanMarkdownInline(matches[i][1])).Font(fontName).Size(fontSize).Color("000000").Bold(true)
		}
	}
}

func cleanMarkdownInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
