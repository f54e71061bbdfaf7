package recognition

import (
	"encoding/json"
	"fmt"
)

type ItemKind string

const (
	KindPronunciation ItemKind = "pronunciation"
	KindPunctuation   ItemKind = "punctuation"
)

// Item is one recognized word or punctuation mark. Punctuation carries no
// start time.
type Item struct {
	Kind      ItemKind
	StartTime string
	Content   string
}

// SpeakerSegment lists the start times of the words attributed to one speaker
type SpeakerSegment struct {
	SpeakerLabel string
	StartTimes   []string
}

// Result is the recognition output of one job
type Result struct {
	Items           []Item
	SpeakerSegments []SpeakerSegment
}

type rawResult struct {
	Results struct {
		Items         []rawItem `json:"items"`
		SpeakerLabels *struct {
			Segments []struct {
				SpeakerLabel string `json:"speaker_label"`
				Items        []struct {
					StartTime string `json:"start_time"`
				} `json:"items"`
			} `json:"segments"`
		} `json:"speaker_labels"`
	} `json:"results"`
}

type rawItem struct {
	Type         string `json:"type"`
	StartTime    string `json:"start_time"`
	Alternatives []struct {
		Content string `json:"content"`
	} `json:"alternatives"`
}

// ParseResult decodes the recognition service's JSON document.
func ParseResult(data []byte) (Result, error) {
	var raw rawResult
	if err := json.Unmarshal(data, &raw); err != nil {
		return Result{}, fmt.Errorf("decode recognition result: %w", err)
	}
	if raw.Results.Items == nil {
		return Result{}, fmt.Errorf("decode recognition result: missing results.items")
	}

	res := Result{Items: make([]Item, 0, len(raw.Results.Items))}
	for _, it := range raw.Results.Items {
		item := Item{Kind: ItemKind(it.Type), StartTime: it.StartTime}
		if len(it.Alternatives) > 0 {
			item.Content = it.Alternatives[0].Content
		}
		res.Items = append(res.Items, item)
	}

	if raw.Results.SpeakerLabels != nil {
		for _, seg := range raw.Results.SpeakerLabels.Segments {
			s := SpeakerSegment{SpeakerLabel: seg.SpeakerLabel}
			for _, it := range seg.Items {
				s.StartTimes = append(s.StartTimes, it.StartTime)
			}
			res.SpeakerSegments = append(res.SpeakerSegments, s)
		}
	}
	return res, nil
}
