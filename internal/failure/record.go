package failure

import (
	"encoding/json"
	"fmt"
)

const StatusFailed = "FAILED"

// Record is the terminal-failure sentinel payload.
type Record struct {
	Status    string `json:"status"`
	ErrorKind Kind   `json:"errorKind"`
	Detail    string `json:"detail"`
}

// RecordFor builds the sentinel payload for err. Classified upstream errors
// report their upstream code as detail so the failure stays diagnosable.
func RecordFor(err error) Record {
	rec := Record{Status: StatusFailed, ErrorKind: KindOf(err)}
	if rec.ErrorKind == "" {
		rec.ErrorKind = KindUnexpected
	}
	if code := CodeOf(err); code != "" {
		rec.Detail = code
	} else if err != nil {
		rec.Detail = err.Error()
	}
	return rec
}

func (r Record) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

func ParseRecord(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decode failure record: %w", err)
	}
	return rec, nil
}
