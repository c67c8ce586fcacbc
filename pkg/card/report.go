package card

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/cardgrid/pkg/errors"
)

// Report is the JSON document written by the deck-analysis tooling.
type Report struct {
	DeckTotal int    `json:"deckTotal"`
	Items     []Item `json:"items"`
}

// DecodeReport reads a report from r. A bare JSON array of items is accepted
// as well. Items missing a total inherit the report's deck total.
func DecodeReport(r io.Reader) (*Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidReport, err, "read report")
	}

	data = bytes.TrimSpace(data)

	var rep Report
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &rep.Items); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidReport, err, "decode item list")
		}
	} else if err := json.Unmarshal(data, &rep); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidReport, err, "decode report")
	}

	for i := range rep.Items {
		if rep.Items[i].Total == 0 {
			rep.Items[i].Total = rep.DeckTotal
		}
	}
	return &rep, nil
}

// LoadReport reads a report file.
func LoadReport(path string) (*Report, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "report %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidReport, err, "open %s", path)
	}
	defer f.Close()
	return DecodeReport(f)
}
