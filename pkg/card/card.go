// Package card defines the card records laid out by the grid.
//
// Items arrive already ordered; this package only models them, derives
// their identity keys and loads the JSON reports produced by the data
// tooling. Sourcing, filtering and sorting happen elsewhere.
package card

import (
	"encoding/json"
	"regexp"
	"strings"
)

// DistEntry is one bucket of a copy-count histogram: Players decks ran
// Copies copies, which is Percent of the decks that ran the card at all.
type DistEntry struct {
	Copies  int     `json:"copies"`
	Players int     `json:"players"`
	Percent float64 `json:"percent"`
}

// Item is a single card record. It is read-only to the grid.
type Item struct {
	Name        string      `json:"name"`
	UID         string      `json:"uid,omitempty"`
	Set         string      `json:"set,omitempty"`
	Number      Number      `json:"number,omitempty"`
	Found       int         `json:"found"`
	Total       int         `json:"total"`
	Pct         *float64    `json:"pct,omitempty"`
	Dist        []DistEntry `json:"dist,omitempty"`
	Category    string      `json:"category,omitempty"`
	TrainerType string      `json:"trainerType,omitempty"`
	EnergyType  string      `json:"energyType,omitempty"`
	Price       *float64    `json:"price,omitempty"`
	Rank        int         `json:"rank,omitempty"`
}

// Percent returns the usage percentage, deriving it from Found/Total when
// the record does not carry one.
func (it Item) Percent() float64 {
	if it.Pct != nil {
		return *it.Pct
	}
	if it.Total <= 0 {
		return 0
	}
	return float64(it.Found) / float64(it.Total) * 100
}

// Key returns the identity key used to match the item with a previously
// rendered node. The first non-empty of uid, normalised set~number, and
// lowercase name wins.
func (it Item) Key() string {
	if uid := strings.TrimSpace(it.UID); uid != "" {
		return uid
	}
	set, num := NormalizeSet(it.Set), NormalizeNumber(string(it.Number))
	if set != "" && num != "" {
		return set + "~" + num
	}
	return strings.ToLower(strings.TrimSpace(it.Name))
}

// Number is a card number. Reports carry it either as a string ("087",
// "TG12") or as a bare JSON number.
type Number string

// UnmarshalJSON accepts strings, numbers and null.
func (n *Number) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = Number(s)
		return nil
	}
	var f json.Number
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f.String())
	return nil
}

// NormalizeSet trims and upper-cases a set code.
func NormalizeSet(set string) string {
	return strings.ToUpper(strings.TrimSpace(set))
}

var numberRe = regexp.MustCompile(`^(\d+)([A-Za-z]*)$`)

// NormalizeNumber zero-pads the numeric part of a card number to three
// digits and upper-cases any suffix ("7a" -> "007A"). Numbers that are not
// digits-plus-suffix are only upper-cased.
func NormalizeNumber(num string) string {
	raw := strings.TrimSpace(num)
	if raw == "" {
		return ""
	}
	m := numberRe.FindStringSubmatch(raw)
	if m == nil {
		return strings.ToUpper(raw)
	}
	digits := m[1]
	if len(digits) < 3 {
		digits = strings.Repeat("0", 3-len(digits)) + digits
	}
	return digits + strings.ToUpper(m[2])
}
