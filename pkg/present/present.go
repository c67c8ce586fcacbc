// Package present holds the collaborators the grid calls to fill card
// content: thumbnail candidates, price labels and detail paths.
//
// The grid only depends on the interfaces. The default implementations
// follow the layout of the data tooling's thumbnail directory and CDN.
package present

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"

	"github.com/matzehuels/cardgrid/pkg/card"
)

// Ref identifies a printing of a card.
type Ref struct {
	Set    string
	Number string
}

// ThumbnailResolver returns candidate image locations for a card, best
// first. Overrides map a card name to a preferred location.
type ThumbnailResolver interface {
	Candidates(name string, small bool, overrides map[string]string, ref Ref) []string
}

// PriceFormatter renders a price badge label.
type PriceFormatter interface {
	FormatPrice(price float64) string
}

// PathBuilder builds the navigation path of a card detail page.
type PathBuilder interface {
	Path(identifier string) string
}

// DefaultBaseURL is the public card image CDN used by the data tooling.
const DefaultBaseURL = "https://limitlesstcg.nyc3.cdn.digitaloceanspaces.com/tpci/"

// Thumbnails resolves thumbnails from a local directory and a remote base URL.
type Thumbnails struct {
	// Dir holds thumbnails/xs and thumbnails/sm. Empty disables local candidates.
	Dir string

	// BaseURL is the CDN prefix; images live at <base>/<SET>/<SET>_<NNN>_R_EN_<SIZE>.png.
	BaseURL string
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeFilename maps a card name onto the tooling's file naming.
func SanitizeFilename(name string) string {
	s := unsafeFilename.ReplaceAllString(strings.TrimSpace(name), "_")
	return strings.Trim(s, "_")
}

// Candidates implements ThumbnailResolver.
func (t Thumbnails) Candidates(name string, small bool, overrides map[string]string, ref Ref) []string {
	var out []string
	if o, ok := overrides[name]; ok && o != "" {
		out = append(out, o)
	}

	size := "SM"
	if small {
		size = "XS"
	}
	set, num := card.NormalizeSet(ref.Set), card.NormalizeNumber(ref.Number)

	if t.Dir != "" {
		base := SanitizeFilename(name)
		if set != "" && num != "" {
			out = append(out, fmt.Sprintf("%s/thumbnails/%s/%s_%s_%s.png", t.Dir, strings.ToLower(size), base, set, num))
		}
		out = append(out, fmt.Sprintf("%s/thumbnails/%s/%s.png", t.Dir, strings.ToLower(size), base))
	}
	if t.BaseURL != "" && set != "" && num != "" {
		u := strings.TrimSuffix(t.BaseURL, "/")
		out = append(out, fmt.Sprintf("%s/%s/%s_%s_R_EN_%s.png", u, set, set, num, size))
	}
	return out
}

// USD formats prices as US dollars.
type USD struct{}

// FormatPrice implements PriceFormatter.
func (USD) FormatPrice(price float64) string {
	if math.IsNaN(price) || price < 0 {
		return ""
	}
	if price < 1 {
		return fmt.Sprintf("$%.2f", price)
	}
	whole := fmt.Sprintf("%.2f", price)
	intPart, frac, _ := strings.Cut(whole, ".")
	return "$" + groupThousands(intPart) + "." + frac
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// CardPaths builds /card/<identifier> paths.
type CardPaths struct {
	Prefix string
}

// Path implements PathBuilder.
func (p CardPaths) Path(identifier string) string {
	prefix := p.Prefix
	if prefix == "" {
		prefix = "/card"
	}
	return strings.TrimSuffix(prefix, "/") + "/" + url.PathEscape(identifier)
}

var (
	_ ThumbnailResolver = Thumbnails{}
	_ PriceFormatter    = USD{}
	_ PathBuilder       = CardPaths{}
)
