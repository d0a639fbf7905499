// Package render turns a quote snapshot into menu-bar plugin lines.
//
// The output follows the xbar/SwiftBar protocol: everything before the first
// "---" line is shown in the bar, the rest in the dropdown. Directives after
// "|" (color, size, font, href) are interpreted by the host.
package render

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"marketbar/internal/gate"
	"marketbar/internal/provider"
)

const (
	Separator  = "---"
	GlyphUp    = "▲"
	GlyphDown  = "▼"
	StaleGlyph = "☾ "

	DefaultLinkBase = "https://www.marketwatch.com/investing"
)

// ErrMalformed is returned when a quote record lacks a field needed for display.
var ErrMalformed = errors.New("malformed quote")

// HeadlineColors overrides the colors of the collapsed headline line while
// the local time of day is within [From, Until).
type HeadlineColors struct {
	From     int
	Until    int
	Up       string
	Down     string
	Location *time.Location
}

func (h *HeadlineColors) active(now time.Time) bool {
	if h == nil {
		return false
	}
	if h.Location != nil {
		now = now.In(h.Location)
	}
	hm := gate.HHMM(now)
	return hm >= h.From && hm < h.Until
}

// Style is the per-profile look of a line.
type Style struct {
	FontSize    int
	Font        string
	UpColor     string
	DownColor   string
	StalePrefix string
	ShowRange   bool
	LinkBase    string
	Headline    *HeadlineColors
}

// Quote is the display view of one instrument.
type Quote struct {
	RequestID string
	Ticker    string
	Type      string
	Last      decimal.Decimal
	Change    decimal.Decimal
	Percent   decimal.Decimal
	High      *decimal.Decimal
	Low       *decimal.Decimal
}

// Up reports whether the quote moved up. A zero change counts as down.
func (q Quote) Up() bool { return q.Change.GreaterThan(decimal.Zero) }

// Extract pulls the displayed fields out of one instrument response.
func Extract(ir provider.InstrumentResponse) (Quote, error) {
	fail := func(field string) (Quote, error) {
		return Quote{}, fmt.Errorf("%w: %s: missing %s", ErrMalformed, ir.RequestID, field)
	}
	if len(ir.Matches) == 0 {
		return fail("Matches")
	}
	m := ir.Matches[0]
	if m.Instrument == nil {
		return fail("Instrument")
	}
	if m.Instrument.Ticker == "" {
		return fail("Instrument.Ticker")
	}
	if len(m.Instrument.Types) == 0 || m.Instrument.Types[0].Name == "" {
		return fail("Instrument.Types")
	}
	ct := m.CompositeTrading
	if ct == nil {
		return fail("CompositeTrading")
	}
	if ct.Last == nil || ct.Last.Price == nil || ct.Last.Price.Value == nil {
		return fail("Last.Price.Value")
	}
	if ct.NetChange == nil || ct.NetChange.Value == nil {
		return fail("NetChange.Value")
	}
	if ct.ChangePercent == nil {
		return fail("ChangePercent")
	}

	q := Quote{
		RequestID: ir.RequestID,
		Ticker:    m.Instrument.Ticker,
		Type:      m.Instrument.Types[0].Name,
		Last:      *ct.Last.Price.Value,
		Change:    *ct.NetChange.Value,
		Percent:   ct.ChangePercent.Round(2),
	}
	if ct.High != nil {
		q.High = ct.High.Value
	}
	if ct.Low != nil {
		q.Low = ct.Low.Value
	}
	return q, nil
}

// Renderer formats snapshots for one profile.
type Renderer struct {
	Style Style
	// Now defaults to time.Now.
	Now func() time.Time
}

// Render returns the full plugin output for snap. The headline is the
// response whose request id matches requests[0]. Lines are only returned
// when every instrument renders.
func (r Renderer) Render(snap provider.Snapshot, requests []string) ([]string, error) {
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}
	var headline string
	if len(requests) > 0 {
		headline = requests[0]
	}
	prefix := ""
	if snap.Cached {
		prefix = r.Style.StalePrefix
	}

	out := make([]string, 0, len(snap.Response.InstrumentResponses)+2)
	for _, ir := range snap.Response.InstrumentResponses {
		q, err := Extract(ir)
		if err != nil {
			return nil, err
		}
		body, err := r.body(prefix, q)
		if err != nil {
			return nil, err
		}
		color := r.Style.DownColor
		if q.Up() {
			color = r.Style.UpColor
		}

		if headline != "" && q.RequestID == headline {
			hc := color
			if h := r.Style.Headline; h.active(now) {
				hc = h.Down
				if q.Up() {
					hc = h.Up
				}
			}
			out = append(out, r.directives(body, hc), Separator)
		}
		out = append(out, fmt.Sprintf("%s href=%s", r.directives(body, color), r.link(q)))
	}
	return out, nil
}

func (r Renderer) body(prefix string, q Quote) (string, error) {
	glyph := GlyphDown
	if q.Up() {
		glyph = GlyphUp
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s%s %s %s %s %s%%",
		prefix, q.Ticker, q.Last.StringFixed(2), glyph, q.Change.StringFixed(2), q.Percent.StringFixed(2))
	if r.Style.ShowRange {
		if q.Low == nil || q.High == nil {
			return "", fmt.Errorf("%w: %s: missing High/Low", ErrMalformed, q.RequestID)
		}
		fmt.Fprintf(&b, " (%s - %s)", q.Low.StringFixed(2), q.High.StringFixed(2))
	}
	return b.String(), nil
}

func (r Renderer) directives(body, color string) string {
	s := fmt.Sprintf("%s | color=%s size=%d", body, color, r.Style.FontSize)
	if r.Style.Font != "" {
		s += fmt.Sprintf(" font='%s'", r.Style.Font)
	}
	return s
}

func (r Renderer) link(q Quote) string {
	base := r.Style.LinkBase
	if base == "" {
		base = DefaultLinkBase
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), q.Type, q.Ticker)
}
