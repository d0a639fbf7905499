package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUnavailable marks a failed fetch from the remote quote service.
var ErrUnavailable = errors.New("quote service unavailable")

// Snapshot is one batch of quotes for all configured instruments.
// Raw holds the response body exactly as received so it can be persisted verbatim.
type Snapshot struct {
	Raw      json.RawMessage
	Response Response

	// Cached is set when the snapshot was read back from the cache file.
	Cached  bool
	ModTime time.Time
}

// Response mirrors the quoteByDialect payload. Fields are pointers so that a
// missing field can be told apart from a zero value.
type Response struct {
	InstrumentResponses []InstrumentResponse `json:"InstrumentResponses"`
}

type InstrumentResponse struct {
	RequestID string  `json:"RequestId"`
	Matches   []Match `json:"Matches"`
}

type Match struct {
	Instrument       *Instrument       `json:"Instrument"`
	CompositeTrading *CompositeTrading `json:"CompositeTrading"`
}

type Instrument struct {
	Ticker string           `json:"Ticker"`
	Types  []InstrumentType `json:"Types"`
}

type InstrumentType struct {
	Name string `json:"Name"`
}

type CompositeTrading struct {
	Last          *Last            `json:"Last"`
	NetChange     *Value           `json:"NetChange"`
	ChangePercent *decimal.Decimal `json:"ChangePercent"`
	High          *Value           `json:"High"`
	Low           *Value           `json:"Low"`
}

type Last struct {
	Price *Value `json:"Price"`
}

type Value struct {
	Value *decimal.Decimal `json:"Value"`
}

// ParseSnapshot decodes a raw quoteByDialect payload.
func ParseSnapshot(raw []byte) (Snapshot, error) {
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Snapshot{}, fmt.Errorf("parse snapshot: %w", err)
	}
	if resp.InstrumentResponses == nil {
		return Snapshot{}, errors.New("parse snapshot: missing InstrumentResponses")
	}
	return Snapshot{Raw: json.RawMessage(raw), Response: resp}, nil
}

// Provider fetches a snapshot for the given instrument identifiers.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, ids []string) (Snapshot, error)
}
