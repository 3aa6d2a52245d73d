package metadata

import (
	"fmt"

	"nftraffle/internal/raffle"
)

const (
	SourceStore  = "store"
	SourceTonapi = "tonapi"
)

type TonapiConfiguration struct {
	URL   string  `env:"TONAPI_URL"`
	Token string  `env:"TONAPI_TOKEN"`
	RPS   float64 `env:"TONAPI_RPS" envDefault:"1"`
}

// NewSource picks the attestation source by name. The store source is the
// ledger's own asset metadata table.
func NewSource(name string, store raffle.MetadataSource, configuration TonapiConfiguration) (raffle.MetadataSource, error) {
	switch name {
	case "", SourceStore:
		return store, nil
	case SourceTonapi:
		return NewTonapiSource(configuration.URL, configuration.Token, configuration.RPS)
	default:
		return nil, fmt.Errorf("unknown metadata source %q", name)
	}
}
