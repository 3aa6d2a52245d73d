package metadata

import (
	"context"
	"net/http"

	"github.com/tonkeeper/tonapi-go"
	"github.com/tonkeeper/tongo/ton"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"nftraffle/internal/blockchain"
	"nftraffle/internal/logger"
	"nftraffle/internal/raffle"
)

type itemLookup func(ctx context.Context, address string) (*tonapi.NftItem, error)

// TonapiSource reads asset attestation from indexed NFT items: the item's
// collection is its single creator entry, verified when the indexer has
// verified the item against that collection.
type TonapiSource struct {
	lookup  itemLookup
	limiter *rate.Limiter
}

func NewTonapiSource(url string, token string, rps float64) (*TonapiSource, error) {
	logger.Debug("metadata: tonapi client...", zap.String("url", url))

	if url == "" {
		url = tonapi.TonApiURL
	}
	options := make([]tonapi.ClientOption, 0, 1)
	if token != "" {
		options = append(options, tonapi.WithToken(token))
	}
	client, err := tonapi.NewClient(url, options...)
	if err != nil {
		return nil, err
	}

	lookup := func(ctx context.Context, address string) (*tonapi.NftItem, error) {
		return client.GetNftItemByAddress(ctx, tonapi.GetNftItemByAddressParams{
			AccountID: address,
		})
	}

	logger.Debug("metadata: tonapi client... done")
	return newTonapiSource(lookup, rps), nil
}

func newTonapiSource(lookup itemLookup, rps float64) *TonapiSource {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &TonapiSource{
		lookup:  lookup,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (s *TonapiSource) Metadata(ctx context.Context, asset ton.AccountID) (*raffle.AssetMetadata, error) {
	item, err := rateLimitRetry(ctx, s.limiter, func(ctx context.Context) (*tonapi.NftItem, error) {
		return s.lookup(ctx, asset.ToRaw())
	})
	if err != nil {
		if code := statusCode(err); code == http.StatusNotFound || code == http.StatusBadRequest {
			return nil, raffle.ErrInvalidMetadata
		}
		logger.Warn("metadata: nft item lookup failed", zap.String("asset", asset.ToRaw()), zap.Error(err))
		return nil, raffle.Wrap(raffle.ErrMetadataLookup, err)
	}

	return itemMetadata(asset, item)
}

func itemMetadata(asset ton.AccountID, item *tonapi.NftItem) (*raffle.AssetMetadata, error) {
	metadata := &raffle.AssetMetadata{Asset: asset}

	collection, ok := item.GetCollection().Get()
	if !ok {
		return metadata, nil
	}
	metadata.Name = collection.Name

	address, err := blockchain.ParseAddress(collection.Address)
	if err != nil {
		return nil, raffle.Wrap(raffle.ErrMetadataParse, err)
	}
	metadata.Creators = []raffle.Creator{{
		Address:  address,
		Verified: item.Verified,
		Share:    100,
	}}
	return metadata, nil
}
