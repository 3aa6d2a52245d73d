package metadata

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/tonkeeper/tonapi-go"
	"github.com/tonkeeper/tongo/ton"
	"golang.org/x/time/rate"

	"nftraffle/internal/raffle"
)

func testAddress(b byte) ton.AccountID {
	var id ton.AccountID
	for i := range id.Address {
		id.Address[i] = b
	}
	return id
}

func TestRateLimitRetryRepeatsOn429(t *testing.T) {
	calls := 0
	result, err := rateLimitRetry(context.Background(), rate.NewLimiter(rate.Inf, 1), func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, &tonapi.ErrorStatusCode{StatusCode: http.StatusTooManyRequests}
		}
		return 42, nil
	})
	if err != nil || result != 42 {
		t.Fatalf("expected 42, got %d err=%v", result, err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRateLimitRetryStopsOnOtherErrors(t *testing.T) {
	calls := 0
	_, err := rateLimitRetry(context.Background(), rate.NewLimiter(rate.Inf, 1), func(context.Context) (int, error) {
		calls++
		return 0, &tonapi.ErrorStatusCode{StatusCode: http.StatusInternalServerError}
	})
	if statusCode(err) != http.StatusInternalServerError || calls != 1 {
		t.Fatalf("expected single failing call, got calls=%d err=%v", calls, err)
	}
}

func TestRateLimitRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := rateLimitRetry(ctx, rate.NewLimiter(rate.Inf, 1), func(context.Context) (int, error) {
		return 0, &tonapi.ErrorStatusCode{StatusCode: http.StatusTooManyRequests}
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestTonapiSourceMetadata(t *testing.T) {
	asset, collection := testAddress(2), testAddress(3)
	items := map[string]*tonapi.NftItem{
		asset.ToRaw(): {
			Address:  asset.ToRaw(),
			Verified: true,
			Collection: tonapi.NewOptNftItemCollection(tonapi.NftItemCollection{
				Address: collection.ToRaw(),
				Name:    "Punks",
			}),
		},
		testAddress(4).ToRaw(): {Address: testAddress(4).ToRaw()},
	}
	source := newTonapiSource(func(_ context.Context, address string) (*tonapi.NftItem, error) {
		item, ok := items[address]
		if !ok {
			return nil, &tonapi.ErrorStatusCode{StatusCode: http.StatusNotFound}
		}
		return item, nil
	}, 0)

	metadata, err := source.Metadata(context.Background(), asset)
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if len(metadata.Creators) != 1 || metadata.Creators[0].Address != collection || !metadata.Creators[0].Verified {
		t.Fatalf("unexpected creators %+v", metadata.Creators)
	}
	if metadata.Name != "Punks" {
		t.Fatalf("unexpected name %q", metadata.Name)
	}

	orphan, err := source.Metadata(context.Background(), testAddress(4))
	if err != nil {
		t.Fatalf("orphan metadata: %v", err)
	}
	if orphan.Creators != nil {
		t.Fatal("expected nil creators for item without collection")
	}

	if _, err := source.Metadata(context.Background(), testAddress(5)); !errors.Is(err, raffle.ErrInvalidMetadata) {
		t.Fatalf("expected ErrInvalidMetadata, got %v", err)
	}
}

func TestTonapiSourceWrapsLookupFailures(t *testing.T) {
	source := newTonapiSource(func(context.Context, string) (*tonapi.NftItem, error) {
		return nil, errors.New("connection reset")
	}, 0)

	_, err := source.Metadata(context.Background(), testAddress(2))
	if !errors.Is(err, raffle.ErrMetadataLookup) {
		t.Fatalf("expected ErrMetadataLookup, got %v", err)
	}
}

func TestNewSource(t *testing.T) {
	store := raffle.MetadataSource(nil)
	if _, err := NewSource("ipfs", store, TonapiConfiguration{}); err == nil {
		t.Fatal("expected unknown source to fail")
	}
	source, err := NewSource(SourceTonapi, store, TonapiConfiguration{RPS: 2})
	if err != nil {
		t.Fatalf("tonapi source: %v", err)
	}
	if _, ok := source.(*TonapiSource); !ok {
		t.Fatalf("expected *TonapiSource, got %T", source)
	}
}
