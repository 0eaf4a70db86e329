package feed

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/mcdexio/dsc-engine/common/logging"
)

// latestRoundData() selector.
var latestRoundDataSelector = common.FromHex("0xfeaf968c")

// two256 is 2^256, used to decode the int256 answer word.
var two256 = new(big.Int).Lsh(big.NewInt(1), 256)

// Chainlink reads the latest round of an on-chain aggregator. Answers are
// returned exactly as reported; an 8-decimal aggregator is assumed.
type Chainlink struct {
	client     *ethclient.Client
	aggregator common.Address
	logger     logging.Logger
}

// NewChainlink dials nothing; the caller supplies a connected client.
func NewChainlink(client *ethclient.Client, aggregator common.Address, logger logging.Logger) (*Chainlink, error) {
	if client == nil {
		return nil, fmt.Errorf("feed: nil eth client")
	}
	if aggregator == (common.Address{}) {
		return nil, fmt.Errorf("feed: zero aggregator address")
	}
	return &Chainlink{client: client, aggregator: aggregator, logger: logger}, nil
}

// LatestAnswer calls latestRoundData on the aggregator and returns the
// answer word.
func (f *Chainlink) LatestAnswer(ctx context.Context) (*big.Int, error) {
	ctx30, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	out, err := f.client.CallContract(ctx30, ethereum.CallMsg{
		To:   &f.aggregator,
		Data: latestRoundDataSelector,
	}, nil)
	if err != nil {
		if f.logger != nil {
			f.logger.Error("aggregator %s call failed err=%s", f.aggregator.Hex(), err)
		}
		return nil, err
	}
	return parseRoundData(out)
}

// parseRoundData decodes the five-word latestRoundData return payload and
// extracts the signed answer from the second word.
func parseRoundData(out []byte) (*big.Int, error) {
	if len(out) < 160 {
		return nil, fmt.Errorf("feed: short latestRoundData payload (%d bytes)", len(out))
	}
	answer := new(big.Int).SetBytes(out[32:64])
	if answer.Bit(255) == 1 {
		answer.Sub(answer, two256)
	}
	return answer, nil
}
