package trongrid

import (
	"context"
	"errors"

	"github.com/tdex-network/tronkit/pkg/explorer"
	"golang.org/x/sync/errgroup"
)

const (
	getBlockByNumEndpoint   = "/wallet/getblockbynum"
	getBlockByLimitEndpoint = "/wallet/getblockbylimitnext"
	getNowBlockEndpoint     = "/wallet/getnowblock"

	// max number of blocks returned by a single getblockbylimitnext request
	blockRangeChunkSize = 100
)

var (
	errEmptyResponse      = errors.New("empty response")
	errMissingTransaction = errors.New("missing transaction")
)

func (s *service) GetBlockByNumber(
	ctx context.Context, number int64,
) (*explorer.Block, error) {
	body, err := s.post(ctx, s.fullNode, getBlockByNumEndpoint, map[string]int64{
		"num": number,
	})
	if err != nil {
		return nil, err
	}

	block := &explorer.Block{}
	found, err := decode(getBlockByNumEndpoint, body, block)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, explorer.ErrBlockNotFound
	}
	return block, nil
}

// GetBlockRange fetches the blocks in chunks of 100 concurrently and returns
// them in height order.
func (s *service) GetBlockRange(
	ctx context.Context, start, end int64,
) ([]*explorer.Block, error) {
	if start < 0 || start > end {
		return nil, explorer.ErrInvalidBlockRange
	}
	if start == end {
		return []*explorer.Block{}, nil
	}

	numOfChunks := int((end - start + blockRangeChunkSize - 1) / blockRangeChunkSize)
	chunks := make([][]*explorer.Block, numOfChunks)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < numOfChunks; i++ {
		i := i
		chunkStart := start + int64(i)*blockRangeChunkSize
		chunkEnd := chunkStart + blockRangeChunkSize
		if chunkEnd > end {
			chunkEnd = end
		}

		g.Go(func() error {
			blocks, err := s.getBlocks(gctx, chunkStart, chunkEnd)
			if err != nil {
				return err
			}
			chunks[i] = blocks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	blocks := make([]*explorer.Block, 0, end-start)
	for _, chunk := range chunks {
		blocks = append(blocks, chunk...)
	}
	return blocks, nil
}

func (s *service) GetBlockHeight(ctx context.Context) (int64, error) {
	body, err := s.post(ctx, s.fullNode, getNowBlockEndpoint, nil)
	if err != nil {
		return -1, err
	}

	block := &explorer.Block{}
	found, err := decode(getNowBlockEndpoint, body, block)
	if err != nil {
		return -1, err
	}
	if !found {
		return -1, explorer.ErrBlockNotFound
	}
	return block.Number(), nil
}

func (s *service) getBlocks(
	ctx context.Context, start, end int64,
) ([]*explorer.Block, error) {
	body, err := s.post(ctx, s.fullNode, getBlockByLimitEndpoint, map[string]int64{
		"startNum": start,
		"endNum":   end,
	})
	if err != nil {
		return nil, err
	}

	res := &struct {
		Block []*explorer.Block `json:"block"`
	}{}
	if _, err := decode(getBlockByLimitEndpoint, body, res); err != nil {
		return nil, err
	}
	return res.Block, nil
}
