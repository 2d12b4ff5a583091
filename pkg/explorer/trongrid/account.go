package trongrid

import (
	"context"

	"github.com/tdex-network/tronkit/pkg/address"
)

const getAccountEndpoint = "/wallet/getaccount"

type account struct {
	Address string `json:"address"`
	Balance int64  `json:"balance"`
}

func (s *service) GetBalance(
	ctx context.Context, addr address.Address,
) (int64, error) {
	body, err := s.post(ctx, s.fullNode, getAccountEndpoint, map[string]interface{}{
		"address": addr.String(),
		"visible": true,
	})
	if err != nil {
		return 0, err
	}

	acc := &account{}
	// accounts never activated are returned as empty objects
	found, err := decode(getAccountEndpoint, body, acc)
	if err != nil || !found {
		return 0, err
	}
	return acc.Balance, nil
}
