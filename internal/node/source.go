package node

import (
	"context"

	"fanlink/internal/chain"
	"fanlink/internal/fanapi"
)

// The trigger polls through these instead of Execute so it gets typed
// results without the per-item envelope.

// LatestBlock returns the current head block without transaction bodies
func (n *Node) LatestBlock(ctx context.Context, creds Credentials) (*chain.Block, error) {
	t, err := n.resolve(creds)
	if err != nil {
		return nil, err
	}
	return n.chainClient(t).GetBlockByNumber(ctx, "latest", false)
}

// ActivePolls lists the partner API's current polls
func (n *Node) ActivePolls(ctx context.Context, creds Credentials) ([]fanapi.Poll, error) {
	t, err := n.resolve(creds)
	if err != nil {
		return nil, err
	}
	fan, err := n.partnerClient(t)
	if err != nil {
		return nil, err
	}
	return fan.ListPolls(ctx, fanapi.ListOpts{})
}

// AvailableRewards lists the partner API's current rewards
func (n *Node) AvailableRewards(ctx context.Context, creds Credentials) ([]fanapi.Reward, error) {
	t, err := n.resolve(creds)
	if err != nil {
		return nil, err
	}
	fan, err := n.partnerClient(t)
	if err != nil {
		return nil, err
	}
	return fan.ListRewards(ctx, fanapi.ListOpts{})
}
