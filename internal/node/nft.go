package node

import (
	"context"
	"fmt"

	"fanlink/internal/abi"
	"fanlink/internal/chain"
	"fanlink/internal/registry"
)

func (n *Node) execNFT(ctx context.Context, t *target, op string, params map[string]interface{}) (*result, error) {
	tok, err := n.lookupNFT(t, params)
	if err != nil {
		return nil, err
	}

	switch op {
	case "getBalance":
		owner, err := requireAddress(params, "address")
		if err != nil {
			return nil, err
		}
		out, err := n.nftCall(ctx, t, tok.Address, "balanceOf", owner)
		if err != nil {
			return nil, err
		}
		balance, err := abi.DecodeUint256(out)
		if err != nil {
			return nil, fmt.Errorf("decoding balanceOf result: %w", err)
		}
		return okResult(map[string]interface{}{
			"network": t.network.Name,
			"token":   tok.Address,
			"address": owner,
			"balance": balance.String(),
		})

	case "getOwner":
		tokenID, err := requireStr(params, "tokenId")
		if err != nil {
			return nil, err
		}
		out, err := n.nftCall(ctx, t, tok.Address, "ownerOf", tokenID)
		if err != nil {
			return nil, err
		}
		owner, err := abi.DecodeAddress(out)
		if err != nil {
			return nil, fmt.Errorf("decoding ownerOf result: %w", err)
		}
		return okResult(map[string]interface{}{
			"network": t.network.Name,
			"token":   tok.Address,
			"tokenId": tokenID,
			"owner":   owner,
		})

	case "getTokenUri":
		tokenID, err := requireStr(params, "tokenId")
		if err != nil {
			return nil, err
		}
		out, err := n.nftCall(ctx, t, tok.Address, "tokenURI", tokenID)
		if err != nil {
			return nil, err
		}
		uri, err := abi.DecodeString(out)
		if err != nil {
			return nil, fmt.Errorf("decoding tokenURI result: %w", err)
		}
		return okResult(map[string]interface{}{
			"network":  t.network.Name,
			"token":    tok.Address,
			"tokenId":  tokenID,
			"tokenUri": uri,
		})

	case "transfer":
		from, err := requireAddress(params, "from")
		if err != nil {
			return nil, err
		}
		to, err := requireAddress(params, "to")
		if err != nil {
			return nil, err
		}
		tokenID, err := requireStr(params, "tokenId")
		if err != nil {
			return nil, err
		}
		data, err := abi.EncodeCall("safeTransferFrom", from, to, tokenID)
		if err != nil {
			return nil, validationErr("%v", err)
		}
		return okResult(map[string]interface{}{
			"network": t.network.Name,
			"to":      tok.Address,
			"data":    data,
			"value":   "0x0",
			"signed":  false,
		}, transferStubNote)

	default:
		return nil, unknownOperation("nft", op)
	}
}

func (n *Node) lookupNFT(t *target, params map[string]interface{}) (registry.Token, error) {
	tok, err := n.lookupToken(t, params)
	if err != nil {
		return registry.Token{}, err
	}
	if tok.Registered && tok.Standard != registry.StandardERC721 {
		return registry.Token{}, validationErr("token %q is registered as %s, not an NFT contract", tok.Symbol, tok.Standard)
	}
	return tok, nil
}

func (n *Node) nftCall(ctx context.Context, t *target, contract, fn string, args ...string) (string, error) {
	data, err := abi.EncodeCall(fn, args...)
	if err != nil {
		return "", validationErr("%v", err)
	}
	return n.chainClient(t).CallContract(ctx, chain.CallMsg{To: contract, Data: data}, "latest")
}
