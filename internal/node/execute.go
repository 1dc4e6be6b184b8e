package node

import (
	"context"
	"encoding/json"
	"time"
)

// Execute runs the request's items in order. A failed item stops the
// batch unless continueOnFail is set, in which case later items still
// run and report their own outcomes.
func (n *Node) Execute(ctx context.Context, req ExecuteRequest) ExecuteResponse {
	resp := ExecuteResponse{Results: make([]ItemResult, 0, len(req.Items))}

	t, err := n.resolve(req.Credentials)
	if err != nil {
		// Nothing can run without resolved endpoints, so every item
		// reports the same failure.
		opErr := classify(err)
		for range req.Items {
			resp.Results = append(resp.Results, ItemResult{OK: false, Error: opErr})
		}
		return resp
	}

	for _, item := range req.Items {
		res := n.runItem(ctx, t, item)
		resp.Results = append(resp.Results, res)
		if !res.OK && !req.ContinueOnFail {
			break
		}
	}
	return resp
}

func (n *Node) runItem(ctx context.Context, t *target, item ExecuteItem) ItemResult {
	start := time.Now()

	if timeout := n.cfg.GetRequestTimeoutDuration(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res, err := n.dispatch(ctx, t, item)
	if err != nil {
		opErr := classify(err)
		n.logger.Debug().
			Str("resource", item.Resource).
			Str("operation", item.Operation).
			Str("kind", opErr.Kind).
			Dur("took", time.Since(start)).
			Msg("operation failed")
		return ItemResult{OK: false, Error: opErr}
	}

	data, err := json.Marshal(res.data)
	if err != nil {
		return ItemResult{OK: false, Error: &OpError{Kind: KindInternal, Message: "failed to encode result", Detail: err.Error()}}
	}

	notes := res.notes
	if n.transforms.Has(item.Resource, item.Operation) {
		transformed, applied, terr := n.transforms.Apply(ctx, item.Resource, item.Operation, data, hookParams(t, item))
		if terr != nil {
			notes = append(notes, "transform hook failed, returning untransformed result: "+terr.Error())
		} else if applied {
			data = transformed
		}
	}

	n.logger.Debug().
		Str("resource", item.Resource).
		Str("operation", item.Operation).
		Dur("took", time.Since(start)).
		Msg("operation completed")
	return ItemResult{OK: true, Data: data, Notes: notes}
}

// hookParams is what a transform script sees as its second argument
func hookParams(t *target, item ExecuteItem) map[string]interface{} {
	params := make(map[string]interface{}, len(item.Params)+3)
	for k, v := range item.Params {
		params[k] = v
	}
	params["network"] = t.network.Name
	params["resource"] = item.Resource
	params["operation"] = item.Operation
	return params
}

func (n *Node) dispatch(ctx context.Context, t *target, item ExecuteItem) (*result, error) {
	switch item.Resource {
	case "fanToken":
		return n.execFanToken(ctx, t, item.Operation, item.Params)
	case "account":
		return n.execAccount(ctx, t, item.Operation, item.Params)
	case "transaction":
		return n.execTransaction(ctx, t, item.Operation, item.Params)
	case "contract":
		return n.execContract(ctx, t, item.Operation, item.Params)
	case "poll":
		return n.execPoll(ctx, t, item.Operation, item.Params)
	case "reward":
		return n.execReward(ctx, t, item.Operation, item.Params)
	case "nft":
		return n.execNFT(ctx, t, item.Operation, item.Params)
	case "network":
		return n.execNetwork(ctx, t, item.Operation, item.Params)
	case "event":
		return n.execEvent(ctx, t, item.Operation, item.Params)
	case "utility":
		return n.execUtility(ctx, t, item.Operation, item.Params)
	default:
		return nil, validationErr("unknown resource %q", item.Resource)
	}
}

func unknownOperation(resource, op string) error {
	return validationErr("unknown operation %q for resource %q", op, resource)
}
