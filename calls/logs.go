package calls

import (
	"context"
	"errors"
	"fmt"

	"github.com/sawtooth-seth/rpc/filters"
	"github.com/sawtooth-seth/rpc/requests"
	"github.com/sawtooth-seth/rpc/types"
)

func logsMethods() []requests.Method {
	return []requests.Method{
		{Name: "eth_newFilter", Handler: newFilter},
		{Name: "eth_newBlockFilter", Handler: newBlockFilter},
		{Name: "eth_newPendingTransactionFilter", Handler: newPendingTransactionFilter},
		{Name: "eth_uninstallFilter", Handler: uninstallFilter},
		{Name: "eth_getFilterChanges", Handler: getFilterChanges},
		{Name: "eth_getFilterLogs", Handler: getFilterLogs},
		{Name: "eth_getLogs", Handler: getLogs},
	}
}

// failure hides err behind summary unless the caller caused it.
func failure(summary string, err error) error {
	if errors.Is(err, types.ErrValidation) || errors.Is(err, types.ErrFilterNotFound) {
		return err
	}
	return requests.Fail(summary, err)
}

func createFilter(ctx context.Context, b *requests.Backend, kind filters.Kind, criteria *filters.Criteria) (interface{}, error) {
	id, err := b.Filters.Create(ctx, kind, criteria, ledgerSource{b})
	if err != nil {
		return nil, requests.Fail("Couldn't create filter", err)
	}
	return id, nil
}

func newFilter(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	var criteria filters.Criteria
	if err := params.Get(0, &criteria); err != nil {
		return nil, err
	}
	if criteria.BlockID != "" {
		return nil, fmt.Errorf("%w: filters cannot watch a single block", types.ErrValidation)
	}
	return createFilter(ctx, b, filters.LogFilter, &criteria)
}

func newBlockFilter(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	return createFilter(ctx, b, filters.BlockFilter, nil)
}

func newPendingTransactionFilter(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	return createFilter(ctx, b, filters.PendingTransactionFilter, nil)
}

func filterID(params requests.Params) (string, error) {
	var id string
	err := params.Get(0, &id)
	return id, err
}

func uninstallFilter(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	id, err := filterID(params)
	if err != nil {
		return nil, err
	}
	return b.Filters.Remove(id), nil
}

func getFilterChanges(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	id, err := filterID(params)
	if err != nil {
		return nil, err
	}
	changes, err := b.Filters.Poll(ctx, id, ledgerSource{b})
	if err != nil {
		return nil, failure("Couldn't get filter changes", err)
	}
	return changes, nil
}

func getFilterLogs(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	id, err := filterID(params)
	if err != nil {
		return nil, err
	}
	logs, err := b.Filters.Logs(ctx, id, ledgerSource{b})
	if err != nil {
		return nil, failure("Couldn't get filter logs", err)
	}
	return logs, nil
}

func getLogs(ctx context.Context, b *requests.Backend, params requests.Params) (interface{}, error) {
	var criteria filters.Criteria
	if err := params.Get(0, &criteria); err != nil {
		return nil, err
	}
	logs, err := filters.Query(ctx, &criteria, ledgerSource{b})
	if err != nil {
		return nil, failure("Couldn't get logs", err)
	}
	return logs, nil
}
