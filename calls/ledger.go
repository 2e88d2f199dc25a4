package calls

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sawtooth-seth/rpc/filters"
	"github.com/sawtooth-seth/rpc/messages"
	"github.com/sawtooth-seth/rpc/requests"
	"github.com/sawtooth-seth/rpc/transactions"
	"github.com/sawtooth-seth/rpc/transform"
	"github.com/sawtooth-seth/rpc/types"
)

func notFound(err error) bool {
	return errors.Is(err, types.ErrNotFound)
}

// headBlock returns the block at the head of the chain.
func headBlock(ctx context.Context, b *requests.Backend) (*types.Block, *types.BlockHeader, error) {
	var resp messages.ClientBlockListResponsePayload
	err := b.Client.Request(ctx,
		messages.ClientBlockListRequest, &messages.ClientBlockListRequestPayload{Paging: messages.ClientPagingControls{Limit: 1}},
		messages.ClientBlockListResponse, &resp)
	if err != nil {
		return nil, nil, err
	}
	if err := resp.Status.Err(); err != nil {
		return nil, nil, err
	}
	if len(resp.Blocks) == 0 {
		return nil, nil, fmt.Errorf("validator listed no blocks: %w", types.ErrNotFound)
	}
	header, err := resp.Blocks[0].DecodeHeader()
	if err != nil {
		return nil, nil, err
	}
	return resp.Blocks[0], header, nil
}

func headNumber(ctx context.Context, b *requests.Backend) (uint64, error) {
	_, header, err := headBlock(ctx, b)
	if err != nil {
		return 0, err
	}
	return header.BlockNum, nil
}

// getBlock runs one of the block lookups. A missing block is nil without
// error.
func getBlock(ctx context.Context, b *requests.Backend, reqType messages.MessageType, req interface{}) (*types.Block, error) {
	var resp messages.ClientBlockGetResponsePayload
	if err := b.Client.Request(ctx, reqType, req, messages.ClientBlockGetResponse, &resp); err != nil {
		return nil, err
	}
	if err := resp.Status.Err(); err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return resp.Block, nil
}

func blockByNumber(ctx context.Context, b *requests.Backend, n uint64) (*types.Block, error) {
	return getBlock(ctx, b, messages.ClientBlockGetByNumRequest, &messages.ClientBlockGetByNumRequestPayload{BlockNum: n})
}

func blockByID(ctx context.Context, b *requests.Backend, id string) (*types.Block, error) {
	return getBlock(ctx, b, messages.ClientBlockGetByIDRequest, &messages.ClientBlockGetByIDRequestPayload{BlockID: id})
}

func blockByTransaction(ctx context.Context, b *requests.Backend, txID string) (*types.Block, error) {
	return getBlock(ctx, b, messages.ClientBlockGetByTransactionIDRequest, &messages.ClientBlockGetByTransactionIDRequestPayload{TransactionID: txID})
}

func blockByTag(ctx context.Context, b *requests.Backend, n rpc.BlockNumber) (*types.Block, error) {
	if transform.IsHead(n) {
		block, _, err := headBlock(ctx, b)
		return block, err
	}
	return blockByNumber(ctx, b, transform.ResolveBlockNumber(n, 0))
}

// stateRootAt returns the state root to read for n, empty for the head.
func stateRootAt(ctx context.Context, b *requests.Backend, n rpc.BlockNumber) (string, error) {
	if transform.IsHead(n) {
		return "", nil
	}
	block, err := blockByNumber(ctx, b, transform.ResolveBlockNumber(n, 0))
	if err != nil {
		return "", err
	}
	if block == nil {
		return "", fmt.Errorf("block %d: %w", n, types.ErrNotFound)
	}
	header, err := block.DecodeHeader()
	if err != nil {
		return "", err
	}
	return header.StateRootHash, nil
}

// getEntry reads the EVM entry of address. Accounts that do not exist are
// nil without error.
func getEntry(ctx context.Context, b *requests.Backend, address common.Address, n rpc.BlockNumber) (*types.EvmEntry, error) {
	stateRoot, err := stateRootAt(ctx, b, n)
	if err != nil {
		return nil, err
	}
	var resp messages.ClientStateGetResponsePayload
	err = b.Client.Request(ctx,
		messages.ClientStateGetRequest, &messages.ClientStateGetRequestPayload{StateRoot: stateRoot, Address: b.Addresses.Record(address)},
		messages.ClientStateGetResponse, &resp)
	if err != nil {
		return nil, err
	}
	if err := resp.Status.Err(); err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(resp.Value) == 0 {
		return nil, nil
	}
	return types.DecodeEvmEntry(resp.Value)
}

func getAccount(ctx context.Context, b *requests.Backend, address common.Address, n rpc.BlockNumber) (*types.EvmStateAccount, error) {
	entry, err := getEntry(ctx, b, address, n)
	if err != nil || entry == nil || entry.Account == nil {
		return nil, err
	}
	return entry.Account, nil
}

// getTransaction returns nil for unknown transactions.
func getTransaction(ctx context.Context, b *requests.Backend, txID string) (*types.Transaction, error) {
	var resp messages.ClientTransactionGetResponsePayload
	err := b.Client.Request(ctx,
		messages.ClientTransactionGetRequest, &messages.ClientTransactionGetRequestPayload{TransactionID: txID},
		messages.ClientTransactionGetResponse, &resp)
	if err != nil {
		return nil, err
	}
	if err := resp.Status.Err(); err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return resp.Transaction, nil
}

// getReceipts returns nil when any of the receipts is unknown.
func getReceipts(ctx context.Context, b *requests.Backend, txIDs []string) ([]*types.TransactionReceipt, error) {
	if len(txIDs) == 0 {
		return nil, nil
	}
	var resp messages.ClientReceiptGetResponsePayload
	err := b.Client.Request(ctx,
		messages.ClientReceiptGetRequest, &messages.ClientReceiptGetRequestPayload{TransactionIDs: txIDs},
		messages.ClientReceiptGetResponse, &resp)
	if err != nil {
		return nil, err
	}
	if err := resp.Status.Err(); err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return resp.Receipts, nil
}

func blockReceipts(ctx context.Context, b *requests.Backend, block *types.Block) ([]*types.TransactionReceipt, error) {
	txs := block.Transactions()
	ids := make([]string, len(txs))
	for i, tx := range txs {
		ids[i] = tx.HeaderSignature
	}
	return getReceipts(ctx, b, ids)
}

func submit(ctx context.Context, b *requests.Backend, signed *transactions.Signed) error {
	var resp messages.ClientBatchSubmitResponsePayload
	err := b.Client.Request(ctx,
		messages.ClientBatchSubmitRequest, &messages.ClientBatchSubmitRequestPayload{Batches: []*types.Batch{signed.Batch}},
		messages.ClientBatchSubmitResponse, &resp)
	if err != nil {
		return err
	}
	return resp.Status.Err()
}

// ledgerSource serves filters from the validator.
type ledgerSource struct {
	b *requests.Backend
}

var _ filters.Source = ledgerSource{}

func (s ledgerSource) HeadNumber(ctx context.Context) (uint64, error) {
	return headNumber(ctx, s.b)
}

func (s ledgerSource) Logs(ctx context.Context, from, to uint64, c *filters.Criteria) ([]*transform.Log, error) {
	logs := []*transform.Log{}
	if c.BlockID != "" {
		block, err := blockByID(ctx, s.b, c.BlockID)
		if err != nil || block == nil {
			return logs, err
		}
		return s.blockLogs(ctx, block, c, logs)
	}
	if to >= from && to-from >= filters.MaxLogRange {
		return nil, fmt.Errorf("%w: block range exceeds %d blocks", types.ErrValidation, filters.MaxLogRange)
	}
	for n := from; n <= to; n++ {
		block, err := blockByNumber(ctx, s.b, n)
		if err != nil {
			return nil, err
		}
		if block == nil {
			break
		}
		if logs, err = s.blockLogs(ctx, block, c, logs); err != nil {
			return nil, err
		}
	}
	return logs, nil
}

func (s ledgerSource) blockLogs(ctx context.Context, block *types.Block, c *filters.Criteria, logs []*transform.Log) ([]*transform.Log, error) {
	header, err := block.DecodeHeader()
	if err != nil {
		return nil, err
	}
	receipts, err := blockReceipts(ctx, s.b, block)
	if err != nil {
		return nil, err
	}
	var index uint64
	for _, receipt := range receipts {
		loc, _ := transform.Locate(block, header, receipt.TransactionID)
		receiptLogs, err := transform.NewLogs(receipt, loc, index)
		if err != nil {
			return nil, err
		}
		index += uint64(len(receiptLogs))
		for _, log := range receiptLogs {
			if c.Matches(log) {
				logs = append(logs, log)
			}
		}
	}
	return logs, nil
}

func (s ledgerSource) BlockIDs(ctx context.Context, from, to uint64) ([]string, error) {
	var ids []string
	for n := from; n <= to; n++ {
		block, err := blockByNumber(ctx, s.b, n)
		if err != nil {
			return nil, err
		}
		if block == nil {
			break
		}
		ids = append(ids, block.HeaderSignature)
	}
	return ids, nil
}
