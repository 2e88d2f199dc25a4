package transform

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/sawtooth-seth/rpc/types"
)

// The ledger has no gas market, mining or uncles. These stand in for the
// Ethereum fields it cannot supply.
var (
	DefaultGasPrice   = big.NewInt(0)
	DefaultDifficulty = big.NewInt(0)
)

// Location places a transaction inside a committed block.
type Location struct {
	BlockID     string
	BlockNumber uint64
	Index       uint64
}

// Locate finds txID in block.
func Locate(block *types.Block, header *types.BlockHeader, txID string) (Location, bool) {
	for i, tx := range block.Transactions() {
		if strings.EqualFold(tx.HeaderSignature, txID) {
			return Location{BlockID: block.HeaderSignature, BlockNumber: header.BlockNum, Index: uint64(i)}, true
		}
	}
	return Location{}, false
}

type Log struct {
	Removed          bool           `json:"removed"`
	LogIndex         hexutil.Uint64 `json:"logIndex"`
	TransactionIndex hexutil.Uint64 `json:"transactionIndex"`
	TransactionHash  string         `json:"transactionHash"`
	BlockHash        string         `json:"blockHash"`
	BlockNumber      hexutil.Uint64 `json:"blockNumber"`
	Address          common.Address `json:"address"`
	Data             hexutil.Bytes  `json:"data"`
	Topics           []common.Hash  `json:"topics"`
}

type Transaction struct {
	Hash             string          `json:"hash"`
	Nonce            hexutil.Uint64  `json:"nonce"`
	BlockHash        *string         `json:"blockHash"`
	BlockNumber      *hexutil.Uint64 `json:"blockNumber"`
	TransactionIndex *hexutil.Uint64 `json:"transactionIndex"`
	From             common.Address  `json:"from"`
	To               *common.Address `json:"to"`
	Value            *hexutil.Big    `json:"value"`
	GasPrice         *hexutil.Big    `json:"gasPrice"`
	Gas              hexutil.Uint64  `json:"gas"`
	Input            hexutil.Bytes   `json:"input"`
	V                *hexutil.Big    `json:"v"`
	R                *hexutil.Big    `json:"r"`
	S                *hexutil.Big    `json:"s"`
}

type Receipt struct {
	TransactionHash   string          `json:"transactionHash"`
	TransactionIndex  hexutil.Uint64  `json:"transactionIndex"`
	BlockHash         string          `json:"blockHash"`
	BlockNumber       hexutil.Uint64  `json:"blockNumber"`
	From              common.Address  `json:"from"`
	To                *common.Address `json:"to"`
	CumulativeGasUsed hexutil.Uint64  `json:"cumulativeGasUsed"`
	GasUsed           hexutil.Uint64  `json:"gasUsed"`
	ContractAddress   *common.Address `json:"contractAddress"`
	Logs              []*Log          `json:"logs"`
	LogsBloom         ethtypes.Bloom  `json:"logsBloom"`
	Status            hexutil.Uint64  `json:"status"`
	ReturnValue       hexutil.Bytes   `json:"returnValue"`
}

type Block struct {
	Number           hexutil.Uint64      `json:"number"`
	Hash             string              `json:"hash"`
	ParentHash       string              `json:"parentHash"`
	Nonce            ethtypes.BlockNonce `json:"nonce"`
	Sha3Uncles       common.Hash         `json:"sha3Uncles"`
	LogsBloom        ethtypes.Bloom      `json:"logsBloom"`
	TransactionsRoot common.Hash         `json:"transactionsRoot"`
	StateRoot        string              `json:"stateRoot"`
	ReceiptsRoot     common.Hash         `json:"receiptsRoot"`
	Miner            common.Address      `json:"miner"`
	Difficulty       *hexutil.Big        `json:"difficulty"`
	TotalDifficulty  *hexutil.Big        `json:"totalDifficulty"`
	ExtraData        hexutil.Bytes       `json:"extraData"`
	Size             hexutil.Uint64      `json:"size"`
	GasLimit         hexutil.Uint64      `json:"gasLimit"`
	GasUsed          hexutil.Uint64      `json:"gasUsed"`
	Timestamp        hexutil.Uint64      `json:"timestamp"`
	// Transactions holds ids, or *Transaction values for full blocks.
	Transactions []interface{} `json:"transactions"`
	Uncles       []common.Hash `json:"uncles"`
}

// NewLogs extracts the EVM logs of a receipt. Log indexes start at
// firstIndex.
func NewLogs(receipt *types.TransactionReceipt, loc Location, firstIndex uint64) ([]*Log, error) {
	logs := []*Log{}
	for _, event := range receipt.Events {
		if event.EventType != types.LogEventType {
			continue
		}
		var data types.SethLogData
		if err := data.Unmarshal(event.Data); err != nil {
			return nil, fmt.Errorf("log event of %s: %w", receipt.TransactionID, err)
		}
		attr, ok := event.Attribute(types.LogEventAddress)
		if !ok && len(data.Address) == common.AddressLength {
			attr, ok = common.BytesToAddress(data.Address).Hex(), true
		}
		if !ok || !common.IsHexAddress(attr) {
			return nil, fmt.Errorf("log event of %s has no valid address", receipt.TransactionID)
		}
		topics := data.Topics
		if topics == nil {
			topics = []common.Hash{}
		}
		logs = append(logs, &Log{
			LogIndex:         hexutil.Uint64(firstIndex + uint64(len(logs))),
			TransactionIndex: hexutil.Uint64(loc.Index),
			TransactionHash:  EncodeID(receipt.TransactionID),
			BlockHash:        EncodeID(loc.BlockID),
			BlockNumber:      hexutil.Uint64(loc.BlockNumber),
			Address:          common.HexToAddress(attr),
			Data:             data.Data,
			Topics:           topics,
		})
	}
	return logs, nil
}

// NewTransaction converts a ledger transaction. loc is nil for transactions
// not yet committed.
func NewTransaction(tx *types.Transaction, loc *Location) (*Transaction, error) {
	header, err := tx.DecodeHeader()
	if err != nil {
		return nil, fmt.Errorf("transaction %s header: %w", tx.HeaderSignature, err)
	}
	payload, err := tx.DecodePayload()
	if err != nil {
		return nil, fmt.Errorf("transaction %s payload: %w", tx.HeaderSignature, err)
	}
	from, err := PublicKeyToAddress(header.SignerPublicKey)
	if err != nil {
		return nil, fmt.Errorf("transaction %s signer: %w", tx.HeaderSignature, err)
	}
	r, s := splitSignature(tx.HeaderSignature)
	out := &Transaction{
		Hash:     EncodeID(tx.HeaderSignature),
		Nonce:    hexutil.Uint64(payload.Nonce),
		From:     from,
		To:       toAddress(payload.To),
		Value:    (*hexutil.Big)(orZero(payload.Value)),
		GasPrice: (*hexutil.Big)(DefaultGasPrice),
		Gas:      hexutil.Uint64(payload.GasLimit),
		Input:    payload.Data,
		V:        (*hexutil.Big)(new(big.Int)),
		R:        (*hexutil.Big)(r),
		S:        (*hexutil.Big)(s),
	}
	if out.Input == nil {
		out.Input = hexutil.Bytes{}
	}
	if loc != nil {
		blockHash := EncodeID(loc.BlockID)
		number, index := hexutil.Uint64(loc.BlockNumber), hexutil.Uint64(loc.Index)
		out.BlockHash, out.BlockNumber, out.TransactionIndex = &blockHash, &number, &index
	}
	return out, nil
}

// NewReceipt combines a ledger receipt with the transaction it belongs to.
// The ledger does not track cumulative gas, so it equals the gas used. When
// the receipt of a contract creation omits the new address, it is recovered
// from the transaction outputs through book, which may be nil.
func NewReceipt(receipt *types.TransactionReceipt, tx *types.Transaction, loc Location, book *AddressBook) (*Receipt, error) {
	sethReceipt, err := receipt.SethReceipt()
	if err != nil {
		return nil, fmt.Errorf("receipt %s: %w", receipt.TransactionID, err)
	}
	converted, err := NewTransaction(tx, &loc)
	if err != nil {
		return nil, err
	}
	logs, err := NewLogs(receipt, loc, 0)
	if err != nil {
		return nil, err
	}
	out := &Receipt{
		TransactionHash:   EncodeID(receipt.TransactionID),
		TransactionIndex:  hexutil.Uint64(loc.Index),
		BlockHash:         EncodeID(loc.BlockID),
		BlockNumber:       hexutil.Uint64(loc.BlockNumber),
		From:              converted.From,
		To:                converted.To,
		CumulativeGasUsed: hexutil.Uint64(sethReceipt.GasUsed),
		GasUsed:           hexutil.Uint64(sethReceipt.GasUsed),
		Logs:              logs,
		LogsBloom:         Bloom(logs),
		Status:            1,
		ReturnValue:       sethReceipt.ReturnValue,
	}
	if converted.To == nil {
		out.ContractAddress = toAddress(sethReceipt.ContractAddress)
	}
	if converted.To == nil && out.ContractAddress == nil {
		header, err := tx.DecodeHeader()
		if err != nil {
			return nil, fmt.Errorf("transaction %s header: %w", tx.HeaderSignature, err)
		}
		if created, ok := book.FirstRecorded(header.Outputs, converted.From); ok {
			out.ContractAddress = &created
		}
	}
	if out.ReturnValue == nil {
		out.ReturnValue = hexutil.Bytes{}
	}
	return out, nil
}

// NewBlock converts a ledger block. receipts, when given, feed the bloom
// filter and gas totals.
func NewBlock(block *types.Block, receipts []*types.TransactionReceipt, full bool, gasLimit uint64) (*Block, error) {
	header, err := block.DecodeHeader()
	if err != nil {
		return nil, fmt.Errorf("block %s header: %w", block.HeaderSignature, err)
	}
	miner, err := PublicKeyToAddress(header.SignerPublicKey)
	if err != nil {
		return nil, fmt.Errorf("block %s signer: %w", block.HeaderSignature, err)
	}
	out := &Block{
		Number:           hexutil.Uint64(header.BlockNum),
		Hash:             EncodeID(block.HeaderSignature),
		ParentHash:       EncodeID(header.PreviousBlockID),
		Sha3Uncles:       ethtypes.EmptyUncleHash,
		TransactionsRoot: ethtypes.EmptyRootHash,
		StateRoot:        "0x" + strings.ToLower(header.StateRootHash),
		ReceiptsRoot:     ethtypes.EmptyRootHash,
		Miner:            miner,
		Difficulty:       (*hexutil.Big)(DefaultDifficulty),
		TotalDifficulty:  (*hexutil.Big)(DefaultDifficulty),
		ExtraData:        header.Consensus,
		Size:             hexutil.Uint64(len(types.MustEncode(block))),
		GasLimit:         hexutil.Uint64(gasLimit),
		Transactions:     []interface{}{},
		Uncles:           []common.Hash{},
	}
	if out.ExtraData == nil {
		out.ExtraData = hexutil.Bytes{}
	}
	for i, tx := range block.Transactions() {
		if !full {
			out.Transactions = append(out.Transactions, EncodeID(tx.HeaderSignature))
			continue
		}
		loc := &Location{BlockID: block.HeaderSignature, BlockNumber: header.BlockNum, Index: uint64(i)}
		converted, err := NewTransaction(tx, loc)
		if err != nil {
			return nil, err
		}
		out.Transactions = append(out.Transactions, converted)
	}
	var logs []*Log
	for _, receipt := range receipts {
		sethReceipt, err := receipt.SethReceipt()
		if err != nil {
			return nil, fmt.Errorf("receipt %s: %w", receipt.TransactionID, err)
		}
		out.GasUsed += hexutil.Uint64(sethReceipt.GasUsed)
		loc, _ := Locate(block, header, receipt.TransactionID)
		receiptLogs, err := NewLogs(receipt, loc, uint64(len(logs)))
		if err != nil {
			return nil, err
		}
		logs = append(logs, receiptLogs...)
	}
	out.LogsBloom = Bloom(logs)
	return out, nil
}

// Bloom computes the logs bloom of logs.
func Bloom(logs []*Log) ethtypes.Bloom {
	var bloom ethtypes.Bloom
	for _, log := range logs {
		bloom.Add(log.Address.Bytes())
		for _, topic := range log.Topics {
			bloom.Add(topic.Bytes())
		}
	}
	return bloom
}

func toAddress(b []byte) *common.Address {
	if len(b) != common.AddressLength {
		return nil
	}
	address := common.BytesToAddress(b)
	return &address
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

// splitSignature reads the r and s halves of a compact header signature.
func splitSignature(signature string) (*big.Int, *big.Int) {
	b, err := hex.DecodeString(signature)
	if err != nil || len(b) != IDLength {
		return new(big.Int), new(big.Int)
	}
	return new(big.Int).SetBytes(b[:32]), new(big.Int).SetBytes(b[32:])
}
