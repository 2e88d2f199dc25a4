package transform_test

import (
	"encoding/hex"
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sawtooth-seth/rpc/transform"
	"github.com/sawtooth-seth/rpc/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	blockID = strings.Repeat("b1", transform.IDLength)
	txID    = strings.Repeat("c2", transform.IDLength)
	logger  = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	topic   = common.HexToHash("0x01")
)

func fixture(t *testing.T) (*types.Block, *types.TransactionReceipt, common.Address) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	publicKey := hex.EncodeToString(crypto.CompressPubkey(&key.PublicKey))
	to := common.HexToAddress("0x00000000000000000000000000000000000000bb")

	tx := &types.Transaction{
		Header: types.MustEncode(&types.TransactionHeader{
			FamilyName:      types.FamilyName,
			FamilyVersion:   types.FamilyVersion,
			SignerPublicKey: publicKey,
		}),
		HeaderSignature: txID,
		Payload: types.MustEncode(&types.SethTransaction{
			Type:     types.SethMessageCall,
			To:       to.Bytes(),
			Nonce:    3,
			GasLimit: 90000,
			Value:    big.NewInt(7),
			Data:     []byte{0x01, 0x02},
		}),
	}
	block := &types.Block{
		Header: types.MustEncode(&types.BlockHeader{
			BlockNum:        5,
			PreviousBlockID: strings.Repeat("a0", transform.IDLength),
			SignerPublicKey: publicKey,
			StateRootHash:   strings.Repeat("d3", 32),
		}),
		HeaderSignature: blockID,
		Batches:         []*types.Batch{{Transactions: []*types.Transaction{tx}}},
	}
	receipt := &types.TransactionReceipt{
		TransactionID: txID,
		Events: []*types.Event{
			{EventType: "unrelated"},
			{
				EventType:  types.LogEventType,
				Attributes: []*types.EventAttribute{{Key: types.LogEventAddress, Value: logger.Hex()}},
				Data:       types.MustEncode(&types.SethLogData{Topics: []common.Hash{topic}, Data: []byte{0xff}}),
			},
		},
		Data: [][]byte{types.MustEncode(&types.SethTransactionReceipt{GasUsed: 21000, ReturnValue: []byte{0x2a}})},
	}
	return block, receipt, crypto.PubkeyToAddress(key.PublicKey)
}

func TestNewBlock(t *testing.T) {
	block, receipt, signer := fixture(t)

	out, err := transform.NewBlock(block, []*types.TransactionReceipt{receipt}, false, 90000)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), uint64(out.Number))
	assert.Equal(t, "0x"+blockID, out.Hash)
	assert.Equal(t, signer, out.Miner)
	assert.Equal(t, uint64(21000), uint64(out.GasUsed))
	assert.Equal(t, uint64(90000), uint64(out.GasLimit))
	assert.Equal(t, []interface{}{"0x" + txID}, out.Transactions)
	assert.True(t, out.LogsBloom.Test(logger.Bytes()))
	assert.True(t, out.LogsBloom.Test(topic.Bytes()))

	b, err := json.Marshal(out)
	require.NoError(t, err)
	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &fields))
	assert.Equal(t, "0x0000000000000000", fields["nonce"])
	assert.Equal(t, "0x0", fields["difficulty"])
	assert.Equal(t, "0x0", fields["timestamp"])
	assert.Equal(t, []interface{}{}, fields["uncles"])
	assert.Equal(t, "0x"+strings.Repeat("d3", 32), fields["stateRoot"])
}

func TestNewBlockFull(t *testing.T) {
	block, _, signer := fixture(t)

	out, err := transform.NewBlock(block, nil, true, 90000)
	require.NoError(t, err)
	require.Len(t, out.Transactions, 1)
	tx, ok := out.Transactions[0].(*transform.Transaction)
	require.True(t, ok)
	assert.Equal(t, signer, tx.From)
	assert.Equal(t, "0x"+blockID, *tx.BlockHash)
	assert.Equal(t, uint64(0), uint64(*tx.TransactionIndex))
	assert.Equal(t, uint64(0), uint64(out.GasUsed))
}

func TestNewTransaction(t *testing.T) {
	block, _, signer := fixture(t)
	tx := block.Transactions()[0]

	out, err := transform.NewTransaction(tx, nil)
	require.NoError(t, err)
	assert.Equal(t, "0x"+txID, out.Hash)
	assert.Equal(t, signer, out.From)
	require.NotNil(t, out.To)
	assert.Equal(t, common.HexToAddress("0xbb"), *out.To)
	assert.Equal(t, uint64(3), uint64(out.Nonce))
	assert.Equal(t, int64(7), out.Value.ToInt().Int64())
	assert.Equal(t, int64(0), out.GasPrice.ToInt().Int64())
	assert.Nil(t, out.BlockHash)
	assert.Equal(t, 0, new(big.Int).SetBytes(common.FromHex(strings.Repeat("c2", 32))).Cmp(out.R.ToInt()))
}

func TestNewReceipt(t *testing.T) {
	block, receipt, signer := fixture(t)
	header, err := block.DecodeHeader()
	require.NoError(t, err)
	loc, ok := transform.Locate(block, header, strings.ToUpper(txID))
	require.True(t, ok)

	out, err := transform.NewReceipt(receipt, block.Transactions()[0], loc, nil)
	require.NoError(t, err)
	assert.Equal(t, signer, out.From)
	assert.Equal(t, uint64(1), uint64(out.Status))
	assert.Equal(t, uint64(21000), uint64(out.GasUsed))
	assert.Nil(t, out.ContractAddress)
	require.Len(t, out.Logs, 1)
	assert.Equal(t, logger, out.Logs[0].Address)
	assert.Equal(t, []common.Hash{topic}, out.Logs[0].Topics)
	assert.Equal(t, uint64(5), uint64(out.Logs[0].BlockNumber))
	assert.Equal(t, []byte{0x2a}, []byte(out.ReturnValue))

	_, ok = transform.Locate(block, header, strings.Repeat("00", transform.IDLength))
	assert.False(t, ok)
}

func TestNewLogsRejectsBadAddress(t *testing.T) {
	receipt := &types.TransactionReceipt{
		TransactionID: txID,
		Events: []*types.Event{{
			EventType:  types.LogEventType,
			Attributes: []*types.EventAttribute{{Key: types.LogEventAddress, Value: "nope"}},
		}},
	}
	_, err := transform.NewLogs(receipt, transform.Location{}, 0)
	assert.Error(t, err)
}

func TestNewLogsAddressFromData(t *testing.T) {
	receipt := &types.TransactionReceipt{
		TransactionID: txID,
		Events: []*types.Event{{
			EventType: types.LogEventType,
			Data:      types.MustEncode(&types.SethLogData{Address: logger.Bytes(), Topics: []common.Hash{topic}}),
		}},
	}
	logs, err := transform.NewLogs(receipt, transform.Location{}, 4)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, logger, logs[0].Address)
	assert.Equal(t, uint64(4), uint64(logs[0].LogIndex))
}
