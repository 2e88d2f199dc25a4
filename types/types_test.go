package types_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sawtooth-seth/rpc/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockTransactionsInBatchOrder(t *testing.T) {
	block := &types.Block{
		Header: types.MustEncode(&types.BlockHeader{BlockNum: 7, BatchIDs: []string{"b1", "b2"}}),
		Batches: []*types.Batch{
			{Transactions: []*types.Transaction{{HeaderSignature: "t1"}, {HeaderSignature: "t2"}}},
			{Transactions: []*types.Transaction{{HeaderSignature: "t3"}}},
		},
	}
	header, err := block.DecodeHeader()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), header.BlockNum)

	var ids []string
	for _, tx := range block.Transactions() {
		ids = append(ids, tx.HeaderSignature)
	}
	assert.Equal(t, []string{"t1", "t2", "t3"}, ids)
}

func TestEvmEntryStorageAt(t *testing.T) {
	key := common.HexToHash("0x01")
	raw := types.MustEncode(&types.EvmEntry{
		Account: &types.EvmStateAccount{Address: common.HexToAddress("0xaa").Bytes(), Balance: big.NewInt(10)},
		Storage: []*types.EvmStorage{{Key: key, Value: common.HexToHash("0x2a")}},
	})
	entry, err := types.DecodeEvmEntry(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(10), entry.Account.Balance.Int64())
	assert.Equal(t, common.HexToHash("0x2a"), entry.StorageAt(key))
	assert.Equal(t, common.Hash{}, entry.StorageAt(common.HexToHash("0x02")))

	_, err = types.DecodeEvmEntry([]byte{0xff})
	assert.Error(t, err)
}

func TestSethReceipt(t *testing.T) {
	empty := &types.TransactionReceipt{TransactionID: "t1"}
	receipt, err := empty.SethReceipt()
	require.NoError(t, err)
	assert.Empty(t, receipt.ContractAddress)

	full := &types.TransactionReceipt{
		Data: [][]byte{types.MustEncode(&types.SethTransactionReceipt{GasUsed: 21000, ReturnValue: []byte{1}})},
	}
	receipt, err = full.SethReceipt()
	require.NoError(t, err)
	assert.Equal(t, uint64(21000), receipt.GasUsed)
}

func TestEventAttribute(t *testing.T) {
	event := &types.Event{
		EventType:  types.LogEventType,
		Attributes: []*types.EventAttribute{{Key: types.LogEventAddress, Value: "abcd"}},
	}
	v, ok := event.Attribute(types.LogEventAddress)
	assert.True(t, ok)
	assert.Equal(t, "abcd", v)
	_, ok = event.Attribute("missing")
	assert.False(t, ok)
}

func TestFilterNotFoundIsNotFound(t *testing.T) {
	assert.True(t, errors.Is(types.ErrFilterNotFound, types.ErrNotFound))
	assert.False(t, errors.Is(types.ErrNotFound, types.ErrFilterNotFound))
}

func TestSha512Hex(t *testing.T) {
	assert.Len(t, types.Sha512Hex([]byte("payload")), 128)
	assert.Equal(t, "MESSAGE_CALL", types.SethMessageCall.String())
}

func TestTransactionHeaderLayout(t *testing.T) {
	raw := types.MustEncode(&types.TransactionHeader{FamilyName: "seth", Nonce: "1", PayloadSha512: "ab"})
	// family_name = 3, nonce = 6, payload_sha512 = 9.
	assert.Equal(t, []byte{0x1a, 4, 's', 'e', 't', 'h', 0x32, 1, '1', 0x4a, 2, 'a', 'b'}, raw)

	tx := &types.Transaction{Header: raw, HeaderSignature: "sig"}
	header, err := tx.DecodeHeader()
	require.NoError(t, err)
	assert.Equal(t, "seth", header.FamilyName)
	assert.Equal(t, "ab", header.PayloadSha512)
}

func TestSethTransactionBodies(t *testing.T) {
	to := common.HexToAddress("0xbb").Bytes()
	call := &types.SethTransaction{Type: types.SethMessageCall, Nonce: 2, GasLimit: 90000, Value: big.NewInt(5), Data: []byte{1}, To: to}
	raw := types.MustEncode(call)
	// transaction_type = 3, then message_call is field 4.
	assert.Equal(t, []byte{0x08, 0x03, 0x22}, raw[:3])

	decoded := new(types.SethTransaction)
	require.NoError(t, decoded.Unmarshal(raw))
	assert.Equal(t, call.To, decoded.To)
	assert.Equal(t, uint64(2), decoded.Nonce)
	assert.Equal(t, uint64(90000), decoded.GasLimit)
	assert.Equal(t, int64(5), decoded.Value.Int64())

	set := &types.SethTransaction{Type: types.SethSetPermissions, Nonce: 1, To: to, Permissions: types.EvmPermissions{Perms: types.PermCall, SetBit: types.PermCall | types.PermRoot}}
	decoded = new(types.SethTransaction)
	require.NoError(t, decoded.Unmarshal(types.MustEncode(set)))
	assert.Equal(t, set.Permissions, decoded.Permissions)
	assert.Equal(t, to, decoded.To)

	huge := &types.SethTransaction{Type: types.SethMessageCall, Value: new(big.Int).Lsh(big.NewInt(1), 64)}
	_, err := huge.Marshal()
	assert.ErrorIs(t, err, types.ErrOutOfRange)
}

func TestReceiptWithLogEvent(t *testing.T) {
	topic := common.HexToHash("0x01")
	receipt := &types.TransactionReceipt{
		TransactionID: "t1",
		Events: []*types.Event{{
			EventType:  types.LogEventType,
			Attributes: []*types.EventAttribute{{Key: types.LogEventAddress, Value: "aa"}},
			Data:       types.MustEncode(&types.SethLogData{Topics: []common.Hash{topic}, Data: []byte{9}}),
		}},
		Data: [][]byte{types.MustEncode(&types.SethTransactionReceipt{GasUsed: 7})},
	}
	decoded := new(types.TransactionReceipt)
	require.NoError(t, decoded.Unmarshal(types.MustEncode(receipt)))
	assert.Equal(t, "t1", decoded.TransactionID)
	require.Len(t, decoded.Events, 1)
	v, _ := decoded.Events[0].Attribute(types.LogEventAddress)
	assert.Equal(t, "aa", v)

	var data types.SethLogData
	require.NoError(t, data.Unmarshal(decoded.Events[0].Data))
	assert.Equal(t, []common.Hash{topic}, data.Topics)

	seth, err := decoded.SethReceipt()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), seth.GasUsed)
}
