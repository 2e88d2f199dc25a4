package calls

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sawtooth-seth/rpc/requests"
	"github.com/sawtooth-seth/rpc/transform"
)

func addressParam(params requests.Params, i int) (common.Address, error) {
	var s string
	if err := params.Get(i, &s); err != nil {
		return common.Address{}, err
	}
	return transform.DecodeAddress(s)
}

func idParam(params requests.Params, i int) (string, error) {
	var s string
	if err := params.Get(i, &s); err != nil {
		return "", err
	}
	return transform.DecodeID(s)
}

func dataParam(params requests.Params, i int) ([]byte, error) {
	var s string
	if err := params.Get(i, &s); err != nil {
		return nil, err
	}
	return transform.DecodeData(s)
}

func uint64Param(params requests.Params, i int) (uint64, error) {
	var s string
	if err := params.Get(i, &s); err != nil {
		return 0, err
	}
	return transform.DecodeUint64(s)
}

// blockParam reads an optional block tag or number, latest when omitted.
func blockParam(params requests.Params, i int) (rpc.BlockNumber, error) {
	return transform.ParseBlockNumber(params.Raw(i))
}

func boolParam(params requests.Params, i int) (bool, error) {
	var v bool
	_, err := params.Optional(i, &v)
	return v, err
}

// TransactionArgs are the fields of eth_sendTransaction. The seth calls
// reuse From and To.
type TransactionArgs struct {
	From     common.Address  `json:"from"`
	To       *common.Address `json:"to"`
	Gas      *hexutil.Uint64 `json:"gas"`
	GasPrice *hexutil.Big    `json:"gasPrice"`
	Value    *hexutil.Big    `json:"value"`
	Nonce    *hexutil.Uint64 `json:"nonce"`
	Data     *hexutil.Bytes  `json:"data"`
	Input    *hexutil.Bytes  `json:"input"`
	// Permissions is a seth extension, see transform.ParsePermissions.
	Permissions *string `json:"permissions"`
}

func (args *TransactionArgs) data() []byte {
	if args.Input != nil {
		return *args.Input
	}
	if args.Data != nil {
		return *args.Data
	}
	return nil
}
