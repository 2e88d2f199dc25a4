package messages

import "fmt"

// MessageType tags the payload carried by an Envelope.
type MessageType uint32

// Message types, values match the validator's schema.
const (
	Default MessageType = 0

	ClientBatchSubmitRequest  MessageType = 100
	ClientBatchSubmitResponse MessageType = 101

	ClientStateGetRequest  MessageType = 106
	ClientStateGetResponse MessageType = 107

	ClientBlockListRequest               MessageType = 108
	ClientBlockListResponse              MessageType = 109
	ClientBlockGetByIDRequest            MessageType = 110
	ClientBlockGetResponse               MessageType = 111
	ClientBlockGetByNumRequest           MessageType = 124
	ClientBlockGetByTransactionIDRequest MessageType = 127
	ClientTransactionGetRequest          MessageType = 118
	ClientTransactionGetResponse         MessageType = 119
	ClientReceiptGetRequest              MessageType = 122
	ClientReceiptGetResponse             MessageType = 123
	ClientPeersGetRequest                MessageType = 125
	ClientPeersGetResponse               MessageType = 126

	PingRequest  MessageType = 700
	PingResponse MessageType = 701
)

var typeNames = map[MessageType]string{
	Default:                              "DEFAULT",
	ClientBatchSubmitRequest:             "CLIENT_BATCH_SUBMIT_REQUEST",
	ClientBatchSubmitResponse:            "CLIENT_BATCH_SUBMIT_RESPONSE",
	ClientStateGetRequest:                "CLIENT_STATE_GET_REQUEST",
	ClientStateGetResponse:               "CLIENT_STATE_GET_RESPONSE",
	ClientBlockListRequest:               "CLIENT_BLOCK_LIST_REQUEST",
	ClientBlockListResponse:              "CLIENT_BLOCK_LIST_RESPONSE",
	ClientBlockGetByIDRequest:            "CLIENT_BLOCK_GET_BY_ID_REQUEST",
	ClientBlockGetResponse:               "CLIENT_BLOCK_GET_RESPONSE",
	ClientBlockGetByNumRequest:           "CLIENT_BLOCK_GET_BY_NUM_REQUEST",
	ClientBlockGetByTransactionIDRequest: "CLIENT_BLOCK_GET_BY_TRANSACTION_ID_REQUEST",
	ClientTransactionGetRequest:          "CLIENT_TRANSACTION_GET_REQUEST",
	ClientTransactionGetResponse:         "CLIENT_TRANSACTION_GET_RESPONSE",
	ClientReceiptGetRequest:              "CLIENT_RECEIPT_GET_REQUEST",
	ClientReceiptGetResponse:             "CLIENT_RECEIPT_GET_RESPONSE",
	ClientPeersGetRequest:                "CLIENT_PEERS_GET_REQUEST",
	ClientPeersGetResponse:               "CLIENT_PEERS_GET_RESPONSE",
	PingRequest:                          "PING_REQUEST",
	PingResponse:                         "PING_RESPONSE",
}

func (t MessageType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("MessageType(%d)", uint32(t))
}
