package filters

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sawtooth-seth/rpc/transform"
	"github.com/sawtooth-seth/rpc/types"
)

// Criteria selects logs by block range, emitting address and topics. A nil
// entry in Topics matches any topic at that position.
type Criteria struct {
	FromBlock rpc.BlockNumber
	ToBlock   rpc.BlockNumber
	// BlockID restricts a search to one block. Sources must honour it
	// over the range they are given.
	BlockID   string
	Addresses []common.Address
	Topics    [][]common.Hash
}

func (c *Criteria) UnmarshalJSON(b []byte) error {
	var raw struct {
		FromBlock json.RawMessage   `json:"fromBlock"`
		ToBlock   json.RawMessage   `json:"toBlock"`
		BlockHash *string           `json:"blockHash"`
		Address   json.RawMessage   `json:"address"`
		Topics    []json.RawMessage `json:"topics"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("%w: filter criteria: %v", types.ErrValidation, err)
	}
	var err error
	if c.FromBlock, err = transform.ParseBlockNumber(raw.FromBlock); err != nil {
		return err
	}
	if c.ToBlock, err = transform.ParseBlockNumber(raw.ToBlock); err != nil {
		return err
	}
	if raw.BlockHash != nil {
		if len(raw.FromBlock) > 0 || len(raw.ToBlock) > 0 {
			return fmt.Errorf("%w: blockHash excludes fromBlock and toBlock", types.ErrValidation)
		}
		if c.BlockID, err = transform.DecodeID(*raw.BlockHash); err != nil {
			return err
		}
	}
	if c.Addresses, err = decodeAddresses(raw.Address); err != nil {
		return err
	}
	c.Topics = make([][]common.Hash, len(raw.Topics))
	for i, topic := range raw.Topics {
		if c.Topics[i], err = decodeTopic(topic); err != nil {
			return err
		}
	}
	return nil
}

func decodeAddresses(raw json.RawMessage) ([]common.Address, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var list []string
	if raw[0] == '"' {
		var single string
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, fmt.Errorf("%w: address: %v", types.ErrValidation, err)
		}
		list = []string{single}
	} else if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("%w: address: %v", types.ErrValidation, err)
	}
	addresses := make([]common.Address, 0, len(list))
	for _, s := range list {
		address, err := transform.DecodeAddress(s)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, address)
	}
	return addresses, nil
}

func decodeTopic(raw json.RawMessage) ([]common.Hash, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var list []*string
	if raw[0] == '"' {
		var single string
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, fmt.Errorf("%w: topic: %v", types.ErrValidation, err)
		}
		list = []*string{&single}
	} else if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("%w: topic: %v", types.ErrValidation, err)
	}
	var alternatives []common.Hash
	for _, s := range list {
		// A null alternative widens the position to a wildcard.
		if s == nil {
			return nil, nil
		}
		hash, err := transform.DecodeHash(*s)
		if err != nil {
			return nil, err
		}
		alternatives = append(alternatives, hash)
	}
	return alternatives, nil
}

// Range resolves the block range of c against head.
func (c *Criteria) Range(head uint64) (from, to uint64) {
	return transform.ResolveBlockNumber(c.FromBlock, head), transform.ResolveBlockNumber(c.ToBlock, head)
}

func (c *Criteria) Matches(log *transform.Log) bool {
	if len(c.Addresses) > 0 {
		found := false
		for _, address := range c.Addresses {
			if address == log.Address {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(c.Topics) > len(log.Topics) {
		return false
	}
	for i, alternatives := range c.Topics {
		if len(alternatives) == 0 {
			continue
		}
		found := false
		for _, topic := range alternatives {
			if topic == log.Topics[i] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
