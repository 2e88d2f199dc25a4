package node

import (
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/cometbft/cometbft/libs/log"
	"github.com/cometbft/cometbft/libs/service"
	"github.com/sawtooth-seth/rpc/accounts"
	"github.com/sawtooth-seth/rpc/calls"
	"github.com/sawtooth-seth/rpc/client"
	"github.com/sawtooth-seth/rpc/config"
	"github.com/sawtooth-seth/rpc/events"
	"github.com/sawtooth-seth/rpc/filters"
	"github.com/sawtooth-seth/rpc/requests"
	"github.com/sawtooth-seth/rpc/rpc"
	"github.com/sawtooth-seth/rpc/transactions"
	"github.com/sawtooth-seth/rpc/transform"
)

//------------------------------------------------------------------------------

// Node wires the validator client, the method table and the RPC server
// together.
type Node struct {
	service.BaseService
	config *config.Config

	transport client.Transport
	accounts  *accounts.Store
	output    io.Writer

	client  *client.ValidatorClient
	filters *filters.Registry
	rpc     *rpc.RPC

	quit chan struct{}
	wg   sync.WaitGroup
}

// Option sets a parameter for the node.
type Option func(*Node)

// WithTransport replaces the ZMQ connection to cfg.Validator.Connect.
func WithTransport(transport client.Transport) Option {
	return func(n *Node) { n.transport = transport }
}

// WithAccounts replaces the accounts unlocked from key files.
func WithAccounts(store *accounts.Store) Option {
	return func(n *Node) { n.accounts = store }
}

// WithOutput sets where unlocked accounts are announced, stdout by default.
func WithOutput(w io.Writer) Option {
	return func(n *Node) { n.output = w }
}

// NewNode returns a new, ready to go, gateway node.
func NewNode(logger log.Logger, cfg *config.Config, options ...Option) (*Node, error) {
	node := &Node{config: cfg, output: os.Stdout}
	node.BaseService = *service.NewBaseService(logger.With("module", "node"), "Node", node)

	for _, option := range options {
		option(node)
	}

	if node.accounts == nil {
		store, err := accounts.LoadAll(cfg.Accounts.Unlock, cfg.Accounts.Dir, cfg.Accounts.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to unlock accounts: %w", err)
		}
		node.accounts = store
	}
	for _, account := range node.accounts.List() {
		fmt.Fprintf(node.output, "%s unlocked: %s\n", account.Alias(), account.Address().Hex())
	}

	if node.transport == nil {
		node.transport = client.NewZMQTransport(cfg.Validator.Connect)
	}
	node.client = client.NewValidatorClient(logger, node.transport, cfg.Validator.Timeout)
	node.filters = filters.NewRegistry(cfg.FiltersTTL)

	addresses, err := transform.NewAddressBook(0)
	if err != nil {
		return nil, err
	}
	registry, err := calls.NewRegistry()
	if err != nil {
		return nil, err
	}
	backend := &requests.Backend{
		Client:    node.client,
		Accounts:  node.accounts,
		Filters:   node.filters,
		Builder:   transactions.NewBuilder(addresses),
		Addresses: addresses,
		Chain:     cfg.Chain,
		Logger:    logger.With("module", "calls"),
	}
	node.rpc = rpc.NewRPC(logger, &cfg.RPC, requests.NewExecutor(registry, backend, logger))
	return node, nil
}

// OnStart starts the Node. It implements service.Service.
func (n *Node) OnStart() error {
	events.ValidatorDisconnected.Subscribe("node", func(cause error) {
		n.Logger.Error("lost validator connection, restart to reconnect", "err", cause)
	})
	if err := n.client.Start(); err != nil {
		events.ValidatorDisconnected.Unsubscribe("node")
		return fmt.Errorf("failed to connect to validator at %s: %w", n.config.Validator.Connect, err)
	}
	if err := n.rpc.Start(); err != nil {
		n.client.Stop()
		events.ValidatorDisconnected.Unsubscribe("node")
		return err
	}

	n.quit = make(chan struct{})
	n.wg.Add(1)
	go n.expireFilters()
	return nil
}

// OnStop stops the Node. It implements service.Service.
func (n *Node) OnStop() {
	close(n.quit)
	n.wg.Wait()
	n.rpc.Stop()
	n.client.Stop()
	events.ValidatorDisconnected.Unsubscribe("node").Wait()
}

func (n *Node) expireFilters() {
	defer n.wg.Done()
	ticker := time.NewTicker(n.config.FiltersTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			if removed := n.filters.Expire(now); removed > 0 {
				n.Logger.Debug("expired filters", "count", removed, "installed", n.filters.Len())
			}
		case <-n.quit:
			return
		}
	}
}

func (n *Node) Filters() *filters.Registry {
	return n.filters
}

// RPCAddr is the address the RPC server listens on once started.
func (n *Node) RPCAddr() net.Addr {
	return n.rpc.Addr()
}
