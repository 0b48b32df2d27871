package sway

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Transaction is a batch of commands from one owner, applied in order on
// the render side. ID lets the receiver apply it exactly once.
type Transaction struct {
	ID       string
	Owner    uint32
	Commands []Command
}

// NewTransaction returns an empty transaction with a fresh id.
func NewTransaction(owner uint32) *Transaction {
	return &Transaction{ID: uuid.NewString(), Owner: owner}
}

// Add appends cmd.
func (tx *Transaction) Add(cmd Command) { tx.Commands = append(tx.Commands, cmd) }

// Empty reports whether the transaction carries no commands.
func (tx *Transaction) Empty() bool { return len(tx.Commands) == 0 }

// Transport carries transactions from the UI side to the render side. It
// must not deliver a transaction more than once.
type Transport interface {
	Send(ctx context.Context, tx *Transaction) error
}

// CallbackRouter carries render-side messages back to the owner they
// belong to.
type CallbackRouter interface {
	Route(ctx context.Context, owner uint32, cmds []Command) error
}

// CallbackHandler consumes UI-bound messages; Client implements it.
type CallbackHandler interface {
	HandleCallbacks(cmds []Command)
}

// LocalBus connects a Client and a RenderService living in one process.
// Every transaction and callback batch is encoded and decoded on the way,
// so the two sides never share values.
type LocalBus struct {
	mu       sync.Mutex
	service  *RenderService
	handlers map[uint32]CallbackHandler
}

// NewLocalBus returns a bus delivering transactions to service.
func NewLocalBus(service *RenderService) *LocalBus {
	return &LocalBus{service: service, handlers: make(map[uint32]CallbackHandler)}
}

// Register delivers callbacks for owner to h.
func (b *LocalBus) Register(owner uint32, h CallbackHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[owner] = h
}

// Send encodes tx, decodes it again and applies it to the service.
func (b *LocalBus) Send(ctx context.Context, tx *Transaction) error {
	data, err := EncodeTransaction(tx)
	if err != nil {
		return err
	}
	decoded, err := DecodeTransaction(data)
	if err != nil {
		return err
	}
	return b.service.Apply(ctx, decoded)
}

// Route encodes cmds and hands the decoded copy to the owner's handler.
// Callbacks for an owner without a handler are dropped.
func (b *LocalBus) Route(_ context.Context, owner uint32, cmds []Command) error {
	b.mu.Lock()
	h := b.handlers[owner]
	b.mu.Unlock()
	if h == nil {
		logger.Warn("no callback handler", "owner", owner, "commands", len(cmds))
		return nil
	}
	data, err := EncodeCommands(cmds)
	if err != nil {
		return fmt.Errorf("route to %d: %w", owner, err)
	}
	decoded, err := DecodeCommands(data)
	if err != nil {
		return fmt.Errorf("route to %d: %w", owner, err)
	}
	h.HandleCallbacks(decoded)
	return nil
}
