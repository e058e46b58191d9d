// Package wallet holds the account a process signs marketplace transactions with.
package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrNoAccount is returned when a write is attempted without a configured key.
var ErrNoAccount = errors.New("no account available")

// Session is created once at startup and threaded into every write.
// A session without a key is read-only.
type Session struct {
	key     *ecdsa.PrivateKey
	account common.Address
	chainID *big.Int
}

// NewSession parses an optional hex private key. An empty key yields a read-only session.
func NewSession(privateKeyHex string, chainID *big.Int) (*Session, error) {
	privateKeyHex = strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")
	if privateKeyHex == "" {
		return &Session{chainID: chainID}, nil
	}

	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &Session{
		key:     key,
		account: crypto.PubkeyToAddress(key.PublicKey),
		chainID: chainID,
	}, nil
}

// ReadOnly returns a session that can only read.
func ReadOnly() *Session {
	return &Session{}
}

// Accounts lists the available accounts; it is empty for a read-only session.
func (s *Session) Accounts() []common.Address {
	if s == nil || s.key == nil {
		return nil
	}
	return []common.Address{s.account}
}

// RequestAccess returns the signing account or ErrNoAccount.
func (s *Session) RequestAccess() (common.Address, error) {
	if s == nil || s.key == nil {
		return common.Address{}, ErrNoAccount
	}
	return s.account, nil
}

// Account returns the signing account hex, or "" when read-only.
func (s *Session) Account() string {
	if s == nil || s.key == nil {
		return ""
	}
	return s.account.Hex()
}

// Transactor builds signing options for one transaction.
func (s *Session) Transactor(ctx context.Context, value *big.Int) (*bind.TransactOpts, error) {
	if s == nil || s.key == nil {
		return nil, ErrNoAccount
	}
	if s.chainID == nil {
		return nil, fmt.Errorf("chain id is required to sign")
	}
	opts, err := bind.NewKeyedTransactorWithChainID(s.key, s.chainID)
	if err != nil {
		return nil, fmt.Errorf("build transactor: %w", err)
	}
	opts.Context = ctx
	if value != nil && value.Sign() > 0 {
		opts.Value = new(big.Int).Set(value)
	}
	return opts, nil
}
