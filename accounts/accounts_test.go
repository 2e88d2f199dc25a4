package accounts_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sawtooth-seth/rpc/accounts"
	"github.com/sawtooth-seth/rpc/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	aliceKey     = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	aliceAddress = "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"
)

func TestAccountFromHex(t *testing.T) {
	alice, err := accounts.FromHex("alice", aliceKey)
	require.NoError(t, err)
	assert.Equal(t, "alice", alice.Alias())
	assert.Equal(t, common.HexToAddress(aliceAddress), alice.Address())
	assert.Len(t, alice.PublicKey(), 33)

	_, err = accounts.FromHex("bad", "zz")
	assert.ErrorIs(t, err, types.ErrSigning)
}

func TestAccountNeverPrintsKey(t *testing.T) {
	alice, err := accounts.FromHex("alice", aliceKey)
	require.NoError(t, err)
	for _, format := range []string{"%v", "%+v", "%#v", "%s"} {
		assert.NotContains(t, fmt.Sprintf(format, alice), aliceKey[:16], format)
	}
}

func TestSignLedger(t *testing.T) {
	alice, err := accounts.FromHex("alice", aliceKey)
	require.NoError(t, err)
	sig1, err := alice.SignLedger([]byte("header"))
	require.NoError(t, err)
	sig2, err := alice.SignLedger([]byte("header"))
	require.NoError(t, err)
	assert.Len(t, sig1, 128)
	assert.Equal(t, sig1, sig2, "signing must be deterministic")

	_, err = alice.Sign([]byte("short"))
	assert.ErrorIs(t, err, types.ErrSigning)
}

func TestStore(t *testing.T) {
	alice, err := accounts.FromHex("alice", aliceKey)
	require.NoError(t, err)
	bobKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	bob, err := accounts.NewAccount("bob", bobKey)
	require.NoError(t, err)

	store, err := accounts.NewStore(alice, bob)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, []common.Address{alice.Address(), bob.Address()}, store.Addresses())

	got, err := store.ByAlias("bob")
	require.NoError(t, err)
	assert.Same(t, bob, got)
	got, err = store.ByAddress(alice.Address())
	require.NoError(t, err)
	assert.Same(t, alice, got)

	_, err = store.ByAlias("carol")
	assert.ErrorIs(t, err, types.ErrAccountNotFound)
	_, err = store.ByAddress(common.HexToAddress("0x01"))
	assert.ErrorIs(t, err, types.ErrAccountLocked)

	_, err = accounts.NewStore(alice, alice)
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alice.priv"), []byte(aliceKey+"\n"), 0o600))

	alice, err := accounts.LoadFromFile("alice", dir, "")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(aliceAddress), alice.Address())

	_, err = accounts.LoadFromFile("nobody", dir, "")
	assert.ErrorIs(t, err, types.ErrAccountNotFound)

	store, err := accounts.LoadAll([]string{"alice"}, dir, "")
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func writeKeystore(t *testing.T, dir, alias, password string) common.Address {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	tmp := t.TempDir()
	ks := keystore.NewKeyStore(tmp, keystore.LightScryptN, keystore.LightScryptP)
	account, err := ks.ImportECDSA(key, password)
	require.NoError(t, err)
	require.NoError(t, os.Rename(account.URL.Path, filepath.Join(dir, alias+accounts.KeystoreExt)))
	return account.Address
}

func TestLoadKeystore(t *testing.T) {
	dir := t.TempDir()
	address := writeKeystore(t, dir, "bob", "secret")

	bob, err := accounts.LoadFromFile("bob", dir, "secret")
	require.NoError(t, err)
	assert.Equal(t, address, bob.Address())

	_, err = accounts.LoadFromFile("bob", dir, "wrong")
	assert.ErrorIs(t, err, types.ErrSigning)
}

func TestListKeyFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alice.priv"), []byte(aliceKey), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.priv"), []byte("nope"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o600))
	bobAddress := writeKeystore(t, dir, "bob", "secret")

	files, err := accounts.ListKeyFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "alice", files[0].Alias)
	assert.Equal(t, common.HexToAddress(aliceAddress), files[0].Address)
	assert.False(t, files[0].Encrypted)
	assert.Equal(t, "bob", files[1].Alias)
	assert.Equal(t, bobAddress, files[1].Address)
	assert.True(t, files[1].Encrypted)
}
