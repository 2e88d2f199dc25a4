package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountsListsKeyFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alice.priv"),
		[]byte("4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318\n"), 0o600))

	keysDir = dir
	var out bytes.Buffer
	AccountsCmd.SetOut(&out)
	require.NoError(t, AccountsCmd.RunE(AccountsCmd, nil))
	assert.Contains(t, out.String(), "alice")
	assert.Contains(t, out.String(), "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23")
	assert.Contains(t, out.String(), "plain")
}

func TestAccountsEmptyDir(t *testing.T) {
	keysDir = t.TempDir()
	var out bytes.Buffer
	AccountsCmd.SetOut(&out)
	require.NoError(t, AccountsCmd.RunE(AccountsCmd, nil))
	assert.Contains(t, out.String(), "no key files")
}
