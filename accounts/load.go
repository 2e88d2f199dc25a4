package accounts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sawtooth-seth/rpc/types"
)

// Key file extensions, looked up in this order.
const (
	PrivExt     = ".priv" // hex encoded secp256k1 scalar
	KeystoreExt = ".json" // encrypted v3 keystore
)

// KeyFile describes a key file found in a keys directory.
type KeyFile struct {
	Alias   string
	Path    string
	Address common.Address
	// Encrypted key files expose their address without the password.
	Encrypted bool
}

// LoadFromFile unlocks alias from dir. The password is only used for
// keystore files.
func LoadFromFile(alias, dir, password string) (*Account, error) {
	privPath := filepath.Join(dir, alias+PrivExt)
	if b, err := os.ReadFile(privPath); err == nil {
		return FromHex(alias, strings.TrimSpace(string(b)))
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	keystorePath := filepath.Join(dir, alias+KeystoreExt)
	keyJSON, err := os.ReadFile(keystorePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: no key file for %s in %s", types.ErrAccountNotFound, alias, dir)
	} else if err != nil {
		return nil, err
	}
	key, err := keystore.DecryptKey(keyJSON, password)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to decrypt key file for %s", types.ErrSigning, alias)
	}
	return NewAccount(alias, key.PrivateKey)
}

// LoadAll unlocks every alias and builds a store from them.
func LoadAll(aliases []string, dir, password string) (*Store, error) {
	accounts := make([]*Account, 0, len(aliases))
	for _, alias := range aliases {
		account, err := LoadFromFile(alias, dir, password)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return NewStore(accounts...)
}

// ListKeyFiles returns the key files in dir sorted by alias. Malformed files
// are skipped.
func ListKeyFiles(dir string) ([]KeyFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []KeyFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		ext := filepath.Ext(entry.Name())
		alias := strings.TrimSuffix(entry.Name(), ext)
		switch ext {
		case PrivExt:
			b, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			account, err := FromHex(alias, strings.TrimSpace(string(b)))
			if err != nil {
				continue
			}
			files = append(files, KeyFile{Alias: alias, Path: path, Address: account.Address()})
		case KeystoreExt:
			b, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			var header struct {
				Address string `json:"address"`
			}
			if err := json.Unmarshal(b, &header); err != nil || !common.IsHexAddress(header.Address) {
				continue
			}
			files = append(files, KeyFile{Alias: alias, Path: path, Address: common.HexToAddress(header.Address), Encrypted: true})
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Alias < files[j].Alias })
	return files, nil
}
