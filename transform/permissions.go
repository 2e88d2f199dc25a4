package transform

import (
	"fmt"
	"strings"

	"github.com/sawtooth-seth/rpc/types"
)

var permissionNames = []struct {
	name string
	bit  uint64
}{
	{"root", types.PermRoot},
	{"send", types.PermSend},
	{"call", types.PermCall},
	{"contract", types.PermCreateContract},
	{"account", types.PermCreateAccount},
}

// ParsePermissions parses a comma separated list such as "+send,-root".
// A name without a sign grants, and "all" stands for every permission.
func ParsePermissions(s string) (types.EvmPermissions, error) {
	var p types.EvmPermissions
	for _, token := range strings.Split(s, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		grant := true
		switch token[0] {
		case '+':
			token = token[1:]
		case '-':
			grant = false
			token = token[1:]
		}
		bit, ok := permissionBit(token)
		if !ok {
			return types.EvmPermissions{}, fmt.Errorf("%w: unknown permission %q", types.ErrValidation, token)
		}
		p.SetBit |= bit
		if grant {
			p.Perms |= bit
		} else {
			p.Perms &^= bit
		}
	}
	return p, nil
}

func permissionBit(name string) (uint64, bool) {
	if name == "all" {
		return types.PermAll, true
	}
	for _, p := range permissionNames {
		if p.name == name {
			return p.bit, true
		}
	}
	return 0, false
}

// FormatPermissions renders the explicitly set permissions of p in the form
// accepted by ParsePermissions.
func FormatPermissions(p types.EvmPermissions) string {
	if p.SetBit&types.PermAll == types.PermAll && p.Perms&types.PermAll == types.PermAll {
		return "+all"
	}
	var parts []string
	for _, perm := range permissionNames {
		if p.SetBit&perm.bit == 0 {
			continue
		}
		if p.Perms&perm.bit != 0 {
			parts = append(parts, "+"+perm.name)
		} else {
			parts = append(parts, "-"+perm.name)
		}
	}
	return strings.Join(parts, ",")
}
