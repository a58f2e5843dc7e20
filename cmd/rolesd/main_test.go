package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mineralchain/roles-admin/internal/core/domain"
	"github.com/mineralchain/roles-admin/internal/core/ports"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"serve", "assign", "revoke", "counts", "check"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
	assert.NotNil(t, root.PersistentFlags().ShorthandLookup("D"))
}

func TestRoleCommands_Args(t *testing.T) {
	tests := []struct {
		name string
		args []string
		ok   bool
	}{
		{"assign", []string{"miner", "alice"}, true},
		{"assign", []string{"miner"}, false},
		{"revoke", []string{"miner", "alice"}, true},
		{"revoke", []string{"miner", "alice", "extra"}, false},
		{"check", []string{"alice"}, true},
		{"check", nil, false},
		{"counts", nil, true},
		{"counts", []string{"miner"}, false},
	}
	root := newRootCommand()
	for _, tt := range tests {
		cmd, _, err := root.Find([]string{tt.name})
		require.NoError(t, err)
		err = cmd.Args(cmd, tt.args)
		if tt.ok {
			assert.NoError(t, err, "%s %v", tt.name, tt.args)
		} else {
			assert.Error(t, err, "%s %v", tt.name, tt.args)
		}
	}
}

func TestRevokeCommand_ReasonFlag(t *testing.T) {
	cmd := revokeCommand()
	f := cmd.Flags().Lookup("reason")
	require.NotNil(t, f)
	assert.Equal(t, "r", f.Shorthand)
}

func TestPrintChange(t *testing.T) {
	var buf bytes.Buffer
	printChange(&buf, &ports.RoleChangeResult{
		Message: "Miner role assigned successfully to alice.base",
		Tx:      domain.TxResult{Hash: "0xabc", BlockNumber: 12},
		Count:   4,
	})
	out := buf.String()
	assert.Contains(t, out, "Miner role assigned successfully to alice.base")
	assert.Contains(t, out, "0xabc (block 12)")
	assert.Contains(t, out, "count: 4")
}
