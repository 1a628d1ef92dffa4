package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		in       string
		wantType CommandType
		wantArgs []string
	}{
		{in: "/eggs Galinhas 40", wantType: CommandEggs, wantArgs: []string{"Galinhas", "40"}},
		{in: "  /SALE Porcos 2 ", wantType: CommandSale, wantArgs: []string{"Porcos", "2"}},
		{in: "feed use Patos", wantType: CommandFeed, wantArgs: []string{"use", "Patos"}},
		{in: "/stock", wantType: CommandStock},
		{in: "", wantType: CommandUnknown},
		{in: "hello there", wantType: CommandUnknown, wantArgs: []string{"there"}},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			cmd := ParseCommand(tc.in)
			assert.Equal(t, tc.wantType, cmd.Type)
			assert.Equal(t, tc.wantArgs, cmd.Args)
			assert.Equal(t, tc.in, cmd.Raw)
		})
	}
}

func TestCommandTransactionType(t *testing.T) {
	tt, ok := ParseCommand("/death Galinhas 1").TransactionType()
	assert.True(t, ok)
	assert.Equal(t, TransactionDeath, tt)
	assert.False(t, tt.Increases())

	_, ok = ParseCommand("/eggs Galinhas 1").TransactionType()
	assert.False(t, ok)
}
