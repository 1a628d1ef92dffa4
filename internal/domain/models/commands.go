package models

import "strings"

// CommandType enumerates supported operator chat commands.
type CommandType string

const (
	CommandEggs     CommandType = "eggs"
	CommandBirth    CommandType = "birth"
	CommandPurchase CommandType = "purchase"
	CommandSale     CommandType = "sale"
	CommandDeath    CommandType = "death"
	CommandFeed     CommandType = "feed"
	CommandVeg      CommandType = "veg"
	CommandStock    CommandType = "stock"
	CommandSummary  CommandType = "summary"
	CommandHelp     CommandType = "help"
	CommandUnknown  CommandType = "unknown"
)

var knownCommands = map[string]CommandType{
	string(CommandEggs):     CommandEggs,
	string(CommandBirth):    CommandBirth,
	string(CommandPurchase): CommandPurchase,
	string(CommandSale):     CommandSale,
	string(CommandDeath):    CommandDeath,
	string(CommandFeed):     CommandFeed,
	string(CommandVeg):      CommandVeg,
	string(CommandStock):    CommandStock,
	string(CommandSummary):  CommandSummary,
	string(CommandHelp):     CommandHelp,
}

// Command represents a parsed operator instruction extracted from chat text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command from free-form text. Only the command word is
// case-folded; arguments keep their spelling so names survive intact.
func ParseCommand(message string) Command {
	tokens := strings.Fields(strings.TrimSpace(message))
	cmd := Command{Type: CommandUnknown, Raw: message}

	if len(tokens) == 0 {
		return cmd
	}

	head := strings.TrimPrefix(strings.ToLower(tokens[0]), "/")
	if t, ok := knownCommands[head]; ok {
		cmd.Type = t
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}

// TransactionType maps movement commands to their transaction type.
func (c Command) TransactionType() (TransactionType, bool) {
	switch c.Type {
	case CommandBirth:
		return TransactionBirth, true
	case CommandPurchase:
		return TransactionPurchase, true
	case CommandSale:
		return TransactionSale, true
	case CommandDeath:
		return TransactionDeath, true
	}
	return "", false
}
