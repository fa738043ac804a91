package session

import (
	"strings"
)

// Command is a recognized top-level chat command
type Command string

const (
	CmdStart       Command = "/start"
	CmdHelp        Command = "/help"
	CmdRecordToday Command = "/record_today"
	CmdRecordDay   Command = "/record_day"
	CmdGetDay      Command = "/get_day"
	CmdWeek        Command = "/week"
	CmdReport      Command = "/report"
	CmdDelete      Command = "/delete"
	CmdCancel      Command = "/cancel"
)

// knownCommands maps the command word (without arguments) to its Command
var knownCommands = map[string]Command{
	string(CmdStart):       CmdStart,
	string(CmdHelp):        CmdHelp,
	string(CmdRecordToday): CmdRecordToday,
	string(CmdRecordDay):   CmdRecordDay,
	string(CmdGetDay):      CmdGetDay,
	string(CmdWeek):        CmdWeek,
	string(CmdReport):      CmdReport,
	string(CmdDelete):      CmdDelete,
	string(CmdCancel):      CmdCancel,
}

// ParseCommand recognizes a top-level command at the start of a message.
// It returns the command, the remainder of the message as its argument,
// and whether a command was recognized. Matching is case-insensitive and
// tolerates a bot-mention suffix ("/week@timecop_bot").
func ParseCommand(text string) (Command, string, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return "", "", false
	}

	word := trimmed
	args := ""
	if i := strings.IndexAny(trimmed, " \t\n"); i != -1 {
		word = trimmed[:i]
		args = strings.TrimSpace(trimmed[i:])
	}

	if at := strings.Index(word, "@"); at != -1 {
		word = word[:at]
	}

	cmd, ok := knownCommands[strings.ToLower(word)]
	if !ok {
		return "", "", false
	}
	return cmd, args, true
}
