package session

import (
	"testing"
)

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		wantCmd  Command
		wantArgs string
		wantOK   bool
	}{
		{name: "plain command", text: "/week", wantCmd: CmdWeek, wantOK: true},
		{name: "command with args", text: "/week 2025-03-10", wantCmd: CmdWeek, wantArgs: "2025-03-10", wantOK: true},
		{name: "uppercase", text: "/HELP", wantCmd: CmdHelp, wantOK: true},
		{name: "bot mention suffix", text: "/record_today@timecop_bot", wantCmd: CmdRecordToday, wantOK: true},
		{name: "leading whitespace", text: "  /cancel  ", wantCmd: CmdCancel, wantOK: true},
		{name: "report with month", text: "/report 02/2025", wantCmd: CmdReport, wantArgs: "02/2025", wantOK: true},
		{name: "unknown command", text: "/frobnicate", wantOK: false},
		{name: "free text", text: "worked on stuff", wantOK: false},
		{name: "slash mid sentence", text: "either/or", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd, args, ok := ParseCommand(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ParseCommand(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if cmd != tt.wantCmd {
				t.Errorf("cmd = %s, want %s", cmd, tt.wantCmd)
			}
			if args != tt.wantArgs {
				t.Errorf("args = %q, want %q", args, tt.wantArgs)
			}
		})
	}
}

func TestConfirmAndRejectWords(t *testing.T) {
	t.Parallel()

	for _, word := range []string{"yes", "YES", " ok ", "sí", "save", "Okay."} {
		if !isConfirmWord(word) {
			t.Errorf("expected %q to confirm", word)
		}
	}
	for _, word := range []string{"no", "N", "discard"} {
		if !isRejectWord(word) {
			t.Errorf("expected %q to reject", word)
		}
	}
	for _, word := range []string{"yes please", "nope really", "worked 3 hours"} {
		if isConfirmWord(word) || isRejectWord(word) {
			t.Errorf("expected %q to be plain text", word)
		}
	}
}
