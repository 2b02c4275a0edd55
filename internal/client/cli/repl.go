package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/studyshare/studyshare-client/internal/client/session"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

const (
	msgLoading       = "Loading your session, please wait..."
	msgLoginRequired = "You need to log in first (type 'login' or 'register')."
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	require() error

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Status(ctx context.Context) error

	List(ctx context.Context) error
	Mine(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	Preview(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error
	Rate(ctx context.Context, args []string) error
	Comment(ctx context.Context, args []string) error
	Comments(ctx context.Context, args []string) error
	Search(ctx context.Context) error
	Tags(ctx context.Context) error
	Delete(ctx context.Context, args []string) error
	Upload(ctx context.Context) error
}

type command struct {
	protected bool
	run       func(a execIface, ctx context.Context, args []string) error
}

func noArgs(fn func(execIface, context.Context) error) func(execIface, context.Context, []string) error {
	return func(a execIface, ctx context.Context, _ []string) error { return fn(a, ctx) }
}

var commands = map[string]command{
	"register": {run: noArgs(execIface.Register)},
	"login":    {run: noArgs(execIface.Login)},
	"logout":   {run: noArgs(execIface.Logout)},
	"status":   {run: noArgs(execIface.Status)},

	"whoami":   {protected: true, run: noArgs(execIface.WhoAmI)},
	"list":     {protected: true, run: noArgs(execIface.List)},
	"mine":     {protected: true, run: noArgs(execIface.Mine)},
	"show":     {protected: true, run: execIface.Show},
	"preview":  {protected: true, run: execIface.Preview},
	"download": {protected: true, run: execIface.Download},
	"rate":     {protected: true, run: execIface.Rate},
	"comment":  {protected: true, run: execIface.Comment},
	"comments": {protected: true, run: execIface.Comments},
	"search":   {protected: true, run: noArgs(execIface.Search)},
	"tags":     {protected: true, run: noArgs(execIface.Tags)},
	"delete":   {protected: true, run: execIface.Delete},
	"upload":   {protected: true, run: noArgs(execIface.Upload)},
}

// aliases maps short forms to command names.
var aliases = map[string]string{
	"l":  "list",
	"ls": "list",
	"rm": "delete",
}

// runREPL starts a simple read–eval–print loop for the StudyShare CLI.
//
// It reads a line from reader, parses the first token as the
// command, and dispatches to methods on 'a'. Protected commands are gated
// on the session: while it is still loading they print a loading message,
// and for anonymous users a login hint. The loop exits at end of input or
// when the user types "exit" or "quit". Commands that prompt read from the
// same reader, so scripted input keeps its order.
//
// Errors returned by command handlers are ignored here; handlers print
// their own errors so the loop stays focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("studyshare %s> ", statusFn()))
		line, ok := readLine(reader)
		if !ok {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		name, args := parts[0], parts[1:]
		if alias, ok := aliases[name]; ok {
			name = alias
		}

		switch name {
		case "help":
			printlnFn(helpText(a.require()))
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		cmd, ok := commands[name]
		if !ok {
			printlnFn("Unknown command:", name)
			continue
		}
		if cmd.protected {
			if err := a.require(); err != nil {
				printlnFn(gateMessage(err))
				continue
			}
		}
		_ = cmd.run(a, ctx, args)
	}
}

// readLine returns the next line without its terminator. A final line
// without a newline is still returned; ok is false only when nothing is left.
func readLine(reader *bufio.Reader) (string, bool) {
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}

func gateMessage(err error) string {
	if errors.Is(err, session.ErrNotReady) {
		return msgLoading
	}
	return msgLoginRequired
}

func helpText(gate error) string {
	switch {
	case gate == nil:
		return "Available commands: whoami, status, (l)ist, mine, show <id>, preview <id>, download <id>, " +
			"rate <id> <1-5>, comment <id>, comments <id>, search, tags, upload, delete <id>, logout, exit"
	case errors.Is(gate, session.ErrNotReady):
		return "Available commands: status, exit (" + msgLoading + ")"
	default:
		return "Available commands: register, login, status, exit"
	}
}
