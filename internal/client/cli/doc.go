// Package cli provides the interactive StudyShare command-line client.
//
// NewApp wires configuration, the local token database, the HTTP API
// client, the session store and the resource service. App.Run bootstraps
// the session in the background and starts the REPL; until the bootstrap
// resolves, protected commands answer with a loading message, and once it
// has resolved they ask anonymous users to log in.
//
// Commands:
//   - help, exit | quit
//   - register, login, logout, whoami, status
//   - list, mine, show <id>, preview <id>, download <id>
//   - rate <id> <1-5>, comment <id>, comments <id>
//   - search, tags, upload, delete <id>
package cli
