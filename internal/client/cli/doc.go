// Package cli provides the interactive game client shell.
//
// It wires configuration, the local session database, the optional Redis
// mirror, the API client and the auth/account services, then runs a REPL on
// top of them. On start the stored session is restored silently; afterwards
// every state change comes from a user command.
//
// Commands:
//   - register, login, logout
//   - whoami, profile, update, passwd
//   - kyc, kycsubmit, referrals, refcode
//   - help, exit | quit
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
