// Package cli implements the bookmate command-line client with cobra:
// register, confirm, login, whoami and logout against the auth server's HTTP
// API. Passwords are read from the terminal without echo; login keeps the
// session token in a file readable only by the user.
package cli
