// Package cli implements the interactive verikeep command line client.
//
// The REPL accepts:
//
//	register   create an account and get a code by email
//	verify     submit the emailed code (logs you in)
//	resend     request a fresh code
//	login      authenticate a verified account
//	me         show your account
//	dashboard  show your account and service stats
//	logout     forget the current token
//	exit       leave the program
package cli
