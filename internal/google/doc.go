// Package google loads the saved Google OAuth token the Drive client runs on.
//
// driveagent does not run an interactive authorization flow. A token obtained
// elsewhere is stored as JSON (the oauth2.Token encoding) in a token file, one
// file per account. When a client ID and secret are configured the token is
// refreshed on expiry and the refreshed token is written back.
package google
