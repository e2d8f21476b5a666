package common

import "github.com/teemow/driveagent/internal/google"

// GetAccountFromArgs returns the "account" argument, or the default account.
func GetAccountFromArgs(args map[string]any) string {
	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	return google.DefaultAccount
}
