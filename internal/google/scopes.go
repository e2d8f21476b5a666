package google

import drive "google.golang.org/api/drive/v3"

// DefaultOAuthScopes are the scopes a saved token needs for every Drive tool.
var DefaultOAuthScopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	drive.DriveScope,
}
