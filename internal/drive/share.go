package drive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	drive "google.golang.org/api/drive/v3"
)

// Roles lists the permission roles Share accepts.
var Roles = []string{"reader", "commenter", "writer", "fileOrganizer", "organizer", "owner"}

func validRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Share grants each recipient the role on the file. A recipient who already
// has a permission gets its role updated instead of a second permission.
// Results are reported per recipient; the returned error is non-nil only when
// the file cannot be resolved or every recipient failed.
func (c *Client) Share(ctx context.Context, ref string, opts ShareOptions) ([]ShareResult, error) {
	if len(opts.Emails) == 0 {
		return nil, fmt.Errorf("at least one email address is required")
	}
	role := opts.Role
	if role == "" {
		role = "reader"
	}
	if !validRole(role) {
		return nil, fmt.Errorf("invalid role %q (valid: %s)", role, strings.Join(Roles, ", "))
	}

	f, err := c.resolve(ctx, ref, opts.SharedDriveID)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]string)
	err = c.service.Permissions.List(f.Id).
		Context(ctx).
		SupportsAllDrives(true).
		Fields("nextPageToken, permissions(id, type, emailAddress)").
		Pages(ctx, func(list *drive.PermissionList) error {
			for _, p := range list.Permissions {
				if p.EmailAddress != "" {
					existing[strings.ToLower(p.EmailAddress)] = p.Id
				}
			}
			return nil
		})
	if err != nil {
		return nil, classify("list permissions", err)
	}

	results := make([]ShareResult, 0, len(opts.Emails))
	var errs []error
	for _, email := range opts.Emails {
		res := ShareResult{Email: email, Role: role}

		var perm *drive.Permission
		if id, ok := existing[strings.ToLower(email)]; ok {
			perm, err = c.service.Permissions.Update(f.Id, id, &drive.Permission{Role: role}).
				Context(ctx).
				SupportsAllDrives(true).
				TransferOwnership(role == "owner").
				Fields("id, role").
				Do()
			res.Updated = true
		} else {
			call := c.service.Permissions.Create(f.Id, &drive.Permission{
				Type:         "user",
				Role:         role,
				EmailAddress: email,
			}).
				Context(ctx).
				SupportsAllDrives(true).
				TransferOwnership(role == "owner").
				SendNotificationEmail(opts.SendNotification || role == "owner").
				Fields("id, role")
			if opts.SendNotification && opts.Message != "" {
				call = call.EmailMessage(opts.Message)
			}
			perm, err = call.Do()
		}

		if err != nil {
			err = classify(fmt.Sprintf("share with %s", email), err)
			res.Error = err.Error()
			errs = append(errs, err)
		} else {
			res.PermissionID = perm.Id
		}
		results = append(results, res)
	}

	if len(errs) == len(opts.Emails) {
		return results, errors.Join(errs...)
	}
	return results, nil
}
