package drive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	drive "google.golang.org/api/drive/v3"
)

func TestShare(t *testing.T) {
	fake := newFakeDrive()
	fake.addFile(&drive.File{Id: "f-report", Name: "report.pdf", Parents: []string{"root-id"}}, []byte("x"))
	fake.perms["f-report"] = []*drive.Permission{
		{Id: "perm-existing", Type: "user", Role: "reader", EmailAddress: "Bob@example.com"},
	}
	c := newTestClient(t, fake, Options{})

	results, err := c.Share(context.Background(), "report.pdf", ShareOptions{
		Emails:           []string{"alice@example.com", "bob@example.com", "eve@invalid"},
		Role:             "writer",
		SendNotification: true,
		Message:          "Here's the report you asked for.",
	})
	require.NoError(t, err, "partial failures are reported per recipient")
	require.Len(t, results, 3)

	assert.Equal(t, "alice@example.com", results[0].Email)
	assert.False(t, results[0].Updated)
	assert.NotEmpty(t, results[0].PermissionID)

	assert.True(t, results[1].Updated, "existing permission is updated, not duplicated")
	assert.Equal(t, "perm-existing", results[1].PermissionID)
	assert.Equal(t, "writer", fake.perms["f-report"][0].Role)

	assert.NotEmpty(t, results[2].Error)
	assert.Empty(t, results[2].PermissionID)
}

func TestShare_AllRecipientsFail(t *testing.T) {
	fake := newFakeDrive()
	fake.addFile(&drive.File{Id: "f", Name: "f.txt"}, []byte("x"))
	c := newTestClient(t, fake, Options{})

	results, err := c.Share(context.Background(), "f", ShareOptions{Emails: []string{"a@invalid", "b@invalid"}})
	assert.Error(t, err)
	assert.Len(t, results, 2)
}

func TestShare_Validation(t *testing.T) {
	fake := newFakeDrive()
	fake.addFile(&drive.File{Id: "f", Name: "f.txt"}, []byte("x"))
	c := newTestClient(t, fake, Options{})
	ctx := context.Background()

	_, err := c.Share(ctx, "f", ShareOptions{})
	assert.Error(t, err)

	_, err = c.Share(ctx, "f", ShareOptions{Emails: []string{"a@example.com"}, Role: "admin"})
	assert.ErrorContains(t, err, "invalid role")

	_, err = c.Share(ctx, "missing", ShareOptions{Emails: []string{"a@example.com"}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestShare_DefaultRoleIsReader(t *testing.T) {
	fake := newFakeDrive()
	fake.addFile(&drive.File{Id: "f", Name: "f.txt"}, []byte("x"))
	c := newTestClient(t, fake, Options{})

	results, err := c.Share(context.Background(), "f", ShareOptions{Emails: []string{"a@example.com"}})
	require.NoError(t, err)
	assert.Equal(t, "reader", results[0].Role)
}
