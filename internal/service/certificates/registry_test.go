package certificates

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hackboard/hackboard/internal/apperr"
)

func seedCertificate(t *testing.T, env *testEnv, name, email, role string) {
	t.Helper()

	configureTemplate(t, env)
	csv := "Name,Email,Role\n" + name + "," + email + "," + role + "\n"
	result, err := env.service.BulkGenerate(context.Background(), env.hackathon.ID, strings.NewReader(csv))
	if err != nil || result.Generated != 1 {
		t.Fatalf("Failed to seed certificate: generated=%d err=%v", result.Generated, err)
	}
}

func TestRetrieve_NameMatchingIsCaseInsensitive(t *testing.T) {
	env := setupTestEnv(t)
	seedCertificate(t, env, "John Doe", "john@test.com", "participant")
	ctx := context.Background()

	exact, err := env.service.Retrieve(ctx, env.hackathon.ID, "John Doe", "john@test.com")
	assert.NoError(t, err)

	upper, err := env.service.Retrieve(ctx, env.hackathon.ID, "JOHN DOE", "JOHN@TEST.COM")
	assert.NoError(t, err)
	assert.Equal(t, exact.CertificateID, upper.CertificateID, "both casings must resolve the same record")
	assert.Equal(t, "John Doe", upper.RecipientName, "stored casing is preserved")
}

func TestRetrieve_UnknownRecipient(t *testing.T) {
	env := setupTestEnv(t)
	seedCertificate(t, env, "John Doe", "john@test.com", "participant")
	ctx := context.Background()

	_, err := env.service.Retrieve(ctx, env.hackathon.ID, "John Doe", "other@test.com")
	assert.True(t, apperr.IsKind(err, apperr.NotFound))

	_, err = env.service.Retrieve(ctx, env.hackathon.ID, "Jane Doe", "john@test.com")
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestRetrieve_RequiresNameAndEmail(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.service.Retrieve(context.Background(), env.hackathon.ID, "", "john@test.com")
	assert.True(t, apperr.IsKind(err, apperr.InvalidFormat))

	_, err = env.service.Retrieve(context.Background(), env.hackathon.ID, "John Doe", "")
	assert.True(t, apperr.IsKind(err, apperr.InvalidFormat))
}

func TestVerify_ReturnsPublicProjection(t *testing.T) {
	env := setupTestEnv(t)
	seedCertificate(t, env, "John Doe", "john@test.com", "winner")
	ctx := context.Background()

	cert, err := env.service.Retrieve(ctx, env.hackathon.ID, "John Doe", "john@test.com")
	assert.NoError(t, err)

	verification, err := env.service.Verify(ctx, cert.CertificateID)
	assert.NoError(t, err)
	assert.Equal(t, cert.CertificateID, verification.CertificateID)
	assert.Equal(t, "Spring Hack 2025", verification.EventName)
	assert.Equal(t, "John Doe", verification.RecipientName)
	assert.Equal(t, "winner", verification.Role)
	assert.False(t, verification.IssueDate.IsZero())
}

func TestVerify_UnknownID(t *testing.T) {
	env := setupTestEnv(t)

	for _, id := range []string{"crt_doesnotexist", "", "../../etc/passwd"} {
		_, err := env.service.Verify(context.Background(), id)
		assert.True(t, apperr.IsKind(err, apperr.NotFound), "id %q", id)
	}
}

func TestListForEvent(t *testing.T) {
	env := setupTestEnv(t)
	configureTemplate(t, env)
	ctx := context.Background()

	csv := "Name,Email,Role\nA Person,a@test.com,participant\nB Person,b@test.com,judge\n"
	_, err := env.service.BulkGenerate(ctx, env.hackathon.ID, strings.NewReader(csv))
	assert.NoError(t, err)

	certs, err := env.service.ListForEvent(ctx, env.hackathon.ID)
	assert.NoError(t, err)
	assert.Len(t, certs, 2)

	_, err = env.service.ListForEvent(ctx, 9999)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestVerificationURL(t *testing.T) {
	env := setupTestEnv(t)

	url := env.service.VerificationURL("crt_abc123")
	assert.Equal(t, "https://certs.example.com/certificates/verify/crt_abc123", url)
}
