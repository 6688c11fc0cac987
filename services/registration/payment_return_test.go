package registration

import (
	"context"
	"testing"

	"praxis/flow"
	"praxis/models"
	"praxis/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	result *models.CheckoutVerification
	err    error
	calls  int
}

func (f *fakeVerifier) VerifySession(_ context.Context, _ string) (*models.CheckoutVerification, error) {
	f.calls++
	return f.result, f.err
}

type fakeAuthenticator struct {
	user  *models.User
	token string
	err   error
	calls int
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, _, _ string) (*models.User, string, error) {
	f.calls++
	return f.user, f.token, f.err
}

// countingStore records how often pending credentials are read, so tests can
// prove the token path never touches them.
type countingStore struct {
	session.Store
	credentialReads int
}

func (c *countingStore) GetPendingCredentials(ctx context.Context, sessionID string) (*session.PendingCredentials, error) {
	c.credentialReads++
	return c.Store.GetPendingCredentials(ctx, sessionID)
}

func newReturnService(verifier *fakeVerifier, auth *fakeAuthenticator) (*DefaultRegistrationService, *countingStore) {
	store := &countingStore{Store: session.NewMemoryStore()}
	svc := &DefaultRegistrationService{
		Store:         store,
		Verifier:      verifier,
		Authenticator: auth,
		BaseURL:       "https://app.example.com",
	}
	return svc, store
}

func verifiedUser() *models.User {
	return &models.User{
		ID:    "user-1",
		Email: "eva@example.com",
		Role:  models.RolePsychologist,
		Paid:  true,
	}
}

func TestCancelledReturnNeverVerifies(t *testing.T) {
	verifier := &fakeVerifier{}
	auth := &fakeAuthenticator{}
	svc, store := newReturnService(verifier, auth)
	ctx := context.Background()

	sess := &models.RegistrationSession{ID: "reg-1", Step: models.StepProcessingPayment}
	require.NoError(t, store.SaveRegistration(ctx, sess))

	outcome, err := svc.ResolveReturn(ctx, "reg-1", models.CheckoutStatusCancelled, "")
	require.NoError(t, err)
	assert.Equal(t, models.CheckoutStatusCancelled, outcome.Status)
	assert.Equal(t, "/register", outcome.RedirectPath)
	assert.Zero(t, verifier.calls)
	assert.Zero(t, auth.calls)

	restored, err := store.GetRegistration(ctx, "reg-1")
	require.NoError(t, err)
	assert.Equal(t, models.StepPayment, restored.Step, "the wizard resumes at payment")
}

func TestCancelledReturnIsIdempotent(t *testing.T) {
	svc, _ := newReturnService(&fakeVerifier{}, &fakeAuthenticator{})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		outcome, err := svc.ResolveReturn(ctx, "", models.CheckoutStatusCancelled, "")
		require.NoError(t, err)
		assert.Equal(t, "/register", outcome.RedirectPath)
	}
}

func TestSuccessRequiresCheckoutSessionID(t *testing.T) {
	svc, _ := newReturnService(&fakeVerifier{}, &fakeAuthenticator{})

	_, err := svc.ResolveReturn(context.Background(), "reg-1", models.CheckoutStatusSuccess, "")
	require.Error(t, err)
	assert.Equal(t, flow.KindValidation, flow.KindOf(err))
}

func TestTokenPathSkipsPendingCredentials(t *testing.T) {
	verifier := &fakeVerifier{result: &models.CheckoutVerification{
		User: verifiedUser(), Token: "jwt-token",
	}}
	auth := &fakeAuthenticator{}
	svc, store := newReturnService(verifier, auth)
	ctx := context.Background()

	// Credentials exist, but the token path must not read them.
	require.NoError(t, store.SavePendingCredentials(ctx, "reg-1", session.PendingCredentials{
		Email: "eva@example.com", Password: "secret-pw-1",
	}))

	outcome, err := svc.ResolveReturn(ctx, "reg-1", models.CheckoutStatusSuccess, "cs_1")
	require.NoError(t, err)

	assert.Equal(t, models.CheckoutStatusSuccess, outcome.Status)
	assert.Equal(t, "/psychologist/dashboard", outcome.RedirectPath)
	assert.Equal(t, "jwt-token", outcome.Token)
	assert.NotEmpty(t, outcome.AuthSessionID)
	assert.Zero(t, store.credentialReads)
	assert.Zero(t, auth.calls)

	// The sensitive leftovers are gone.
	_, err = store.Store.GetPendingCredentials(ctx, "reg-1")
	assert.ErrorIs(t, err, session.ErrNotFound)

	authSess, err := store.GetAuth(ctx, outcome.AuthSessionID)
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", authSess.Token)
	assert.Equal(t, "user-1", authSess.User.ID)
}

func TestRedirectPathFollowsRole(t *testing.T) {
	tests := []struct {
		role string
		path string
	}{
		{models.RoleSuperAdmin, "/super/dashboard"},
		{models.RoleCompanyAdmin, "/company/dashboard"},
		{models.RolePsychologist, "/psychologist/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			usr := verifiedUser()
			usr.Role = tt.role
			verifier := &fakeVerifier{result: &models.CheckoutVerification{User: usr, Token: "jwt"}}
			svc, _ := newReturnService(verifier, &fakeAuthenticator{})

			outcome, err := svc.ResolveReturn(context.Background(), "", models.CheckoutStatusSuccess, "cs_"+tt.role)
			require.NoError(t, err)
			assert.Equal(t, tt.path, outcome.RedirectPath)
		})
	}
}

func TestFallbackLoginEstablishesSession(t *testing.T) {
	// Verification confirms payment but carries no token.
	verifier := &fakeVerifier{result: &models.CheckoutVerification{User: verifiedUser()}}
	auth := &fakeAuthenticator{user: verifiedUser(), token: "fallback-jwt"}
	svc, store := newReturnService(verifier, auth)
	ctx := context.Background()

	require.NoError(t, store.SavePendingCredentials(ctx, "reg-1", session.PendingCredentials{
		Email: "eva@example.com", Password: "secret-pw-1",
	}))

	outcome, err := svc.ResolveReturn(ctx, "reg-1", models.CheckoutStatusSuccess, "cs_1")
	require.NoError(t, err)

	assert.Equal(t, 1, auth.calls)
	assert.Equal(t, "fallback-jwt", outcome.Token)
	assert.Equal(t, "/psychologist/dashboard", outcome.RedirectPath)

	_, err = store.Store.GetPendingCredentials(ctx, "reg-1")
	assert.ErrorIs(t, err, session.ErrNotFound, "credentials are erased after a successful login")
}

func TestFallbackLoginFailureRetainsCredentials(t *testing.T) {
	verifier := &fakeVerifier{result: &models.CheckoutVerification{User: verifiedUser()}}
	auth := &fakeAuthenticator{err: flow.Transient("invalid email or password", nil)}
	svc, store := newReturnService(verifier, auth)
	ctx := context.Background()

	require.NoError(t, store.SavePendingCredentials(ctx, "reg-1", session.PendingCredentials{
		Email: "eva@example.com", Password: "secret-pw-1",
	}))

	outcome, err := svc.ResolveReturn(ctx, "reg-1", models.CheckoutStatusSuccess, "cs_1")
	require.Error(t, err)
	assert.Equal(t, flow.KindPaymentVerifiedLoginFailed, flow.KindOf(err))
	assert.Nil(t, outcome)

	// The credentials stay: they are the only remaining login path.
	creds, err := store.Store.GetPendingCredentials(ctx, "reg-1")
	require.NoError(t, err)
	assert.Equal(t, "eva@example.com", creds.Email)

	// The guard was released, so an explicit retry runs the chain again.
	auth.err = nil
	auth.user = verifiedUser()
	auth.token = "retry-jwt"
	outcome, err = svc.ResolveReturn(ctx, "reg-1", models.CheckoutStatusSuccess, "cs_1")
	require.NoError(t, err)
	assert.Equal(t, "retry-jwt", outcome.Token)
	assert.Equal(t, 2, verifier.calls)
}

func TestMissingCredentialsIsPaidButLoginFailed(t *testing.T) {
	verifier := &fakeVerifier{result: &models.CheckoutVerification{User: verifiedUser()}}
	auth := &fakeAuthenticator{}
	svc, _ := newReturnService(verifier, auth)

	outcome, err := svc.ResolveReturn(context.Background(), "reg-1", models.CheckoutStatusSuccess, "cs_1")
	require.Error(t, err)
	assert.Equal(t, flow.KindPaymentVerifiedLoginFailed, flow.KindOf(err))
	require.NotNil(t, outcome)
	assert.Equal(t, models.CheckoutStatusSuccess, outcome.Status,
		"payment did succeed; the user must not pay again")
	assert.Equal(t, "/login", outcome.RedirectPath)
	assert.Zero(t, auth.calls)
}

func TestMissingCredentialsOutcomeIsReplayedNotRerun(t *testing.T) {
	verifier := &fakeVerifier{result: &models.CheckoutVerification{User: verifiedUser()}}
	svc, _ := newReturnService(verifier, &fakeAuthenticator{})
	ctx := context.Background()

	_, err := svc.ResolveReturn(ctx, "reg-1", models.CheckoutStatusSuccess, "cs_1")
	require.Error(t, err)
	require.Equal(t, 1, verifier.calls)

	// The outcome is terminal and recorded; a replay observes it without
	// re-running the verification chain.
	outcome, err := svc.ResolveReturn(ctx, "reg-1", models.CheckoutStatusSuccess, "cs_1")
	require.Error(t, err)
	assert.Equal(t, flow.KindPaymentVerifiedLoginFailed, flow.KindOf(err))
	assert.Equal(t, "/login", outcome.RedirectPath)
	assert.Equal(t, 1, verifier.calls)
}

func TestSuccessfulReturnIsResolvedExactlyOnce(t *testing.T) {
	verifier := &fakeVerifier{result: &models.CheckoutVerification{
		User: verifiedUser(), Token: "jwt-token",
	}}
	auth := &fakeAuthenticator{}
	svc, _ := newReturnService(verifier, auth)
	ctx := context.Background()

	first, err := svc.ResolveReturn(ctx, "reg-1", models.CheckoutStatusSuccess, "cs_1")
	require.NoError(t, err)

	second, err := svc.ResolveReturn(ctx, "reg-1", models.CheckoutStatusSuccess, "cs_1")
	require.NoError(t, err)

	assert.Equal(t, 1, verifier.calls, "the verification chain ran once")
	assert.Zero(t, auth.calls)
	assert.Equal(t, first.AuthSessionID, second.AuthSessionID, "the replay observes the recorded outcome")
}

func TestVerificationFailureIsRetryable(t *testing.T) {
	verifier := &fakeVerifier{err: flow.Transient("payment backend unavailable", nil)}
	svc, _ := newReturnService(verifier, &fakeAuthenticator{})
	ctx := context.Background()

	outcome, err := svc.ResolveReturn(ctx, "reg-1", models.CheckoutStatusSuccess, "cs_1")
	require.Error(t, err)
	assert.Nil(t, outcome)

	// Nothing irreversible happened, so the guard does not block a retry.
	verifier.err = nil
	verifier.result = &models.CheckoutVerification{User: verifiedUser(), Token: "jwt"}
	outcome, err = svc.ResolveReturn(ctx, "reg-1", models.CheckoutStatusSuccess, "cs_1")
	require.NoError(t, err)
	assert.Equal(t, models.CheckoutStatusSuccess, outcome.Status)
	assert.Equal(t, 2, verifier.calls)
}

func TestUnknownReturnStatusIsRejected(t *testing.T) {
	svc, _ := newReturnService(&fakeVerifier{}, &fakeAuthenticator{})

	_, err := svc.ResolveReturn(context.Background(), "reg-1", "pending", "cs_1")
	require.Error(t, err)
	assert.Equal(t, flow.KindValidation, flow.KindOf(err))
}
