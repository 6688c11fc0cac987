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

type fakeAccounts struct {
	checkResult *models.EmailCheckResult
	checkErr    error
	checkCalls  int

	createResult *models.TempAccountResult
	createErr    error
	createCalls  int
	lastInput    models.TempAccountInput
}

func (f *fakeAccounts) CheckEmail(_ context.Context, _ string) (*models.EmailCheckResult, error) {
	f.checkCalls++
	return f.checkResult, f.checkErr
}

func (f *fakeAccounts) CreateTempAccount(_ context.Context, in models.TempAccountInput) (*models.TempAccountResult, error) {
	f.createCalls++
	f.lastInput = in
	return f.createResult, f.createErr
}

type fakeBroker struct {
	result    *models.CheckoutSession
	err       error
	calls     int
	lastInput models.CheckoutSessionInput
}

func (f *fakeBroker) CreateSession(_ context.Context, in models.CheckoutSessionInput) (*models.CheckoutSession, error) {
	f.calls++
	f.lastInput = in
	return f.result, f.err
}

func newWizard(accounts *fakeAccounts, broker *fakeBroker) (*DefaultRegistrationService, *session.MemoryStore) {
	store := session.NewMemoryStore()
	svc := &DefaultRegistrationService{
		Store:    store,
		Accounts: accounts,
		Broker:   broker,
		BaseURL:  "https://app.example.com",
	}
	return svc, store
}

// advanceToDetails walks a fresh session to the details step.
func advanceToDetails(t *testing.T, svc *DefaultRegistrationService, accounts *fakeAccounts, accountType string) *models.RegistrationSession {
	t.Helper()
	ctx := context.Background()

	sess, err := svc.Start(ctx, accountType)
	require.NoError(t, err)
	require.Equal(t, models.StepEmail, sess.Step)

	accounts.checkResult = &models.EmailCheckResult{Status: models.EmailStatusNew}
	sess, err = svc.CheckEmail(ctx, sess.ID, "new@example.com")
	require.NoError(t, err)
	require.Equal(t, models.StepDetails, sess.Step)
	return sess
}

func TestStartWithoutAccountTypeOpensAtSelect(t *testing.T) {
	svc, _ := newWizard(&fakeAccounts{}, &fakeBroker{})

	sess, err := svc.Start(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, models.StepSelect, sess.Step)
	assert.True(t, sess.HasVisited(models.StepSelect))
	assert.NotEmpty(t, sess.ID)
}

func TestStartWithAccountTypeSkipsSelect(t *testing.T) {
	svc, _ := newWizard(&fakeAccounts{}, &fakeBroker{})

	sess, err := svc.Start(context.Background(), models.AccountTypeOrganization)
	require.NoError(t, err)
	assert.Equal(t, models.StepEmail, sess.Step)
	assert.Equal(t, models.AccountTypeOrganization, sess.AccountType)
}

func TestStartRejectsUnknownAccountType(t *testing.T) {
	svc, _ := newWizard(&fakeAccounts{}, &fakeBroker{})

	_, err := svc.Start(context.Background(), "cooperative")
	require.Error(t, err)
	assert.Equal(t, flow.KindValidation, flow.KindOf(err))
}

func TestPaidEmailNeverAdvances(t *testing.T) {
	accounts := &fakeAccounts{checkResult: &models.EmailCheckResult{
		Status:      models.EmailStatusExistsPaid,
		AccountType: models.AccountTypeIndividual,
	}}
	svc, _ := newWizard(accounts, &fakeBroker{})
	ctx := context.Background()

	sess, err := svc.Start(ctx, models.AccountTypeIndividual)
	require.NoError(t, err)

	// No matter how often the form is re-submitted, the step holds.
	for i := 0; i < 3; i++ {
		got, err := svc.CheckEmail(ctx, sess.ID, "paid@example.com")
		require.Error(t, err)
		assert.Equal(t, flow.KindTerminalAccountState, flow.KindOf(err))
		assert.Equal(t, models.StepEmail, got.Step)
		assert.Equal(t, models.EmailStatusExistsPaid, got.EmailStatus)
	}

	// The terminal status also blocks a direct details submission.
	_, err = svc.SubmitDetails(ctx, sess.ID, models.RegistrationDetails{
		Name: "Eva", Password: "secret-pw-1", ConfirmPassword: "secret-pw-1",
	})
	require.Error(t, err)
	assert.Equal(t, flow.KindValidation, flow.KindOf(err))
}

func TestCheckEmailFailureKeepsStep(t *testing.T) {
	accounts := &fakeAccounts{checkErr: flow.Transient("directory unavailable", nil)}
	svc, _ := newWizard(accounts, &fakeBroker{})
	ctx := context.Background()

	sess, err := svc.Start(ctx, models.AccountTypeIndividual)
	require.NoError(t, err)

	got, err := svc.CheckEmail(ctx, sess.ID, "someone@example.com")
	require.Error(t, err)
	assert.Equal(t, models.StepEmail, got.Step)
	assert.Empty(t, got.Email, "a failed check leaves no email on the session")
}

func TestUnknownSessionIsRejected(t *testing.T) {
	svc, _ := newWizard(&fakeAccounts{}, &fakeBroker{})

	_, err := svc.CheckEmail(context.Background(), "no-such-session", "a@b.co")
	require.Error(t, err)
	assert.Equal(t, flow.KindValidation, flow.KindOf(err))
}

func TestPasswordMismatchNeverReachesProvisioning(t *testing.T) {
	accounts := &fakeAccounts{}
	svc, _ := newWizard(accounts, &fakeBroker{})
	sess := advanceToDetails(t, svc, accounts, models.AccountTypeIndividual)

	got, err := svc.SubmitDetails(context.Background(), sess.ID, models.RegistrationDetails{
		Name: "Eva", Password: "secret-pw-1", ConfirmPassword: "different",
	})
	require.Error(t, err)
	assert.Equal(t, flow.KindValidation, flow.KindOf(err))
	assert.Equal(t, models.StepDetails, got.Step)
	assert.Zero(t, accounts.createCalls, "validation failures stay local")
}

func TestProvisioningValidationKeepsStep(t *testing.T) {
	accounts := &fakeAccounts{createErr: flow.Validation("at least 4 seats are required")}
	svc, _ := newWizard(accounts, &fakeBroker{})
	sess := advanceToDetails(t, svc, accounts, models.AccountTypeOrganization)

	got, err := svc.SubmitDetails(context.Background(), sess.ID, models.RegistrationDetails{
		AdminName: "Eva", CompanyName: "Praxis Nord",
		Password: "secret-pw-1", ConfirmPassword: "secret-pw-1", Seats: 2,
	})
	require.Error(t, err)
	assert.Equal(t, flow.KindValidation, flow.KindOf(err))
	assert.Equal(t, models.StepDetails, got.Step)
}

func TestIndividualDetailsPersistCredentialsBeforeAdvancing(t *testing.T) {
	accounts := &fakeAccounts{createResult: &models.TempAccountResult{TempUserID: "tmp-user-1"}}
	svc, store := newWizard(accounts, &fakeBroker{})
	sess := advanceToDetails(t, svc, accounts, models.AccountTypeIndividual)
	ctx := context.Background()

	got, err := svc.SubmitDetails(ctx, sess.ID, models.RegistrationDetails{
		Name: "Eva Keller", Password: "secret-pw-1", ConfirmPassword: "secret-pw-1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StepPayment, got.Step)
	assert.Equal(t, "tmp-user-1", got.TempUserID)

	creds, err := store.GetPendingCredentials(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", creds.Email)
	assert.Equal(t, "secret-pw-1", creds.Password)
}

func TestOrganizationDetailsStoreSeatsNotCredentials(t *testing.T) {
	accounts := &fakeAccounts{createResult: &models.TempAccountResult{
		TempUserID: "tmp-user-1", TempOrganizationID: "tmp-org-1",
	}}
	svc, store := newWizard(accounts, &fakeBroker{})
	sess := advanceToDetails(t, svc, accounts, models.AccountTypeOrganization)
	ctx := context.Background()

	got, err := svc.SubmitDetails(ctx, sess.ID, models.RegistrationDetails{
		AdminName: "Eva Keller", CompanyName: "Praxis Nord",
		Password: "secret-pw-1", ConfirmPassword: "secret-pw-1", Seats: 6,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StepPayment, got.Step)
	assert.Equal(t, 6, got.Seats)
	assert.Equal(t, "tmp-org-1", got.TempOrganizationID)

	_, err = store.GetPendingCredentials(ctx, sess.ID)
	assert.ErrorIs(t, err, session.ErrNotFound,
		"the credential fallback only applies to the individual flow")
}

func TestBackFromPaymentRetainsSeatsAndEmail(t *testing.T) {
	accounts := &fakeAccounts{createResult: &models.TempAccountResult{
		TempUserID: "tmp-user-1", TempOrganizationID: "tmp-org-1",
	}}
	svc, _ := newWizard(accounts, &fakeBroker{})
	sess := advanceToDetails(t, svc, accounts, models.AccountTypeOrganization)
	ctx := context.Background()

	_, err := svc.SubmitDetails(ctx, sess.ID, models.RegistrationDetails{
		AdminName: "Eva", CompanyName: "Praxis Nord",
		Password: "secret-pw-1", ConfirmPassword: "secret-pw-1", Seats: 6,
	})
	require.NoError(t, err)

	got, err := svc.Back(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StepDetails, got.Step)
	assert.Equal(t, 6, got.Seats)
	assert.Equal(t, "new@example.com", got.Email)
}

func TestBackIsOnlyValidFromPayment(t *testing.T) {
	accounts := &fakeAccounts{}
	svc, _ := newWizard(accounts, &fakeBroker{})
	sess := advanceToDetails(t, svc, accounts, models.AccountTypeIndividual)

	_, err := svc.Back(context.Background(), sess.ID)
	require.Error(t, err)
	assert.Equal(t, flow.KindValidation, flow.KindOf(err))
}

func TestJumpRequiresVisitedStep(t *testing.T) {
	svc, _ := newWizard(&fakeAccounts{}, &fakeBroker{})
	ctx := context.Background()

	sess, err := svc.Start(ctx, "")
	require.NoError(t, err)

	_, err = svc.JumpTo(ctx, sess.ID, models.StepDetails)
	require.Error(t, err)
	assert.Equal(t, flow.KindValidation, flow.KindOf(err))
}

func TestJumpToSelectResetsEmailState(t *testing.T) {
	accounts := &fakeAccounts{}
	svc, _ := newWizard(accounts, &fakeBroker{})
	ctx := context.Background()

	sess, err := svc.Start(ctx, "")
	require.NoError(t, err)
	sess, err = svc.SelectAccountType(ctx, sess.ID, models.AccountTypeIndividual)
	require.NoError(t, err)

	accounts.checkResult = &models.EmailCheckResult{Status: models.EmailStatusNew}
	sess, err = svc.CheckEmail(ctx, sess.ID, "new@example.com")
	require.NoError(t, err)

	got, err := svc.JumpTo(ctx, sess.ID, models.StepSelect)
	require.NoError(t, err)
	assert.Equal(t, models.StepSelect, got.Step)
	assert.Empty(t, got.Email)
	assert.Empty(t, got.EmailStatus)
}

func TestJumpToPaymentIsRejected(t *testing.T) {
	accounts := &fakeAccounts{createResult: &models.TempAccountResult{TempUserID: "tmp-user-1"}}
	svc, _ := newWizard(accounts, &fakeBroker{})
	sess := advanceToDetails(t, svc, accounts, models.AccountTypeIndividual)
	ctx := context.Background()

	_, err := svc.SubmitDetails(ctx, sess.ID, models.RegistrationDetails{
		Name: "Eva", Password: "secret-pw-1", ConfirmPassword: "secret-pw-1",
	})
	require.NoError(t, err)

	_, err = svc.JumpTo(ctx, sess.ID, models.StepPayment)
	require.Error(t, err)
	assert.Equal(t, flow.KindValidation, flow.KindOf(err))
}

func TestProceedEmbedsReturnParameters(t *testing.T) {
	accounts := &fakeAccounts{createResult: &models.TempAccountResult{TempUserID: "tmp-user-1"}}
	broker := &fakeBroker{result: &models.CheckoutSession{ID: "cs_123", URL: "https://pay.example.com/cs_123"}}
	svc, _ := newWizard(accounts, broker)
	sess := advanceToDetails(t, svc, accounts, models.AccountTypeIndividual)
	ctx := context.Background()

	_, err := svc.SubmitDetails(ctx, sess.ID, models.RegistrationDetails{
		Name: "Eva", Password: "secret-pw-1", ConfirmPassword: "secret-pw-1",
	})
	require.NoError(t, err)

	url, err := svc.Proceed(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/cs_123", url)

	assert.Equal(t, "tmp-user-1", broker.lastInput.TempUserID)
	assert.Contains(t, broker.lastInput.SuccessURL, "status=success")
	assert.Contains(t, broker.lastInput.SuccessURL, "session_id={CHECKOUT_SESSION_ID}")
	assert.Contains(t, broker.lastInput.SuccessURL, "rid="+sess.ID)
	assert.Contains(t, broker.lastInput.CancelURL, "status=cancelled")
	assert.Contains(t, broker.lastInput.CancelURL, "rid="+sess.ID)
}

func TestProceedSurfacesMissingRedirectURL(t *testing.T) {
	accounts := &fakeAccounts{createResult: &models.TempAccountResult{TempUserID: "tmp-user-1"}}
	broker := &fakeBroker{err: flow.Fatal(flow.CodeCheckoutNoURL, "payment provider returned no redirect URL")}
	svc, _ := newWizard(accounts, broker)
	sess := advanceToDetails(t, svc, accounts, models.AccountTypeIndividual)
	ctx := context.Background()

	_, err := svc.SubmitDetails(ctx, sess.ID, models.RegistrationDetails{
		Name: "Eva", Password: "secret-pw-1", ConfirmPassword: "secret-pw-1",
	})
	require.NoError(t, err)

	_, err = svc.Proceed(ctx, sess.ID)
	require.Error(t, err)
	assert.Equal(t, flow.KindFatal, flow.KindOf(err))
	assert.Equal(t, flow.CodeCheckoutNoURL, flow.CodeOf(err))
}

func TestProceedRequiresProvisionedAccount(t *testing.T) {
	accounts := &fakeAccounts{}
	svc, store := newWizard(accounts, &fakeBroker{})
	sess := advanceToDetails(t, svc, accounts, models.AccountTypeIndividual)
	ctx := context.Background()

	// Force the step forward without provisioning.
	raw, err := store.GetRegistration(ctx, sess.ID)
	require.NoError(t, err)
	raw.Step = models.StepPayment
	require.NoError(t, store.SaveRegistration(ctx, raw))

	_, err = svc.Proceed(ctx, sess.ID)
	require.Error(t, err)
	assert.Equal(t, flow.KindValidation, flow.KindOf(err))
}

func TestConcurrentMutationIsRejected(t *testing.T) {
	svc, store := newWizard(&fakeAccounts{}, &fakeBroker{})
	ctx := context.Background()

	sess, err := svc.Start(ctx, models.AccountTypeIndividual)
	require.NoError(t, err)

	// Simulate an in-flight mutation holding the per-session lock.
	acquired, err := store.AcquireOnce(ctx, mutationLockPrefix+sess.ID, mutationLockTTL)
	require.NoError(t, err)
	require.True(t, acquired)

	_, err = svc.CheckEmail(ctx, sess.ID, "new@example.com")
	require.Error(t, err)
	assert.Equal(t, flow.KindConflict, flow.KindOf(err))
}

func TestTeardownErasesSessionAndCredentials(t *testing.T) {
	accounts := &fakeAccounts{createResult: &models.TempAccountResult{TempUserID: "tmp-user-1"}}
	svc, store := newWizard(accounts, &fakeBroker{})
	sess := advanceToDetails(t, svc, accounts, models.AccountTypeIndividual)
	ctx := context.Background()

	_, err := svc.SubmitDetails(ctx, sess.ID, models.RegistrationDetails{
		Name: "Eva", Password: "secret-pw-1", ConfirmPassword: "secret-pw-1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Teardown(ctx, sess.ID))

	_, err = store.GetRegistration(ctx, sess.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
	_, err = store.GetPendingCredentials(ctx, sess.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}
