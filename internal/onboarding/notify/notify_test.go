// internal/onboarding/notify/notify_test.go
package notify

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driver-onboarding/internal/common/config"
	"driver-onboarding/internal/common/errors"
	"driver-onboarding/internal/common/logger"
	"driver-onboarding/internal/models"
)

// ==========================
// Test Fakes
// ==========================

type fakeEmail struct {
	inputs []ses.SendEmailInput
	err    error
}

func (f *fakeEmail) SendEmail(ctx context.Context, input *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, *input)
	return &ses.SendEmailOutput{}, nil
}

type fakeSMS struct {
	inputs []sns.PublishInput
	err    error
}

func (f *fakeSMS) Publish(ctx context.Context, input *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, *input)
	return &sns.PublishOutput{}, nil
}

func createTestProfile() *models.DriverProfile {
	return &models.DriverProfile{
		ApplicantID: "applicant-1",
		Tier:        "national_guide",
		FullName:    "Nimal Perera",
		Email:       "nimal@example.com",
		Phone:       "+94771234567",
	}
}

func testConfig(email, sms bool) config.NotificationConfig {
	return config.NotificationConfig{
		EmailEnabled: email,
		SMSEnabled:   sms,
		FromAddress:  "partners@example.travel",
	}
}

// ==========================
// Tests
// ==========================

func TestSubmissionReceived_BothChannels(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{}
	n := New(email, sms, testConfig(true, true), logger.NewTestLogger(t))

	err := n.SubmissionReceived(context.Background(), createTestProfile())

	require.NoError(t, err)
	require.Len(t, email.inputs, 1)
	assert.Equal(t, "partners@example.travel", *email.inputs[0].Source)
	assert.Equal(t, []string{"nimal@example.com"}, email.inputs[0].Destination.ToAddresses)
	assert.Contains(t, *email.inputs[0].Message.Body.Text.Data, "Nimal Perera")
	assert.Contains(t, *email.inputs[0].Message.Body.Text.Data, "National Tourist Guide")

	require.Len(t, sms.inputs, 1)
	assert.Equal(t, "+94771234567", *sms.inputs[0].PhoneNumber)
}

func TestSubmissionReceived_CopiesOperationsInbox(t *testing.T) {
	email := &fakeEmail{}
	cfg := testConfig(true, false)
	cfg.OpsAddress = "ops@example.travel"
	n := New(email, &fakeSMS{}, cfg, logger.NewTestLogger(t))

	err := n.SubmissionReceived(context.Background(), createTestProfile())

	require.NoError(t, err)
	require.Len(t, email.inputs, 2)
	assert.Equal(t, []string{"ops@example.travel"}, email.inputs[1].Destination.ToAddresses)
	assert.Contains(t, *email.inputs[1].Message.Subject.Data, "New partner application")
}

func TestSubmissionReceived_DisabledChannelsAreSkipped(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{}
	n := New(email, sms, testConfig(false, false), logger.NewTestLogger(t))

	err := n.SubmissionReceived(context.Background(), createTestProfile())

	require.NoError(t, err)
	assert.Empty(t, email.inputs)
	assert.Empty(t, sms.inputs)
}

func TestSubmissionReceived_EmailFailure(t *testing.T) {
	email := &fakeEmail{err: fmt.Errorf("throttled")}
	n := New(email, &fakeSMS{}, testConfig(true, true), logger.NewTestLogger(t))

	err := n.SubmissionReceived(context.Background(), createTestProfile())

	require.Error(t, err)
	code, ok := errors.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNotificationSendFailed, code)
	assert.True(t, errors.IsRetryable(err))
}

func TestSubmissionReceived_NilSenderDisablesChannel(t *testing.T) {
	n := New(nil, nil, testConfig(true, true), logger.NewTestLogger(t))

	assert.NoError(t, n.SubmissionReceived(context.Background(), createTestProfile()))
}
