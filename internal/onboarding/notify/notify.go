// internal/onboarding/notify/notify.go
package notify

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"driver-onboarding/internal/common/config"
	"driver-onboarding/internal/common/errors"
	"driver-onboarding/internal/common/logger"
	"driver-onboarding/internal/models"
	"driver-onboarding/internal/onboarding/tier"
)

// EmailSender is the slice of the SES client the notifier uses.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SMSSender is the slice of the SNS client the notifier uses.
type SMSSender interface {
	Publish(ctx context.Context, input *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Notifier sends the post-submission messages: a confirmation email to the
// applicant and an SMS to their phone. Either channel can be disabled in
// configuration.
type Notifier struct {
	email  EmailSender
	sms    SMSSender
	cfg    config.NotificationConfig
	logger logger.Logger
}

// New creates a notifier. A nil sender disables that channel regardless of
// configuration.
func New(email EmailSender, sms SMSSender, cfg config.NotificationConfig, log logger.Logger) *Notifier {
	return &Notifier{email: email, sms: sms, cfg: cfg, logger: log}
}

// SubmissionReceived confirms a successful submission to the applicant and
// alerts the operations inbox. The first channel failure is returned; the
// caller treats it as non-critical.
func (n *Notifier) SubmissionReceived(ctx context.Context, profile *models.DriverProfile) error {
	if n.cfg.EmailEnabled && n.email != nil {
		if err := n.sendEmail(ctx, profile); err != nil {
			return errors.NewNotificationSendFailedError("email", err)
		}
		if n.cfg.OpsAddress != "" {
			if err := n.sendOpsEmail(ctx, profile); err != nil {
				return errors.NewNotificationSendFailedError("email", err)
			}
		}
	}
	if n.cfg.SMSEnabled && n.sms != nil {
		if err := n.sendSMS(ctx, profile); err != nil {
			return errors.NewNotificationSendFailedError("sms", err)
		}
	}
	return nil
}

func (n *Notifier) sendEmail(ctx context.Context, profile *models.DriverProfile) error {
	subject := "Your partner application has been received"
	body := fmt.Sprintf(
		"Hello %s,\n\n"+
			"Your application to join as a %s has been received and is now "+
			"pending verification. Our team reviews new applications within "+
			"3 business days.\n\n"+
			"You will be notified as soon as the review completes.\n",
		profile.FullName, tier.Label(tier.PartnerTier(profile.Tier)),
	)

	_, err := n.email.SendEmail(ctx, &ses.SendEmailInput{
		Source: awssdk.String(n.cfg.FromAddress),
		Destination: &sestypes.Destination{
			ToAddresses: []string{profile.Email},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: awssdk.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: awssdk.String(body)},
			},
		},
	})
	if err != nil {
		return err
	}

	n.logger.Info("Submission email sent", map[string]interface{}{
		"applicantId": profile.ApplicantID,
		"to":          profile.Email,
	})
	return nil
}

func (n *Notifier) sendOpsEmail(ctx context.Context, profile *models.DriverProfile) error {
	subject := fmt.Sprintf("New partner application: %s", profile.FullName)
	body := fmt.Sprintf(
		"A new %s application is awaiting verification.\n\n"+
			"Applicant: %s\nCity: %s\nSubmitted: %s\n",
		tier.Label(tier.PartnerTier(profile.Tier)),
		profile.FullName, profile.City, profile.SubmittedAt,
	)

	_, err := n.email.SendEmail(ctx, &ses.SendEmailInput{
		Source: awssdk.String(n.cfg.FromAddress),
		Destination: &sestypes.Destination{
			ToAddresses: []string{n.cfg.OpsAddress},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: awssdk.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: awssdk.String(body)},
			},
		},
	})
	return err
}

func (n *Notifier) sendSMS(ctx context.Context, profile *models.DriverProfile) error {
	message := fmt.Sprintf(
		"Your %s application was received and is pending verification.",
		tier.Label(tier.PartnerTier(profile.Tier)),
	)

	_, err := n.sms.Publish(ctx, &sns.PublishInput{
		PhoneNumber: awssdk.String(profile.Phone),
		Message:     awssdk.String(message),
	})
	if err != nil {
		return err
	}

	n.logger.Info("Submission SMS sent", map[string]interface{}{
		"applicantId": profile.ApplicantID,
	})
	return nil
}
