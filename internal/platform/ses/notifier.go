// Package ses delivers review reminders by e-mail through Amazon SES v2.
package ses

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/phrazzld/recite-api/internal/config"
	"github.com/phrazzld/recite-api/internal/platform/logger"
	"github.com/phrazzld/recite-api/internal/store"
	"github.com/phrazzld/recite-api/internal/task"
)

const charset = "UTF-8"

// SendEmailAPI is the part of the SES v2 client the notifier uses.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Notifier sends one e-mail per reminder. The recipient and the text title
// are looked up at send time.
type Notifier struct {
	client     SendEmailAPI
	users      store.UserStore
	texts      store.TextStore
	fromEmail  string
	fromName   string
	appBaseURL string
	logger     *slog.Logger
}

var _ task.Notifier = (*Notifier)(nil)

// NewNotifier creates a Notifier around an existing SES client.
func NewNotifier(
	client SendEmailAPI,
	users store.UserStore,
	texts store.TextStore,
	cfg config.NotifierConfig,
	logger *slog.Logger,
) (*Notifier, error) {
	if client == nil {
		return nil, errors.New("ses client cannot be nil")
	}
	if users == nil || texts == nil {
		return nil, errors.New("user and text stores cannot be nil")
	}
	if cfg.FromEmail == "" {
		return nil, errors.New("from address cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		client:     client,
		users:      users,
		texts:      texts,
		fromEmail:  cfg.FromEmail,
		fromName:   cfg.FromName,
		appBaseURL: strings.TrimRight(cfg.AppBaseURL, "/"),
		logger:     logger.With(slog.String("component", "ses_notifier")),
	}, nil
}

// New loads the default AWS configuration for cfg.AWSRegion and creates a
// Notifier with a fresh SES client.
func New(
	ctx context.Context,
	users store.UserStore,
	texts store.TextStore,
	cfg config.NotifierConfig,
	logger *slog.Logger,
) (*Notifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewNotifier(sesv2.NewFromConfig(awsCfg), users, texts, cfg, logger)
}

// NotifyReviewDue implements task.Notifier.
func (n *Notifier) NotifyReviewDue(ctx context.Context, reminder task.Reminder) error {
	log := logger.FromContextOrDefault(ctx, n.logger)

	user, err := n.users.GetByID(ctx, reminder.UserID)
	if err != nil {
		return fmt.Errorf("failed to resolve recipient: %w", err)
	}
	if user.Email == "" {
		return fmt.Errorf("user %s has no e-mail address", user.ID)
	}
	text, err := n.texts.GetByID(ctx, reminder.TextID)
	if err != nil {
		return fmt.Errorf("failed to resolve text: %w", err)
	}

	msg := n.reminderMessage(user.DisplayName, text.Title, reminder)
	if _, err := n.client.SendEmail(ctx, n.sendEmailInput(user.Email, msg)); err != nil {
		return fmt.Errorf("failed to send reminder to user %s: %w", user.ID, err)
	}

	log.Debug("reminder e-mail sent",
		slog.String("review_id", reminder.ReviewID.String()),
		slog.String("user_id", user.ID.String()))
	return nil
}

type message struct {
	subject string
	html    string
	text    string
}

func (n *Notifier) reminderMessage(name, title string, reminder task.Reminder) message {
	if name == "" {
		name = "there"
	}
	due := reminder.ScheduledAt.UTC().Format("Mon, 02 Jan 2006 15:04 MST")

	link := ""
	if n.appBaseURL != "" {
		link = fmt.Sprintf("%s/recitations/%s", n.appBaseURL, reminder.RecitationID)
	}

	text := fmt.Sprintf("Hi %s,\n\nReview %d of \"%s\" is due %s.\n", name, reminder.Round, title, due)
	body := fmt.Sprintf("<p>Hi %s,</p>\n<p>Review %d of <strong>%s</strong> is due %s.</p>\n",
		html.EscapeString(name), reminder.Round, html.EscapeString(title), due)
	if link != "" {
		text += fmt.Sprintf("\nStart reciting: %s\n", link)
		body += fmt.Sprintf("<p><a href=\"%s\">Start reciting</a></p>\n", html.EscapeString(link))
	}

	return message{
		subject: fmt.Sprintf("Time to recite: %s", title),
		html:    "<!DOCTYPE html>\n<html>\n<head><meta charset=\"UTF-8\"></head>\n<body>\n" + body + "</body>\n</html>\n",
		text:    text,
	}
}

func (n *Notifier) sendEmailInput(to string, msg message) *sesv2.SendEmailInput {
	from := n.fromEmail
	if n.fromName != "" {
		from = fmt.Sprintf("%s <%s>", n.fromName, n.fromEmail)
	}
	return &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.subject), Charset: aws.String(charset)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(msg.html), Charset: aws.String(charset)},
					Text: &types.Content{Data: aws.String(msg.text), Charset: aws.String(charset)},
				},
			},
		},
	}
}
