// Package notify publishes customer notifications through SNS.
package notify

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Defaults applied when the agent omits the fields.
const (
	DefaultSubject = "Claim Update Notification"
	DefaultMessage = "No message provided"
)

// Publisher wraps an SNS client and topic for claim notifications.
type Publisher struct {
	SNS      *sns.Client
	TopicARN string
	Log      *zap.Logger
}

// New returns a Publisher bound to the given topic.
func New(client *sns.Client, topicARN string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{SNS: client, TopicARN: topicARN, Log: log}
}

// Send publishes the notification and returns the delivery message id.
func (p *Publisher) Send(ctx context.Context, subject, message string) (string, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	if message == "" {
		message = DefaultMessage
	}

	out, err := p.SNS.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.TopicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	if err != nil {
		return "", eris.Wrap(err, "publish notification")
	}

	id := aws.ToString(out.MessageId)
	p.Log.Info("notification published",
		zap.String("topic", p.TopicARN),
		zap.String("message_id", id))
	return id, nil
}
