// Package main implements the sendNotification action group: customer
// communication for claim status updates via SNS.
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"

	"github.com/anycompany/claims-processing/internal/agentapi"
	"github.com/anycompany/claims-processing/internal/awsutil"
	"github.com/anycompany/claims-processing/internal/config"
	"github.com/anycompany/claims-processing/internal/notify"
	"github.com/anycompany/claims-processing/internal/propbag"
)

// App holds the application state, including configuration and AWS clients.
type App struct {
	env       config.Env
	publisher *notify.Publisher
	log       *zap.Logger
}

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	env, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}
	config.MustHave("TOPIC_ARN", env.TopicARN)

	cfg, _, err := awsutil.Load(context.Background(), env)
	if err != nil {
		log.Fatal("load aws config", zap.Error(err))
	}

	app := &App{
		env:       env,
		publisher: notify.New(sns.NewFromConfig(cfg), env.TopicARN, log),
		log:       log,
	}
	lambda.Start(app.handler)
}

// handler processes one sendNotification invocation. Subject and message
// fall back to defaults when the agent omits them.
func (a *App) handler(ctx context.Context, ev agentapi.InvocationEvent) (agentapi.InvocationResponse, error) {
	bag := propbag.Extract(ev.Properties(), a.log)

	id, err := a.publisher.Send(ctx, bag.String("subject"), bag.String("message"))
	if err != nil {
		a.log.Error("notification failed", zap.Error(err))
		return agentapi.Error(ev, err), nil
	}

	return agentapi.OK(ev, map[string]any{
		"message":   "Notification sent successfully",
		"messageId": id,
	}), nil
}
