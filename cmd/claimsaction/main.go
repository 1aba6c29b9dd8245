// Package main implements the createClaim action group: it merges an
// incoming partial claim update against the latest stored version and
// installs the result as a new immutable version.
package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"

	"github.com/anycompany/claims-processing/internal/agentapi"
	"github.com/anycompany/claims-processing/internal/awsutil"
	"github.com/anycompany/claims-processing/internal/claims"
	"github.com/anycompany/claims-processing/internal/claimstore"
	"github.com/anycompany/claims-processing/internal/config"
	"github.com/anycompany/claims-processing/internal/propbag"
)

// App holds the application state, including configuration and services.
type App struct {
	env    config.Env
	writer *claims.WriteService
	log    *zap.Logger
}

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	env, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}
	config.MustHave("TABLE_NAME", env.Table)

	cfg, _, err := awsutil.Load(context.Background(), env)
	if err != nil {
		log.Fatal("load aws config", zap.Error(err))
	}

	store := claimstore.New(dynamodb.NewFromConfig(cfg), env.Table, log)
	app := &App{
		env:    env,
		writer: claims.NewWriteService(store, log),
		log:    log,
	}
	lambda.Start(app.handler)
}

// handler processes one createClaim invocation. All handled failures come
// back as a 500 envelope; the agent always needs an envelope, never a bare
// error.
func (a *App) handler(ctx context.Context, ev agentapi.InvocationEvent) (agentapi.InvocationResponse, error) {
	bag := propbag.Extract(ev.Properties(), a.log)

	upd, err := claims.UpdateFromBag(bag)
	if err != nil {
		a.log.Error("invalid update request", zap.Error(err))
		return agentapi.Error(ev, err), nil
	}

	res, err := a.writer.Write(ctx, upd)
	if err != nil {
		a.log.Error("claim write failed",
			zap.String("claim_id", upd.ClaimID),
			zap.Error(err))
		return agentapi.Error(ev, err), nil
	}

	return agentapi.OK(ev, map[string]any{
		"message":    fmt.Sprintf("Claim %s created successfully", res.ClaimID),
		"claim_id":   res.ClaimID,
		"version":    res.Version,
		"claim_data": res.Data,
	}), nil
}
