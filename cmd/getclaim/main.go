// Package main implements the getClaimById action group: it returns the
// latest version of a claim plus its reduced version history.
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
	"github.com/anycompany/claims-processing/internal/models"
	"github.com/anycompany/claims-processing/internal/propbag"
	"github.com/rotisserie/eris"
)

// App holds the application state, including configuration and services.
type App struct {
	env    config.Env
	reader *claims.ReadService
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
		reader: claims.NewReadService(store, log),
		log:    log,
	}
	lambda.Start(app.handler)
}

// handler processes one getClaimById invocation. An unknown claim is a 200
// with claim_exists false, never a failure.
func (a *App) handler(ctx context.Context, ev agentapi.InvocationEvent) (agentapi.InvocationResponse, error) {
	bag := propbag.Extract(ev.Properties(), a.log)

	claimID := bag.String("claim_id")
	if claimID == "" {
		err := eris.Wrap(models.ErrMissingField, "claim_id")
		a.log.Error("invalid read request", zap.Error(err))
		return agentapi.Error(ev, err), nil
	}

	res, err := a.reader.GetClaim(ctx, claimID)
	if err != nil {
		a.log.Error("claim read failed",
			zap.String("claim_id", claimID),
			zap.Error(err))
		return agentapi.Error(ev, err), nil
	}

	if !res.Exists {
		return agentapi.OK(ev, map[string]any{
			"message":      fmt.Sprintf("Claim %s not found", claimID),
			"claim_exists": false,
			"claim_id":     claimID,
		}), nil
	}

	return agentapi.OK(ev, map[string]any{
		"message":       fmt.Sprintf("Claim %s found", claimID),
		"claim_exists":  true,
		"claim_id":      claimID,
		"claim_data":    res.Latest.Data(),
		"claim_history": res.History,
	}), nil
}
