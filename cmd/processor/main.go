// Package main routes uploaded claim files to the Bedrock agent: it
// classifies each S3 arrival as an image or a document, builds the matching
// structured instruction, and drives the agent through the full claim
// workflow. Exhausted agent retries fail the invocation so the S3 event
// retry machinery can take over.
package main

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/anycompany/claims-processing/internal/agent"
	"github.com/anycompany/claims-processing/internal/awsutil"
	"github.com/anycompany/claims-processing/internal/config"
)

// App holds the application state, including configuration and AWS clients.
type App struct {
	env     config.Env
	invoker *agent.Invoker
	log     *zap.Logger
	now     func() time.Time
}

// fileResult summarizes the agent's handling of one uploaded file.
type fileResult struct {
	File          string `json:"file"`
	AgentResponse string `json:"agent_response"`
}

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	env, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}
	config.MustHave("BEDROCK_AGENT_ID", env.AgentID)
	config.MustHave("AGENT_ALIAS_ID", env.AgentAliasID)

	cfg, _, err := awsutil.Load(context.Background(), env)
	if err != nil {
		log.Fatal("load aws config", zap.Error(err))
	}

	app := &App{
		env: env,
		invoker: agent.New(bedrockagentruntime.NewFromConfig(cfg),
			env.AgentID, env.AgentAliasID, log),
		log: log,
		now: time.Now,
	}
	lambda.Start(app.handler)
}

// handler processes S3 event records, one agent session per file.
func (a *App) handler(ctx context.Context, ev events.S3Event) ([]fileResult, error) {
	results := make([]fileResult, 0, len(ev.Records))
	for _, rec := range ev.Records {
		res, err := a.processRecord(ctx, rec)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// processRecord classifies one uploaded file and runs the agent workflow.
func (a *App) processRecord(ctx context.Context, rec events.S3EventRecord) (fileResult, error) {
	bucket := rec.S3.Bucket.Name
	key, _ := url.QueryUnescape(rec.S3.Object.Key)

	a.log.Info("file uploaded",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.Bool("image", agent.IsImageFile(key)))

	var inputText string
	var files []agent.File
	if agent.IsImageFile(key) {
		inputText = agent.ImageInstruction(key)
	} else {
		fileName := filepath.Base(key)
		inputText = agent.DocumentInstruction(fileName, a.now().Format("2006-01-02"))
		files = []agent.File{{
			Name:  fileName,
			S3URI: fmt.Sprintf("s3://%s/%s", bucket, key),
		}}
	}

	response, err := a.invoker.Invoke(ctx, a.sessionID(ctx), inputText, files)
	if err != nil {
		a.log.Error("agent workflow failed",
			zap.String("key", key),
			zap.Error(err))
		return fileResult{}, fmt.Errorf("process %s: %w", key, err)
	}

	a.log.Info("agent workflow complete",
		zap.String("key", key),
		zap.Int("response_len", len(response)))
	return fileResult{File: key, AgentResponse: response}, nil
}

// sessionID reuses the lambda request id so a retried event resumes the
// same agent session, falling back to a fresh ULID outside the runtime.
func (a *App) sessionID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return ulid.Make().String()
}
