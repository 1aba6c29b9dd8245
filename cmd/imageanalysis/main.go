// Package main implements the analyzeImage action group: AI-assisted
// vehicle damage assessment of uploaded photos.
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/anycompany/claims-processing/internal/agentapi"
	"github.com/anycompany/claims-processing/internal/awsutil"
	"github.com/anycompany/claims-processing/internal/config"
	"github.com/anycompany/claims-processing/internal/models"
	"github.com/anycompany/claims-processing/internal/propbag"
	"github.com/anycompany/claims-processing/internal/vision"
)

// App holds the application state, including configuration and AWS clients.
type App struct {
	env      config.Env
	analyzer *vision.Analyzer
	log      *zap.Logger
}

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	env, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}
	config.MustHave("CLAIMS_BUCKET", env.ClaimsBucket)

	cfg, endpoint, err := awsutil.Load(context.Background(), env)
	if err != nil {
		log.Fatal("load aws config", zap.Error(err))
	}

	// S3 client: use path-style when hitting LocalStack
	s3c := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.UsePathStyle = true
		}
	})

	app := &App{
		env: env,
		analyzer: vision.New(s3c, bedrockruntime.NewFromConfig(cfg),
			env.ClaimsBucket, env.VisionModelID, log),
		log: log,
	}
	lambda.Start(app.handler)
}

// handler processes one analyzeImage invocation.
func (a *App) handler(ctx context.Context, ev agentapi.InvocationEvent) (agentapi.InvocationResponse, error) {
	bag := propbag.Extract(ev.Properties(), a.log)

	imageFile := bag.String("image_file")
	if imageFile == "" {
		err := eris.Wrap(models.ErrMissingField, "image_file")
		a.log.Error("invalid analysis request", zap.Error(err))
		return agentapi.Error(ev, err), nil
	}

	analysis, err := a.analyzer.AnalyzeImage(ctx, imageFile)
	if err != nil {
		a.log.Error("image analysis failed",
			zap.String("image_file", imageFile),
			zap.Error(err))
		return agentapi.Error(ev, err), nil
	}

	return agentapi.OK(ev, map[string]any{
		"analysis_results": analysis,
	}), nil
}
