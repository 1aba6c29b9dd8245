// Package agent drives the claims-processing Bedrock agent: it builds the
// structured instruction for each uploaded file and invokes the agent with
// bounded, throttle-aware retries.
package agent

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	agenttypes "github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/anycompany/claims-processing/internal/resilience"
)

// File is a document attached to the agent session for code-interpreter use.
type File struct {
	Name  string
	S3URI string
}

// Invoker calls the Bedrock agent and collects the streamed completion.
type Invoker struct {
	Client  *bedrockagentruntime.Client
	AgentID string
	AliasID string
	Retry   resilience.Config
	Log     *zap.Logger
}

// New returns an Invoker with the default retry policy.
func New(client *bedrockagentruntime.Client, agentID, aliasID string, log *zap.Logger) *Invoker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Invoker{
		Client:  client,
		AgentID: agentID,
		AliasID: aliasID,
		Retry:   resilience.DefaultConfig(),
		Log:     log,
	}
}

// Invoke runs the agent with the given instruction, attaching files to the
// session state when present, and returns the full completion text. Retries
// are bounded; exhausting them surfaces the last error to the caller.
func (i *Invoker) Invoke(ctx context.Context, sessionID, inputText string, files []File) (string, error) {
	cfg := i.Retry
	cfg.OnRetry = func(attempt int, err error) {
		i.Log.Warn("agent invocation retrying",
			zap.Int("attempt", attempt),
			zap.Bool("throttled", resilience.IsThrottle(err)),
			zap.Error(err))
	}

	text, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (string, error) {
		return i.invokeOnce(ctx, sessionID, inputText, files)
	})
	if err != nil {
		return "", eris.Wrapf(err, "invoke agent %s", i.AgentID)
	}
	return text, nil
}

func (i *Invoker) invokeOnce(ctx context.Context, sessionID, inputText string, files []File) (string, error) {
	input := &bedrockagentruntime.InvokeAgentInput{
		AgentId:      aws.String(i.AgentID),
		AgentAliasId: aws.String(i.AliasID),
		SessionId:    aws.String(sessionID),
		InputText:    aws.String(inputText),
	}
	if len(files) > 0 {
		input.SessionState = &agenttypes.SessionState{Files: sessionFiles(files)}
	}

	out, err := i.Client.InvokeAgent(ctx, input)
	if err != nil {
		return "", err
	}

	stream := out.GetStream()
	defer stream.Close()

	var sb strings.Builder
	for event := range stream.Events() {
		if chunk, ok := event.(*agenttypes.ResponseStreamMemberChunk); ok {
			sb.Write(chunk.Value.Bytes)
		}
	}
	if err := stream.Err(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func sessionFiles(files []File) []agenttypes.InputFile {
	out := make([]agenttypes.InputFile, 0, len(files))
	for _, f := range files {
		out = append(out, agenttypes.InputFile{
			Name:    aws.String(f.Name),
			UseCase: agenttypes.FileUseCaseCodeInterpreter,
			Source: &agenttypes.FileSource{
				SourceType: agenttypes.FileSourceTypeS3,
				S3Location: &agenttypes.S3ObjectFile{Uri: aws.String(f.S3URI)},
			},
		})
	}
	return out
}
