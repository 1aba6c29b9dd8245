// Package vision assesses vehicle damage photos with a Claude vision model
// on Bedrock. The model's free-text analysis is returned as-is; extracting
// structured fields from it is the agent's job.
package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const damagePrompt = `Please analyze the provided image and provide:
1. Detailed description of visible damage
2. Severity assessment (low, medium, high)
3. List of affected vehicle areas
4. Estimated cost of repair from image
5. Any additional notes or recommendations
6. The claim ID in the image

Format your response as JSON with these fields:
- damage_description
- severity
- affected_areas (as array)
- estimated_cost
- notes
- claim_id`

// Analyzer fetches damage photos from the claims bucket and runs them
// through the vision model.
type Analyzer struct {
	S3      *s3.Client
	Bedrock *bedrockruntime.Client
	Bucket  string
	ModelID string
	Log     *zap.Logger
}

// New returns an Analyzer.
func New(s3c *s3.Client, bedrock *bedrockruntime.Client, bucket, modelID string, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{S3: s3c, Bedrock: bedrock, Bucket: bucket, ModelID: modelID, Log: log}
}

// Anthropic messages payload for image + text input.
type modelRequest struct {
	AnthropicVersion string         `json:"anthropic_version"`
	MaxTokens        int            `json:"max_tokens"`
	Temperature      float64        `json:"temperature"`
	TopK             int            `json:"top_k"`
	TopP             float64        `json:"top_p"`
	Messages         []modelMessage `json:"messages"`
}

type modelMessage struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type modelResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// AnalyzeImage fetches the photo named by imageFile (any path prefix is
// dropped; objects live at the bucket root) and returns the model's
// free-text damage analysis.
func (a *Analyzer) AnalyzeImage(ctx context.Context, imageFile string) (string, error) {
	key := path.Base(strings.TrimSpace(imageFile))

	obj, err := a.S3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", eris.Wrapf(err, "get image %s from %s", key, a.Bucket)
	}
	defer obj.Body.Close()

	raw, err := io.ReadAll(obj.Body)
	if err != nil {
		return "", eris.Wrapf(err, "read image %s", key)
	}

	payload, err := json.Marshal(modelRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        1000,
		Temperature:      0,
		TopK:             250,
		TopP:             1,
		Messages: []modelMessage{{
			Role: "user",
			Content: []contentBlock{
				{
					Type: "image",
					Source: &imageSource{
						Type:      "base64",
						MediaType: mediaType(key),
						Data:      base64.StdEncoding.EncodeToString(raw),
					},
				},
				{Type: "text", Text: damagePrompt},
			},
		}},
	})
	if err != nil {
		return "", eris.Wrap(err, "encode model request")
	}

	a.Log.Info("invoking vision model",
		zap.String("model_id", a.ModelID),
		zap.String("image", key),
		zap.Int("bytes", len(raw)))

	out, err := a.Bedrock.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(a.ModelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        payload,
	})
	if err != nil {
		return "", eris.Wrapf(err, "invoke model %s", a.ModelID)
	}

	var resp modelResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", eris.Wrap(err, "decode model response")
	}
	if len(resp.Content) == 0 {
		return "", eris.New("model returned no content")
	}
	return resp.Content[0].Text, nil
}

// mediaType guesses the image media type from the file extension.
func mediaType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	default:
		return "image/png"
	}
}
