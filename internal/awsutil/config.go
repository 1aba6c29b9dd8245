// Package awsutil provides utilities for loading AWS configuration.
package awsutil

import (
	"context"
	"net"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"

	"github.com/anycompany/claims-processing/internal/config"
)

// Load builds the AWS configuration with the connect/read timeouts and
// bounded SDK retries every outbound call carries, using a custom endpoint
// if AWS_ENDPOINT_URL is set (e.g. http://localstack:4566).
func Load(ctx context.Context, env config.Env) (aws.Config, string, error) {
	opts := []func(*awsCfg.LoadOptions) error{
		awsCfg.WithRegion(env.Region),
		awsCfg.WithRetryMaxAttempts(env.MaxRetries),
		awsCfg.WithRetryMode(aws.RetryModeAdaptive),
		awsCfg.WithHTTPClient(&http.Client{
			Timeout: env.ReadTimeout,
			Transport: &http.Transport{
				DialContext:         (&net.Dialer{Timeout: env.ConnectTimeout}).DialContext,
				TLSHandshakeTimeout: env.ConnectTimeout,
			},
		}),
	}

	endpoint := os.Getenv("AWS_ENDPOINT_URL")
	if endpoint == "" {
		cfg, err := awsCfg.LoadDefaultConfig(ctx, opts...)
		return cfg, "", err
	}
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, r string, _ ...any) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL:               endpoint,
			HostnameImmutable: true,
			PartitionID:       "aws",
		}, nil
	})
	opts = append(opts, awsCfg.WithEndpointResolverWithOptions(resolver))
	cfg, err := awsCfg.LoadDefaultConfig(ctx, opts...)
	return cfg, endpoint, err
}
