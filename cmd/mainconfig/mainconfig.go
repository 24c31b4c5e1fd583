// Package mainconfig builds the collaborators shared by the binaries from a
// loaded configuration.
package mainconfig

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/richcards/leadrelay/internal/capi"
	appconfig "github.com/richcards/leadrelay/internal/config"
	"github.com/richcards/leadrelay/internal/ids"
	"github.com/richcards/leadrelay/internal/intake"
	"github.com/richcards/leadrelay/internal/notify"
	"github.com/richcards/leadrelay/internal/observability/metrics"
	"github.com/richcards/leadrelay/internal/relay"
	"github.com/richcards/leadrelay/internal/submissions"
	"github.com/richcards/leadrelay/pkg/logging"
)

// LoadAWSConfig centralizes AWS SDK initialization so every binary shares the
// same LocalStack/production wiring.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, err
	}

	if endpoint := cfg.AWSEndpointOverride; endpoint != "" {
		awsCfg.EndpointResolverWithOptions = aws.EndpointResolverWithOptionsFunc(
			func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
				switch service {
				case dynamodb.ServiceID, sesv2.ServiceID:
					return aws.Endpoint{
						URL:           endpoint,
						PartitionID:   "aws",
						SigningRegion: region,
					}, nil
				default:
					return aws.Endpoint{}, &aws.EndpointNotFoundError{}
				}
			},
		)
	}

	return awsCfg, nil
}

// NewEmailSender returns the sender selected by EMAIL_PROVIDER.
func NewEmailSender(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (notify.EmailSender, error) {
	switch cfg.EmailProvider {
	case appconfig.EmailProviderSES:
		client := sesv2.NewFromConfig(awsCfg, func(o *sesv2.Options) {
			if cfg.SESRegion != "" {
				o.Region = cfg.SESRegion
			}
		})
		return notify.NewSESSender(client, notify.SESConfig{
			FromEmail: cfg.FromEmail,
			FromName:  cfg.FromName,
		}, logger), nil
	case appconfig.EmailProviderSendGrid:
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.FromEmail,
			FromName:  cfg.FromName,
		}, logger)
		if sender == nil {
			return nil, &appconfig.MissingError{Keys: []string{"SENDGRID_API_KEY"}}
		}
		return sender, nil
	case appconfig.EmailProviderStub:
		return notify.NewStubEmailSender(logger), nil
	default:
		return nil, fmt.Errorf("mainconfig: unknown EMAIL_PROVIDER %q", cfg.EmailProvider)
	}
}

// NewSubmissionStore returns the store selected by SUBMISSIONS_BACKEND, or nil
// when persistence is disabled. The returned close func is never nil.
func NewSubmissionStore(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (submissions.Store, func(), error) {
	noop := func() {}
	switch cfg.SubmissionsBackend {
	case appconfig.BackendDynamoDB:
		if cfg.DynamoDBTableName == "" {
			return nil, noop, &appconfig.MissingError{Keys: []string{"DYNAMODB_TABLE_NAME"}}
		}
		return submissions.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.DynamoDBTableName, logger), noop, nil
	case appconfig.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("mainconfig: connect postgres: %w", err)
		}
		return submissions.NewPostgresStore(pool), pool.Close, nil
	case appconfig.BackendMemory:
		return submissions.NewMemoryStore(), noop, nil
	case appconfig.BackendNone, "":
		logger.Warn("submission persistence disabled")
		return nil, noop, nil
	default:
		return nil, noop, fmt.Errorf("mainconfig: unknown SUBMISSIONS_BACKEND %q", cfg.SubmissionsBackend)
	}
}

// NewCAPIClient builds the Conversions API client from the Meta settings.
func NewCAPIClient(cfg *appconfig.Config, logger *logging.Logger) *capi.Client {
	return capi.NewClient(capi.Config{
		PixelID:       cfg.MetaPixelID,
		AccessToken:   cfg.MetaAccessToken,
		TestEventCode: cfg.MetaTestEventCode,
		APIVersion:    cfg.MetaAPIVersion,
		BaseURL:       cfg.MetaGraphBaseURL,
		Timeout:       cfg.HTTPTimeout,
	}, logger)
}

// NewIntakeHandler wires the contact-form pipeline.
func NewIntakeHandler(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, m *metrics.PipelineMetrics, logger *logging.Logger) (*intake.Handler, func(), error) {
	email, err := NewEmailSender(cfg, awsCfg, logger)
	if err != nil {
		return nil, func() {}, err
	}
	store, closeStore, err := NewSubmissionStore(ctx, cfg, awsCfg, logger)
	if err != nil {
		return nil, closeStore, err
	}

	capiClient := NewCAPIClient(cfg, logger)
	if !capiClient.Configured() {
		logger.Warn("meta conversions API not configured, lead events disabled")
	}

	svc := intake.NewService(intake.ServiceConfig{
		Store:     store,
		Email:     email,
		Forwarder: capiClient,
		IDs:       ids.UUIDv7{},
		Options: intake.Options{
			AdminEmail: cfg.AdminEmail,
			FromEmail:  cfg.FromEmail,
			Links: notify.ContactLinks{
				WhatsAppNumber: cfg.WhatsAppNumber,
				WhatsAppURL:    cfg.WhatsAppURL,
				TikTokUsername: cfg.TikTokUsername,
				TikTokURL:      cfg.TikTokURL,
			},
			AbortOnAdminEmailFailure: cfg.AbortOnAdminEmailFailure,
		},
		Metrics: m,
		Logger:  logger,
	})
	return intake.NewHandler(svc, cfg.IsDevelopment(), m, logger), closeStore, nil
}

// NewRelayHandler wires the conversion relay.
func NewRelayHandler(cfg *appconfig.Config, m *metrics.PipelineMetrics, logger *logging.Logger) *relay.Handler {
	svc := relay.NewService(NewCAPIClient(cfg, logger), ids.UUIDv7{}, nil, m, logger)
	return relay.NewHandler(svc, cfg.IsDevelopment(), m, logger)
}
