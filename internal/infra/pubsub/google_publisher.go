package pubsub

import (
	"context"
	"fmt"
	"log/slog"

	"shopreg/internal/domain/service"

	"cloud.google.com/go/pubsub/v2"
	pubsubpb "cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

type googlePublisher struct {
	client *pubsub.Client
	topic  *pubsub.Publisher
	logger *slog.Logger
}

// NewGooglePubSubPublisher connects to projectID and publishes to topicID,
// which must already exist. Messages are ordered per user.
func NewGooglePubSubPublisher(
	ctx context.Context,
	projectID, topicID string,
	logger *slog.Logger,
	opts ...option.ClientOption,
) (service.EventPublisher, error) {
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create pubsub client")
	}

	topicName := fmt.Sprintf("projects/%s/topics/%s", projectID, topicID)
	if _, err := client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: topicName}); err != nil {
		_ = client.Close()

		return nil, errors.Wrapf(err, "topic %s is not available", topicName)
	}

	topic := client.Publisher(topicID)
	topic.EnableMessageOrdering = true

	logger.Info("Account events go to Google Pub/Sub", slog.String("topic", topicName))

	return &googlePublisher{
		client: client,
		topic:  topic,
		logger: logger,
	}, nil
}

// PublishAccountEvent blocks until the server acknowledges the message.
func (p *googlePublisher) PublishAccountEvent(ctx context.Context, event *service.AccountEvent) error {
	msg, err := newAccountMessage(event)
	if err != nil {
		return err
	}

	serverID, err := p.topic.Publish(ctx, &pubsub.Message{
		Data:        msg.data,
		Attributes:  msg.attributes,
		OrderingKey: msg.orderingKey,
	}).Get(ctx)
	if err != nil {
		// A failed publish pauses its ordering key until resumed.
		p.topic.ResumePublish(msg.orderingKey)

		return errors.Wrapf(err, "failed to publish %s event %s", event.Type, event.EventID)
	}

	p.logger.DebugContext(ctx, "Account event published",
		slog.String("provider", ProviderGoogle),
		slog.String("event_id", event.EventID),
		slog.String("server_id", serverID),
	)

	return nil
}

func (p *googlePublisher) Close() error {
	p.topic.Stop()

	return errors.WithStack(p.client.Close())
}
