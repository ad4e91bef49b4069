package aws

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// Notification is one SNS message. Attributes are sent as String message
// attributes so subscriptions can filter on them. DedupID and GroupID are
// only sent to FIFO topics.
type Notification struct {
	TopicARN   string
	Body       []byte
	Attributes map[string]string
	DedupID    string
	GroupID    string
}

// SNSPublisher publishes a single notification.
type SNSPublisher interface {
	Publish(ctx context.Context, n Notification) error
}

type SNSClient struct {
	client *sns.Client
}

func NewSNSClient(cfg sdkaws.Config) *SNSClient {
	return &SNSClient{client: sns.NewFromConfig(cfg)}
}

func (s *SNSClient) Publish(ctx context.Context, n Notification) error {
	input, err := publishInput(n)
	if err != nil {
		return err
	}
	if _, err := s.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("sns publish failed for topic %s: %w", n.TopicARN, err)
	}
	return nil
}

func publishInput(n Notification) (*sns.PublishInput, error) {
	if n.TopicARN == "" {
		return nil, errors.New("empty topicArn")
	}
	input := &sns.PublishInput{
		TopicArn: sdkaws.String(n.TopicARN),
		Message:  sdkaws.String(string(n.Body)),
	}

	for k, v := range n.Attributes {
		// SNS rejects empty attribute values.
		if v == "" {
			continue
		}
		if input.MessageAttributes == nil {
			input.MessageAttributes = map[string]types.MessageAttributeValue{}
		}
		input.MessageAttributes[k] = types.MessageAttributeValue{
			DataType:    sdkaws.String("String"),
			StringValue: sdkaws.String(v),
		}
	}

	if strings.HasSuffix(n.TopicARN, ".fifo") {
		if n.GroupID == "" {
			return nil, fmt.Errorf("fifo topic %s needs a message group id", n.TopicARN)
		}
		input.MessageGroupId = sdkaws.String(n.GroupID)
		if n.DedupID != "" {
			input.MessageDeduplicationId = sdkaws.String(n.DedupID)
		}
	}
	return input, nil
}
