// Package consumer removes dangling media metadata when objects disappear
// from the bucket out of band. A metadata row pointing at a missing object is
// the inconsistency direction the write path never tolerates, so the GCS
// OBJECT_DELETE notification feed closes the gap.
package consumer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/nyumbalink/listings-backend/pkg/logger"
	"github.com/nyumbalink/listings-backend/pkg/metrics"
)

const (
	objectDeleteEvent    = "OBJECT_DELETE"
	payloadFormatJSONAPI = "JSON_API_V1"
)

type deletionRepository interface {
	DeleteByGCSKey(ctx context.Context, gcsKey string) (int64, error)
}

// DeletionConsumer watches Pub/Sub for GCS OBJECT_DELETE notifications and
// drops the matching metadata rows.
type DeletionConsumer struct {
	repo         deletionRepository
	subscription *pubsub.Subscriber
	metrics      *metrics.ConsumerMetrics
	logg         *logger.Logger
}

// NewDeletionConsumer wires the dependencies required for dangling-row cleanup.
func NewDeletionConsumer(repo deletionRepository, subscription *pubsub.Subscriber, mm *metrics.ConsumerMetrics, logg *logger.Logger) (*DeletionConsumer, error) {
	if repo == nil {
		return nil, errors.New("media repository is required")
	}
	if subscription == nil {
		return nil, errors.New("media deletion subscription is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &DeletionConsumer{
		repo:         repo,
		subscription: subscription,
		metrics:      mm,
		logg:         logg,
	}, nil
}

const consumerName = "media-deletion"

// Run processes deletion notifications until the context is canceled.
func (c *DeletionConsumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		start := time.Now()
		result := c.process(ctx, msg)
		c.metrics.ObserveHandle(consumerName, time.Since(start))
		if result.nack {
			c.metrics.IncOutcome(consumerName, "retry")
			msg.Nack()
			return
		}
		c.metrics.IncOutcome(consumerName, result.outcome)
		msg.Ack()
	})
}

type processResult struct {
	ack     bool
	nack    bool
	outcome string
}

func (c *DeletionConsumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	attrs := parseAttributes(msg.Attributes)
	fields := c.buildLogFields(msg.ID, attrs, nil)
	logCtx := c.logg.WithFields(ctx, fields)

	if attrs.EventType != objectDeleteEvent {
		c.logg.Info(logCtx, "skipping non-delete event")
		return processResult{ack: true, outcome: "skipped"}
	}
	if attrs.PayloadFormat != payloadFormatJSONAPI {
		c.logg.Warn(logCtx, "unsupported payload format")
		return processResult{ack: true, outcome: "skipped"}
	}

	payload, err := decodePayload(msg.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to decode payload", err)
		return processResult{ack: true, outcome: "malformed"}
	}

	var gcs gcsPayload
	if err := json.Unmarshal(payload, &gcs); err != nil {
		fields = c.buildLogFields(msg.ID, attrs, nil)
		fields["payload_preview"] = previewBytes(payload, 800)
		fields["payload_len"] = len(payload)
		logCtx = c.logg.WithFields(ctx, fields)
		c.logg.Error(logCtx, "failed to unmarshal payload", err)
		return processResult{ack: true, outcome: "malformed"}
	}

	if strings.TrimSpace(gcs.Name) == "" {
		fields = c.buildLogFields(msg.ID, attrs, &gcs)
		logCtx = c.logg.WithFields(ctx, fields)
		c.logg.Error(logCtx, "payload missing gcs object name", fmt.Errorf("empty name"))
		return processResult{ack: true, outcome: "malformed"}
	}

	fields = c.buildLogFields(msg.ID, attrs, &gcs)
	logCtx = c.logg.WithFields(ctx, fields)

	affected, err := c.repo.DeleteByGCSKey(logCtx, gcs.Name)
	if err != nil {
		c.logg.Error(logCtx, "dangling metadata cleanup failed", err)
		if isTransientDBError(err) {
			return processResult{nack: true}
		}
		return processResult{ack: true, outcome: "error"}
	}

	if affected == 0 {
		// Normal case: the delete came from our own coordinator, which
		// removed the row already.
		c.logg.Info(logCtx, "no metadata row for deleted object")
		return processResult{ack: true, outcome: "noop"}
	}

	c.logg.Info(logCtx, "removed dangling media metadata")
	return processResult{ack: true, outcome: "deleted"}
}

func (c *DeletionConsumer) buildLogFields(messageID string, attrs gcsAttributes, payload *gcsPayload) map[string]any {
	fields := map[string]any{
		"message_id": messageID,
		"event_type": attrs.EventType,
		"bucket":     firstNonEmpty(attrs.BucketID, gcsBucket(payload)),
	}
	if payload != nil {
		fields["gcs_key"] = payload.Name
	}
	return fields
}

func gcsBucket(p *gcsPayload) string {
	if p == nil {
		return ""
	}
	return p.Bucket
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func parseAttributes(attrs map[string]string) gcsAttributes {
	return gcsAttributes{
		EventType:     attrs["eventType"],
		BucketID:      attrs["bucketId"],
		ObjectID:      attrs["objectId"],
		PayloadFormat: attrs["payloadFormat"],
	}
}

type gcsAttributes struct {
	EventType     string
	BucketID      string
	ObjectID      string
	PayloadFormat string
}

type gcsPayload struct {
	Name       string `json:"name"`
	Bucket     string `json:"bucket"`
	Generation string `json:"generation"`
}

func decodePayload(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("payload empty")
	}
	if decoded, err := base64.StdEncoding.DecodeString(string(data)); err == nil {
		return decoded, nil
	}
	return data, nil
}

func isTransientDBError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

func previewBytes(b []byte, max int) string {
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "...(truncated)"
}
