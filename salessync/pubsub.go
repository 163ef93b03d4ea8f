package salessync

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/pubsub"
	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/hq_backend/config"
)

// PublishSyncRun hands a queued run off to the pub/sub topic so the push
// subscription executes it out of band.
func PublishSyncRun(ctx context.Context, runId uint, objectName string) error {
	topicName := strings.TrimSpace(os.Getenv("SALES_SYNC_TOPIC"))
	if topicName == "" {
		topicName = "sales-sync"
	}

	client, err := config.GetClient(ctx)
	if err != nil {
		return err
	}

	topic := client.Topic(topicName)
	if EnvBoolDefault("SALES_SYNC_CREATE_TOPIC", false) {
		topic, err = config.CreateTopicIfNotExists(client, topicName)
		if err != nil {
			return err
		}
	}

	payload := SyncPubSubPayload{
		RunId:      runId,
		ObjectName: objectName,
	}
	data, _ := json.Marshal(payload)
	res := topic.Publish(ctx, &pubsub.Message{Data: data})
	_, err = res.Get(ctx)
	return err
}

// PubSubPushHandler receives push deliveries from the sales-sync
// subscription. Malformed envelopes are acked with 204 so they are not
// redelivered forever.
func PubSubPushHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !EnvBoolDefault("ENABLE_SALES_SYNC_PUSH_ENDPOINT", true) {
			c.Status(204)
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(204)
			return
		}

		var envelope PubSubPushEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			c.Status(204)
			return
		}

		var payload SyncPubSubPayload
		if err := json.Unmarshal(envelope.Message.Data, &payload); err != nil {
			c.Status(204)
			return
		}
		if payload.RunId == 0 {
			c.Status(204)
			return
		}

		// A transient failure (db down, bucket unreachable) returns 500 so
		// pub/sub redelivers.
		if err := processSyncRun(c.Request.Context(), payload); err != nil {
			c.Status(500)
			return
		}
		c.Status(204)
	}
}

func EnvBoolDefault(key string, def bool) bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch val {
	case "true", "1", "yes", "y", "on":
		return true
	case "false", "0", "no", "n", "off":
		return false
	default:
		return def
	}
}
