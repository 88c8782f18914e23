package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"model-mirror-service/internal/core/domain"
	output "model-mirror-service/internal/core/ports/output"
)

const (
	DefaultPollWait     = 20 * time.Second
	DefaultPollBatch    = 10
	DefaultReceivePause = 5 * time.Second
)

type LocalMirrorConfig struct {
	Wait         time.Duration
	Batch        int32
	ReceivePause time.Duration
}

// LocalMirror keeps a local folder in step with a bucket by consuming its
// storage event notifications from a queue. Delivery is at-least-once: a
// message is acknowledged only after every record in it has been applied, and
// every local action is idempotent so redelivery is harmless.
type LocalMirror struct {
	queue   output.MessageQueue
	objects output.ObjectReader
	local   output.LocalStore
	cfg     LocalMirrorConfig
}

func NewLocalMirror(queue output.MessageQueue, objects output.ObjectReader, local output.LocalStore, cfg LocalMirrorConfig) *LocalMirror {
	if cfg.Wait <= 0 {
		cfg.Wait = DefaultPollWait
	}
	if cfg.Batch <= 0 {
		cfg.Batch = DefaultPollBatch
	}
	if cfg.ReceivePause <= 0 {
		cfg.ReceivePause = DefaultReceivePause
	}
	return &LocalMirror{queue: queue, objects: objects, local: local, cfg: cfg}
}

// Run polls until ctx is cancelled. A message already being applied when
// ctx is cancelled is finished and acknowledged before Run returns.
func (m *LocalMirror) Run(ctx context.Context) error {
	log.WithField("wait", m.cfg.Wait).Info("local mirror started")
	defer log.Info("local mirror stopped")

	for {
		if ctx.Err() != nil {
			return nil
		}

		msgs, err := m.queue.Receive(ctx, m.cfg.Batch, m.cfg.Wait)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.WithError(err).Error("receive messages failed")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(m.cfg.ReceivePause):
			}
			continue
		}

		if len(msgs) == 0 {
			log.Debug("no messages found, checking again")
			continue
		}

		for _, msg := range msgs {
			// drain: finish the message even if a stop was requested meanwhile
			m.Handle(context.WithoutCancel(ctx), msg)
			if ctx.Err() != nil {
				return nil
			}
		}
	}
}

// Handle applies one message and acknowledges it on success. It reports
// whether the message was acknowledged.
func (m *LocalMirror) Handle(ctx context.Context, msg output.QueueMessage) bool {
	logger := log.WithField("message_id", msg.ID)

	err := m.apply(ctx, logger, msg.Body)
	switch {
	case errors.Is(err, domain.ErrMalformedEvent), errors.Is(err, domain.ErrUnsafeKey):
		// redelivery cannot fix these
		logger.WithError(err).Error("discarding message")
	case err != nil:
		logger.WithError(err).Warn("apply message failed, leaving it for redelivery")
		return false
	}

	if err := m.queue.Ack(ctx, msg.ReceiptHandle); err != nil {
		logger.WithError(err).Error("acknowledge message failed")
		return false
	}
	return true
}

type storageEvent struct {
	Event   string          `json:"Event"`
	Records []storageRecord `json:"Records"`
}

type storageRecord struct {
	EventName string `json:"eventName"`
	S3        *struct {
		Bucket struct {
			Name string `json:"name"`
		} `json:"bucket"`
		Object struct {
			Key string `json:"key"`
		} `json:"object"`
	} `json:"s3"`
}

func (m *LocalMirror) apply(ctx context.Context, logger *log.Entry, body string) error {
	var ev storageEvent
	if err := json.Unmarshal([]byte(body), &ev); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedEvent, err)
	}
	if ev.Event == "s3:TestEvent" {
		logger.Debug("ignoring test event")
		return nil
	}
	logger.WithField("records", len(ev.Records)).Info("message found")

	for _, rec := range ev.Records {
		if rec.S3 == nil {
			continue
		}
		// keys arrive form encoded
		key, err := url.QueryUnescape(rec.S3.Object.Key)
		if err != nil {
			return fmt.Errorf("%w: key %q: %v", domain.ErrMalformedEvent, rec.S3.Object.Key, err)
		}
		loc := domain.ArtifactLocation{Bucket: rec.S3.Bucket.Name, Key: key}

		switch {
		case strings.HasPrefix(rec.EventName, "ObjectCreated"):
			logger.WithField("key", key).Info("downloading object to local folder")
			err = m.local.Put(ctx, key, func(w io.WriterAt) error {
				_, err := m.objects.Download(ctx, loc, w)
				return err
			})
		case strings.HasPrefix(rec.EventName, "ObjectRemoved"):
			logger.WithField("key", key).Info("deleting object from local folder")
			err = m.local.Remove(ctx, key)
		default:
			logger.WithField("event", rec.EventName).Debug("ignoring event")
		}
		if err != nil {
			return err
		}
	}
	return nil
}
