// Package ingest consumes document events from Kafka and feeds them into the
// live index. Malformed or invalid documents are logged and skipped so the
// consume loop never stalls on bad input.
package ingest

import (
	"context"
	"log/slog"
	"strings"

	"github.com/web8-labs/ultrasearch/internal/engine/index"
	"github.com/web8-labs/ultrasearch/pkg/config"
	"github.com/web8-labs/ultrasearch/pkg/kafka"
)

// Sink receives validated documents from the consume loop.
type Sink interface {
	Add(doc index.Document)
}

// Invalidator is notified after each successful index mutation so cached
// query results are not served stale.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Consumer drains a document topic into the index.
type Consumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

// NewConsumer builds the consume pipeline: Kafka topic -> decode ->
// validate -> sink. invalidator may be nil when caching is disabled.
func NewConsumer(cfg config.KafkaConfig, sink Sink, invalidator Invalidator) *Consumer {
	c := &Consumer{
		logger: slog.Default().With("component", "ingest-consumer"),
	}
	c.consumer = kafka.NewConsumer(cfg, cfg.Topics.DocumentIngest, handleDocument(c, sink, invalidator))
	return c
}

// Start blocks consuming documents until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("ingest consumer starting")
	return c.consumer.Start(ctx)
}

// Close shuts down the underlying Kafka reader.
func (c *Consumer) Close() error {
	return c.consumer.Close()
}

func handleDocument(c *Consumer, sink Sink, invalidator Invalidator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		doc, err := kafka.DecodeJSON[index.Document](value)
		if err != nil {
			c.logger.Error("dropping malformed document event",
				"key", string(key),
				"error", err,
			)
			return nil
		}
		if strings.TrimSpace(doc.ID) == "" {
			c.logger.Error("dropping document event without id", "key", string(key))
			return nil
		}
		if doc.Type == "" {
			doc.Type = index.TypeDocument
		}
		if !doc.Type.Valid() {
			c.logger.Error("dropping document event with unknown type",
				"doc_id", doc.ID,
				"type", doc.Type,
			)
			return nil
		}

		sink.Add(doc)
		if invalidator != nil {
			invalidator.Invalidate(ctx)
		}
		c.logger.Debug("document indexed from stream", "doc_id", doc.ID)
		return nil
	}
}
