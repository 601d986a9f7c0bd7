package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"go_canteen/canteenapi/middleware/logkafka"
)

// StartLogIndexer consumes the request-log topic and bulk-indexes entries
// into Elasticsearch. It blocks until ctx is cancelled, so callers run it in
// its own goroutine. Addresses for Elasticsearch come from the standard
// ELASTICSEARCH_URL environment handling of the client.
func StartLogIndexer(ctx context.Context, brokers []string, topic string) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: "canteen-es-pusher",
	})
	defer reader.Close()

	es, err := elasticsearch.NewDefaultClient()
	if err != nil {
		return err
	}

	logrus.Info("starting Kafka → Elasticsearch log indexer")

	const batchSize = 100
	const batchTimeout = 5 * time.Second

	batch := make([]logkafka.LogEntry, 0, batchSize)
	lastFlush := time.Now()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		var buf bytes.Buffer
		for _, entry := range batch {
			doc, err := json.Marshal(entry)
			if err != nil {
				logrus.Warnf("marshal log entry: %v", err)
				continue
			}
			buf.WriteString("{\"index\":{}}\n")
			buf.Write(doc)
			buf.WriteString("\n")
		}
		res, err := es.Bulk(bytes.NewReader(buf.Bytes()), es.Bulk.WithIndex("canteen-logs"))
		if err != nil {
			logrus.Warnf("bulk index: %v", err)
		} else {
			res.Body.Close()
			logrus.Debugf("indexed batch of %d log entries", len(batch))
		}
		batch = batch[:0]
		lastFlush = time.Now()
	}

	for {
		readCtx, cancel := context.WithTimeout(ctx, batchTimeout)
		m, err := reader.ReadMessage(readCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				flush()
				return ctx.Err()
			}
			// timed out waiting for messages; flush what we have
			flush()
			continue
		}

		var entry logkafka.LogEntry
		if err := json.Unmarshal(m.Value, &entry); err != nil {
			logrus.Warnf("decode log entry: %v", err)
			continue
		}
		if entry.Timestamp == "" {
			entry.Timestamp = time.Now().Format(time.RFC3339)
		}

		batch = append(batch, entry)
		if len(batch) >= batchSize || time.Since(lastFlush) > batchTimeout {
			flush()
		}
	}
}
