// Package kafkaconsumer consumes record-change events and fans them out to
// the feature store, the parse cache, the cell index and the hotness tracker.
package kafkaconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/linnea-strand/wkt-spatial-tools/internal/cache/keys"
	"github.com/linnea-strand/wkt-spatial-tools/internal/invalidation"
	mylog "github.com/linnea-strand/wkt-spatial-tools/internal/logger"
	obs "github.com/linnea-strand/wkt-spatial-tools/internal/observability"
)

type FeatureDeleter interface {
	Delete(ctx context.Context, table string, ids ...string) error
}

type ParseInvalidator interface {
	Invalidate(table, id string)
}

type IndexRemover interface {
	Remove(table, id string)
}

type HotnessResetter interface {
	Reset(keys ...string)
}

type Consumer struct {
	cfg    Config
	logger *slog.Logger
	store  FeatureDeleter
	parsed ParseInvalidator
	index  IndexRemover
	hot    HotnessResetter
	dedupe *seqDedupe
	zlog   *zerolog.Logger
}

func New(cfg Config, logger *slog.Logger, store FeatureDeleter, parsed ParseInvalidator, index IndexRemover, hot HotnessResetter) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		cfg:    cfg,
		logger: logger,
		store:  store,
		parsed: parsed,
		index:  index,
		hot:    hot,
		dedupe: newSeqDedupe(cfg.DedupeSize),
	}
}

// Start joins the consumer group and processes record-change events until
// ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	if c.store == nil {
		return errors.New("kafkaconsumer: missing feature store")
	}

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Consumer.Group.Session.Timeout = c.cfg.SessionTimeout
	cfg.Consumer.Group.Heartbeat.Interval = c.cfg.Heartbeat
	cfg.Consumer.Group.Rebalance.Timeout = c.cfg.RebalanceTimeout
	if c.cfg.InitialOffsetOldest {
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	cfg.Consumer.Offsets.AutoCommit.Enable = true

	group, err := sarama.NewConsumerGroup(c.cfg.Brokers, c.cfg.GroupID, cfg)
	if err != nil {
		return fmt.Errorf("create consumer group: %w", err)
	}
	defer func() { _ = group.Close() }()

	zl := mylog.Build(mylog.Config{Level: "info", Component: "kafka_consumer"}, nil)
	c.zlog = &zl

	handler := &groupHandler{process: c.ProcessOne}

	c.logger.Info("record-change consumer starting",
		"brokers", c.cfg.Brokers, "topic", c.cfg.Topic, "group", c.cfg.GroupID)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("record-change consumer shutting down")
			return nil
		default:
			if err := group.Consume(ctx, []string{c.cfg.Topic}, handler); err != nil {
				c.logger.Error("consumer error", "err", err)
				c.zlog.Error().Err(err).
					Strs("brokers", c.cfg.Brokers).
					Str("topic", c.cfg.Topic).
					Msg("kafka consumer error")
				time.Sleep(2 * time.Second)
			}
		}
	}
}

// ProcessOne applies a single record-change message. Stale deliveries
// (sequence at or below the last applied for the table) are acknowledged
// without side effects.
func (c *Consumer) ProcessOne(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var ev invalidation.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		obs.IncConsumerError("decode")
		mylog.FromContext(ctx, c.zlog).Error().
			Str("kind", "decode").
			Str("topic", msg.Topic).
			Int32("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Msg("kafka error")
		return fmt.Errorf("json decode: %w", err)
	}
	if err := ev.Validate(); err != nil {
		obs.IncConsumerError("validate")
		// malformed events are logged and skipped, not retried
		mylog.FromContext(ctx, c.zlog).Warn().
			Err(err).
			Str("kind", "validate").
			Int64("offset", msg.Offset).
			Msg("dropping invalid event")
		return nil
	}

	if c.dedupe.stale(ev.Table, ev.Seq) {
		c.logger.Debug("stale event skipped", "table", ev.Table, "seq", ev.Seq)
		return nil
	}

	if err := c.store.Delete(ctx, ev.Table, ev.RowIDs...); err != nil {
		obs.IncConsumerError("store_delete")
		obs.ObserveInvalidation(ev.Op, err)
		mylog.FromContext(ctx, c.zlog).Error().
			Str("kind", "store_delete").
			Str("table", ev.Table).
			Int("rows", len(ev.RowIDs)).
			Msg("kafka error")
		return fmt.Errorf("feature store delete: %w", err)
	}

	hotKeys := make([]string, 0, len(ev.RowIDs))
	for _, id := range ev.RowIDs {
		if c.parsed != nil {
			c.parsed.Invalidate(ev.Table, id)
		}
		if c.index != nil {
			c.index.Remove(ev.Table, id)
		}
		hotKeys = append(hotKeys, keys.HotKey(ev.Table, id))
	}
	if c.hot != nil {
		c.hot.Reset(hotKeys...)
	}
	c.dedupe.applied(ev.Table, ev.Seq)

	obs.ObserveInvalidation(ev.Op, nil)
	c.logger.Debug("invalidated records", "table", ev.Table, "op", ev.Op, "rows", len(ev.RowIDs))

	mylog.FromContext(ctx, c.zlog).Info().
		Str("event", "invalidation").
		Str("op", ev.Op).
		Str("table", ev.Table).
		Int("rows", len(ev.RowIDs)).
		Uint64("seq", ev.Seq).
		Msg("invalidated records")

	return nil
}
