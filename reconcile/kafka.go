// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reconcile

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/segmentio/kafka-go"

	"github.com/grun-exchange/creditd/fault"
)

// MessageWriter - the part of kafka.Writer used for publishing
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier - publish outcomes to a topic keyed by correlation id
type KafkaNotifier struct {
	log    *logger.L
	writer MessageWriter
}

// NewKafkaNotifier - connect a synchronous writer to the brokers
func NewKafkaNotifier(log *logger.L, brokers []string, topic string) (*KafkaNotifier, error) {
	if 0 == len(brokers) || "" == topic {
		return nil, fault.MissingParameters
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		BatchTimeout: 10 * time.Millisecond,
	}
	log.Infof("kafka brokers: %v  topic: %s", brokers, topic)
	return NewKafkaNotifierWithWriter(log, w), nil
}

// NewKafkaNotifierWithWriter - use an existing writer
func NewKafkaNotifierWithWriter(log *logger.L, writer MessageWriter) *KafkaNotifier {
	return &KafkaNotifier{
		log:    log,
		writer: writer,
	}
}

// NotifyOutcome - publish one outcome, returns once all replicas acknowledge
func (k *KafkaNotifier) NotifyOutcome(ctx context.Context, n Notification) error {
	value, err := json.Marshal(n)
	if nil != err {
		return err
	}
	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(n.CorrelationId),
		Value: value,
		Time:  n.Timestamp,
	})
	if nil != err {
		k.log.Debugf("publish: %s  error: %s", n.CorrelationId, err)
		return err
	}
	return nil
}

// Close - flush and release the writer
func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}
