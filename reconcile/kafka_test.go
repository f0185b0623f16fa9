// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package reconcile_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grun-exchange/creditd/fault"
	"github.com/grun-exchange/creditd/reconcile"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if nil != w.err {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaNotifierPublishes(t *testing.T) {
	w := &recordingWriter{}
	k := reconcile.NewKafkaNotifierWithWriter(logger.New("reconcile"), w)

	n := notification("c1", reconcile.Failure)
	n.Reason = "external rejection"
	assert.Nil(t, k.NotifyOutcome(context.Background(), n), "notify")
	require.Equal(t, 1, len(w.messages), "one message")

	m := w.messages[0]
	assert.Equal(t, []byte("c1"), m.Key, "keyed by correlation id")

	var decoded map[string]interface{}
	require.Nil(t, json.Unmarshal(m.Value, &decoded), "json")
	assert.Equal(t, "FAILURE", decoded["outcome"], "outcome text")
	assert.Equal(t, "tx-c1", decoded["txRef"], "tx reference")
	assert.Equal(t, "external rejection", decoded["reason"], "reason")

	assert.Nil(t, k.Close(), "close")
	assert.True(t, w.closed, "writer closed")
}

func TestKafkaNotifierError(t *testing.T) {
	broken := errors.New("broker unavailable")
	k := reconcile.NewKafkaNotifierWithWriter(logger.New("reconcile"), &recordingWriter{err: broken})
	err := k.NotifyOutcome(context.Background(), notification("c1", reconcile.Success))
	assert.Equal(t, broken, err, "error passed back")
	assert.True(t, fault.IsRetryable(err), "transport errors are retried")
}

func TestNewKafkaNotifierArguments(t *testing.T) {
	_, err := reconcile.NewKafkaNotifier(logger.New("reconcile"), nil, "outcomes")
	assert.Equal(t, fault.MissingParameters, err, "no brokers")
	_, err = reconcile.NewKafkaNotifier(logger.New("reconcile"), []string{"localhost:9092"}, "")
	assert.Equal(t, fault.MissingParameters, err, "no topic")
}

func TestOutcomeText(t *testing.T) {
	for _, o := range []reconcile.Outcome{reconcile.Success, reconcile.Failure, reconcile.Expired} {
		text, err := o.MarshalText()
		assert.Nil(t, err, "marshal")
		var back reconcile.Outcome
		assert.Nil(t, back.UnmarshalText(text), "unmarshal")
		assert.Equal(t, o, back, "round trip %s", o)
	}
	var o reconcile.Outcome
	assert.Equal(t, fault.RecordCorrupt, o.UnmarshalText([]byte("MAYBE")), "unknown text")
}
