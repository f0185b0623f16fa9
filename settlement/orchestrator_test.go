// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package settlement_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grun-exchange/creditd/account"
	"github.com/grun-exchange/creditd/fault"
	"github.com/grun-exchange/creditd/ledger"
	"github.com/grun-exchange/creditd/reconcile"
	"github.com/grun-exchange/creditd/settlement"
)

func TestPurchaseConfirmed(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	h := newHarness(t, ctl)
	ctx := context.Background()

	h.signer.EXPECT().RequestAuthorisation(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, request settlement.TransferRequest) (string, error) {
			assert.NotEqual(t, "", request.CorrelationId, "correlation id")
			assert.Equal(t, h.assetId, request.AssetId, "asset")
			assert.Equal(t, uint64(10), request.Quantity, "quantity")
			assert.Equal(t, seller, request.Holder, "holder")
			assert.Equal(t, buyer1, request.Recipient, "recipient")
			return "token-1", nil
		}).Times(1)
	h.signer.EXPECT().SubmitTransfer(gomock.Any(), "token-1").Return("tx-1", nil).Times(1)
	h.signer.EXPECT().CheckFinality(gomock.Any(), "tx-1").Return(settlement.FinalisedSuccess, nil).Times(1)

	r, err := h.o.Purchase(ctx, buyer1, h.assetId, 10)
	require.Nil(t, err, "purchase")
	assert.Equal(t, settlement.Submitted, r.Phase, "submitted")
	assert.Equal(t, "tx-1", r.TxRef, "tx reference")
	assert.Equal(t, "token-1", r.Token, "token")
	assert.True(t, decimal.RequireFromString("125").Equal(r.Amount), "amount")
	assert.True(t, decimal.RequireFromString("2.5").Equal(r.Fee), "fee")
	assert.True(t, decimal.RequireFromString("127.5").Equal(r.Total), "total")
	assert.Equal(t, uint64(90), h.available(t), "reserved while pending")

	r, err = h.o.PollConfirmation(ctx, r.Id)
	require.Nil(t, err, "poll")
	assert.Equal(t, settlement.Confirmed, r.Phase, "confirmed")
	assert.Regexp(t, `^RCP-20260301-[0-9A-F]{8}$`, r.Receipt, "receipt")
	assert.Equal(t, 0, h.reservoir.Count(), "reservation consumed")

	// terminal: no further signer calls, no further notifications
	for i := 0; i < 3; i += 1 {
		again, err := h.o.PollConfirmation(ctx, r.Id)
		assert.Nil(t, err, "poll again")
		assert.Equal(t, r, again, "same outcome")
	}
	_, err = h.o.Authorise(ctx, r.Id)
	assert.Equal(t, fault.AlreadyTerminal, err, "authorise terminal")
	_, err = h.o.Submit(ctx, r.Id)
	assert.Equal(t, fault.AlreadyTerminal, err, "submit terminal")
	_, err = h.o.Cancel(ctx, r.Id)
	assert.Equal(t, fault.AlreadyTerminal, err, "cancel terminal")

	sent := h.outbox.list()
	require.Equal(t, 1, len(sent), "one notification")
	assert.Equal(t, r.Id, sent[0].CorrelationId, "correlation id")
	assert.Equal(t, "tx-1", sent[0].TxRef, "notified tx")
	assert.Equal(t, reconcile.Success, sent[0].Outcome, "outcome")
	assert.Equal(t, r.Receipt, sent[0].Receipt, "receipt notified")
}

func TestInitiateValidation(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	h := newHarness(t, ctl)
	ctx := context.Background()

	_, err := h.o.Initiate(ctx, buyer1, h.assetId, 0)
	assert.Equal(t, fault.InvalidQuantity, err, "zero")
	_, err = h.o.Initiate(ctx, account.Principal(""), h.assetId, 1)
	assert.Equal(t, fault.InvalidPrincipal, err, "no buyer")
	_, err = h.o.Initiate(ctx, buyer1, 999, 1)
	assert.Equal(t, fault.UnknownAsset, err, "unknown asset")
	_, err = h.o.Initiate(ctx, seller, h.assetId, 1)
	assert.Equal(t, fault.SelfPurchase, err, "self purchase")
	_, err = h.o.Initiate(ctx, buyer1, h.assetId, 101)
	assert.Equal(t, fault.InsufficientAvailability, err, "more than held")

	// an asset still pending review cannot be sold
	reviewed := ledger.New(logger.New("ledger"), h.store, h.registry, ledger.Configuration{
		Clock: h.clock.Now,
	})
	pending, err := reviewed.Mint(seller, ledger.MintArguments{
		ProjectName: "Pending Project",
		Expiry:      startTime.AddDate(1, 0, 0),
		Quantity:    10,
		Price:       unitPrice,
	})
	require.Nil(t, err, "mint pending")
	_, err = h.o.Initiate(ctx, buyer1, pending, 1)
	assert.Equal(t, fault.AssetNotForSale, err, "pending asset")
	assert.Nil(t, reviewed.ReviewAsset(admin, pending, ledger.Verify), "verify")
	_, err = h.o.Initiate(ctx, buyer1, pending, 1)
	assert.Nil(t, err, "verified asset")
}

func TestConcurrentInitiate(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	h := newHarness(t, ctl)
	ctx := context.Background()

	buyers := []account.Principal{buyer1, buyer2}
	quantities := []uint64{60, 50}
	errs := make([]error, 2)
	start := make(chan struct{})

	var wg sync.WaitGroup
	for i := range buyers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = h.o.Initiate(ctx, buyers[i], h.assetId, quantities[i])
		}(i)
	}
	close(start)
	wg.Wait()

	successes := 0
	reserved := uint64(0)
	for i, err := range errs {
		if nil == err {
			successes += 1
			reserved += quantities[i]
		} else {
			assert.Equal(t, fault.InsufficientAvailability, err, "loser error")
		}
	}
	assert.Equal(t, 1, successes, "exactly one reservation")
	assert.Equal(t, 100-reserved, h.available(t), "availability")
}

func TestAuthoriseRejected(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	h := newHarness(t, ctl)
	ctx := context.Background()

	h.signer.EXPECT().RequestAuthorisation(gomock.Any(), gomock.Any()).Return("", fault.ExternalRejection).Times(1)

	r, err := h.o.Initiate(ctx, buyer1, h.assetId, 30)
	require.Nil(t, err, "initiate")
	assert.Equal(t, uint64(70), h.available(t), "reserved")

	r, err = h.o.Authorise(ctx, r.Id)
	assert.Equal(t, fault.ExternalRejection, err, "rejection surfaces")
	assert.Equal(t, settlement.Failed, r.Phase, "failed")
	assert.Equal(t, uint64(100), h.available(t), "released with the transition")

	_, err = h.o.Authorise(ctx, r.Id)
	assert.Equal(t, fault.AlreadyTerminal, err, "no second attempt")

	sent := h.outbox.list()
	require.Equal(t, 1, len(sent), "one notification")
	assert.Equal(t, reconcile.Failure, sent[0].Outcome, "failure outcome")
}

func TestAuthoriseRetriesTimeouts(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	h := newHarness(t, ctl)
	ctx := context.Background()

	gomock.InOrder(
		h.signer.EXPECT().RequestAuthorisation(gomock.Any(), gomock.Any()).Return("", fault.ExternalTimeout).Times(2),
		h.signer.EXPECT().RequestAuthorisation(gomock.Any(), gomock.Any()).Return("token-2", nil).Times(1),
	)

	r, err := h.o.Initiate(ctx, buyer1, h.assetId, 5)
	require.Nil(t, err, "initiate")
	r, err = h.o.Authorise(ctx, r.Id)
	require.Nil(t, err, "authorise")
	assert.Equal(t, settlement.Authorised, r.Phase, "authorised")

	// repeat is a no-op
	again, err := h.o.Authorise(ctx, r.Id)
	assert.Nil(t, err, "repeat")
	assert.Equal(t, r, again, "unchanged")
}

func TestAuthoriseGivesUp(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	h := newHarness(t, ctl)
	ctx := context.Background()

	h.signer.EXPECT().RequestAuthorisation(gomock.Any(), gomock.Any()).Return("", fault.ExternalTimeout).Times(fastPolicy.Attempts)

	r, err := h.o.Initiate(ctx, buyer1, h.assetId, 5)
	require.Nil(t, err, "initiate")
	r, err = h.o.Authorise(ctx, r.Id)
	assert.Equal(t, fault.ExternalTimeout, err, "timeout")
	assert.Equal(t, settlement.Failed, r.Phase, "failed after attempts")
	assert.Equal(t, uint64(100), h.available(t), "released")
}

func TestSubmitFailsSynchronously(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	h := newHarness(t, ctl)
	ctx := context.Background()

	h.signer.EXPECT().RequestAuthorisation(gomock.Any(), gomock.Any()).Return("token-3", nil).Times(1)
	h.signer.EXPECT().SubmitTransfer(gomock.Any(), "token-3").Return("", fault.InsufficientBalance).Times(1)

	r, err := h.o.Initiate(ctx, buyer1, h.assetId, 5)
	require.Nil(t, err, "initiate")

	_, err = h.o.Submit(ctx, r.Id)
	assert.Equal(t, fault.InvalidTransition, err, "submit before authorise")

	_, err = h.o.Authorise(ctx, r.Id)
	require.Nil(t, err, "authorise")

	r, err = h.o.Submit(ctx, r.Id)
	assert.Equal(t, fault.InsufficientBalance, err, "ledger error surfaces")
	assert.Equal(t, settlement.Failed, r.Phase, "failed directly")
	assert.Equal(t, "", r.TxRef, "no tx reference")
	assert.Equal(t, uint64(100), h.available(t), "released")
}

func TestSubmittedExpires(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	h := newHarness(t, ctl)
	ctx := context.Background()

	h.signer.EXPECT().RequestAuthorisation(gomock.Any(), gomock.Any()).Return("token-4", nil).Times(1)
	h.signer.EXPECT().SubmitTransfer(gomock.Any(), "token-4").Return("tx-4", nil).Times(1)
	h.signer.EXPECT().CheckFinality(gomock.Any(), "tx-4").Return(settlement.FinalityPending, nil).Times(2)

	r, err := h.o.Purchase(ctx, buyer1, h.assetId, 60)
	require.Nil(t, err, "purchase")
	assert.Equal(t, uint64(40), h.available(t), "reserved")

	r, err = h.o.PollConfirmation(ctx, r.Id)
	require.Nil(t, err, "poll")
	assert.Equal(t, settlement.Submitted, r.Phase, "still pending")

	assert.Equal(t, 0, h.o.Sweep(ctx), "nothing to sweep yet")

	h.clock.Advance(16 * time.Minute)
	assert.Equal(t, 1, h.o.Sweep(ctx), "swept")

	r, err = h.o.Get(r.Id)
	require.Nil(t, err, "get")
	assert.Equal(t, settlement.Expired, r.Phase, "expired")
	assert.Equal(t, uint64(100), h.available(t), "availability restored")

	again, err := h.o.PollConfirmation(ctx, r.Id)
	assert.Nil(t, err, "poll after expiry")
	assert.Equal(t, settlement.Expired, again.Phase, "stays expired")

	sent := h.outbox.list()
	require.Equal(t, 1, len(sent), "one notification")
	assert.Equal(t, reconcile.Expired, sent[0].Outcome, "expired outcome")
	assert.Equal(t, "tx-4", sent[0].TxRef, "tx reference")
}

func TestSweepBeforeSubmission(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	h := newHarness(t, ctl)
	ctx := context.Background()

	r, err := h.o.Initiate(ctx, buyer1, h.assetId, 20)
	require.Nil(t, err, "initiate")

	h.clock.Advance(15 * time.Minute)
	assert.Equal(t, 1, h.o.Sweep(ctx), "deadline is inclusive")

	r, err = h.o.Get(r.Id)
	require.Nil(t, err, "get")
	assert.Equal(t, settlement.Expired, r.Phase, "expired without buyer action")
	assert.Equal(t, uint64(100), h.available(t), "released")
}

func TestSweepSkipsSubmissionInFlight(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	h := newHarness(t, ctl)
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})

	h.signer.EXPECT().RequestAuthorisation(gomock.Any(), gomock.Any()).Return("token-7", nil).Times(1)
	h.signer.EXPECT().SubmitTransfer(gomock.Any(), "token-7").DoAndReturn(
		func(ctx context.Context, token string) (string, error) {
			close(entered)
			<-release
			return "tx-broadcast", nil
		}).Times(1)
	h.signer.EXPECT().CheckFinality(gomock.Any(), "tx-broadcast").Return(settlement.FinalisedSuccess, nil).Times(1)

	r, err := h.o.Initiate(ctx, buyer1, h.assetId, 60)
	require.Nil(t, err, "initiate")
	_, err = h.o.Authorise(ctx, r.Id)
	require.Nil(t, err, "authorise")

	type result struct {
		r   *settlement.Record
		err error
	}
	done := make(chan result, 1)
	go func() {
		submitted, err := h.o.Submit(ctx, r.Id)
		done <- result{submitted, err}
	}()
	<-entered

	h.clock.Advance(15 * time.Minute)
	assert.Equal(t, 0, h.o.Sweep(ctx), "swept during submission")

	current, err := h.o.Get(r.Id)
	require.Nil(t, err, "get")
	assert.Equal(t, settlement.Authorised, current.Phase, "phase changed during submission")
	assert.Equal(t, uint64(40), h.available(t), "reservation released during submission")
	assert.Equal(t, 0, len(h.outbox.list()), "notified during submission")

	close(release)
	submitted := <-done
	require.Nil(t, submitted.err, "submit")
	assert.Equal(t, settlement.Submitted, submitted.r.Phase, "submitted")
	assert.Equal(t, "tx-broadcast", submitted.r.TxRef, "tx reference kept")

	// next sweep gives the late submission its finality check
	assert.Equal(t, 0, h.o.Sweep(ctx), "confirmed, not expired")

	current, err = h.o.Get(r.Id)
	require.Nil(t, err, "get")
	assert.Equal(t, settlement.Confirmed, current.Phase, "confirmed")

	sent := h.outbox.list()
	require.Equal(t, 1, len(sent), "one notification")
	assert.Equal(t, reconcile.Success, sent[0].Outcome, "outcome")
	assert.Equal(t, "tx-broadcast", sent[0].TxRef, "notified tx")
}

func TestFinalisedFailure(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	h := newHarness(t, ctl)
	ctx := context.Background()

	h.signer.EXPECT().RequestAuthorisation(gomock.Any(), gomock.Any()).Return("token-5", nil)
	h.signer.EXPECT().SubmitTransfer(gomock.Any(), "token-5").Return("tx-5", nil)
	h.signer.EXPECT().CheckFinality(gomock.Any(), "tx-5").Return(settlement.FinalisedFailure, nil).Times(1)

	r, err := h.o.Purchase(ctx, buyer1, h.assetId, 10)
	require.Nil(t, err, "purchase")
	r, err = h.o.PollConfirmation(ctx, r.Id)
	require.Nil(t, err, "poll")
	assert.Equal(t, settlement.Failed, r.Phase, "failed")
	assert.Equal(t, uint64(100), h.available(t), "released")
	assert.Equal(t, reconcile.Failure, h.outbox.list()[0].Outcome, "failure outcome")
}

func TestCancel(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	h := newHarness(t, ctl)
	ctx := context.Background()

	h.signer.EXPECT().RequestAuthorisation(gomock.Any(), gomock.Any()).Return("token-6", nil)
	h.signer.EXPECT().SubmitTransfer(gomock.Any(), "token-6").Return("tx-6", nil)

	r, err := h.o.Initiate(ctx, buyer1, h.assetId, 10)
	require.Nil(t, err, "initiate")
	r, err = h.o.Cancel(ctx, r.Id)
	require.Nil(t, err, "cancel")
	assert.Equal(t, settlement.Failed, r.Phase, "failed")
	assert.Equal(t, "cancelled", r.Reason, "reason")
	assert.Equal(t, uint64(100), h.available(t), "released")

	submitted, err := h.o.Purchase(ctx, buyer2, h.assetId, 10)
	require.Nil(t, err, "purchase")
	_, err = h.o.Cancel(ctx, submitted.Id)
	assert.Equal(t, fault.CannotCancelSubmitted, err, "submitted cannot be cancelled")

	_, err = h.o.Cancel(ctx, "no-such-id")
	assert.Equal(t, fault.UnknownSettlement, err, "unknown")
}

func TestPollerConfirms(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	h := newHarness(t, ctl)
	ctx := context.Background()

	// restart with a short poll interval
	h.o.Stop()
	h.o = settlement.New(logger.New("settlement"), h.store.Settlements, h.ledger, h.reservoir, h.signer, h.outbox, settlement.Configuration{
		PollInterval: 5 * time.Millisecond,
		FeeRate:      settlement.DefaultFeeRate,
		Retry:        fastPolicy,
		Clock:        h.clock.Now,
	})
	t.Cleanup(h.o.Stop)

	h.signer.EXPECT().RequestAuthorisation(gomock.Any(), gomock.Any()).Return("token-7", nil)
	h.signer.EXPECT().SubmitTransfer(gomock.Any(), "token-7").Return("tx-7", nil)
	gomock.InOrder(
		h.signer.EXPECT().CheckFinality(gomock.Any(), "tx-7").Return(settlement.FinalityPending, nil).Times(1),
		h.signer.EXPECT().CheckFinality(gomock.Any(), "tx-7").Return(settlement.FinalisedSuccess, nil).Times(1),
	)

	r, err := h.o.Purchase(ctx, buyer1, h.assetId, 10)
	require.Nil(t, err, "purchase")

	assert.Eventually(t, func() bool {
		r, err := h.o.Get(r.Id)
		return nil == err && settlement.Confirmed == r.Phase
	}, 5*time.Second, 5*time.Millisecond, "poller confirms")
}

func TestRestore(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	h := newHarness(t, ctl)
	ctx := context.Background()

	h.signer.EXPECT().RequestAuthorisation(gomock.Any(), gomock.Any()).Return("token-8", nil)
	h.signer.EXPECT().SubmitTransfer(gomock.Any(), "token-8").Return("tx-8", nil)
	h.signer.EXPECT().RequestAuthorisation(gomock.Any(), gomock.Any()).Return("", fault.ExternalRejection)

	submitted, err := h.o.Purchase(ctx, buyer1, h.assetId, 30)
	require.Nil(t, err, "purchase")
	initiated, err := h.o.Initiate(ctx, buyer2, h.assetId, 20)
	require.Nil(t, err, "initiate")
	failed, err := h.o.Purchase(ctx, buyer2, h.assetId, 5)
	assert.Equal(t, fault.ExternalRejection, err, "rejected")

	// restart over the same store
	h.o.Stop()
	h.outbox.items = nil
	h.start(t)

	assert.Equal(t, 2, h.reservoir.Count(), "active reservations restored")
	assert.Equal(t, uint64(50), h.available(t), "availability restored")

	for _, id := range []string{submitted.Id, initiated.Id, failed.Id} {
		_, err := h.o.Get(id)
		assert.Nil(t, err, "restored: %s", id)
	}

	sent := h.outbox.list()
	require.Equal(t, 1, len(sent), "undelivered outcome queued again")
	assert.Equal(t, failed.Id, sent[0].CorrelationId, "failed outcome")

	h.o.MarkNotified(failed.Id)
	h.o.Stop()
	h.outbox.items = nil
	h.start(t)
	assert.Equal(t, 0, len(h.outbox.list()), "delivered outcome not queued again")

	list := h.o.List(buyer2)
	assert.Equal(t, 2, len(list), "buyer list")
	assert.Equal(t, 3, len(h.o.List("")), "full list")
}
