package journal

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/atelier/internal/remote"
	"github.com/roach88/atelier/internal/sandbox"
	"github.com/roach88/atelier/internal/series"
)

const testAccount = "alice.near"

func testJournal(caller remote.Caller) (*Journal, *MemKV, *sandbox.Bridge) {
	kv := NewMemKV()
	bridge := sandbox.NewBridge()
	return New(kv, caller, bridge, "market.test", "1"), kv, bridge
}

func submitRequest() SubmitRequest {
	return SubmitRequest{
		AccountID: testAccount,
		Name:      "My-Series",
		Price:     "5",
		Src:       "@params\n{}\n@params\ndraw()",
		Params:    &series.ParamSet{MaxSupply: "10"},
	}
}

func TestSubmitPersistsRecordBeforeCall(t *testing.T) {
	fake := remote.NewFake()
	fake.Fail(remote.MethodSeriesCreate, errors.New("network down"))

	jnl, _, _ := testJournal(fake)

	name, err := jnl.Submit(context.Background(), submitRequest())
	require.Error(t, err)
	assert.Equal(t, "my-series", name)

	// The remote call failed, but the record was written first.
	record, ok, err := jnl.Pending(context.Background(), testAccount)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "my-series", record.SeriesName)
	assert.Equal(t, "@params\n{}\n@params\ndraw()", record.Src)
	assert.Zero(t, record.Attempts)
}

func TestSubmitNormalizesName(t *testing.T) {
	fake := remote.NewFake()
	fake.Respond(remote.MethodSeriesCreate, map[string]any{})

	jnl, _, _ := testJournal(fake)

	name, err := jnl.Submit(context.Background(), submitRequest())
	require.NoError(t, err)
	assert.Equal(t, "my-series", name)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, remote.MethodSeriesCreate, calls[0].Method)
	assert.Equal(t, "1", calls[0].Deposit)

	args, ok := calls[0].Args.(createArgs)
	require.True(t, ok)
	assert.Equal(t, "my-series", args.SeriesName)
	assert.Equal(t, "25", args.Bytes)
	assert.Equal(t, "10", args.Params.MaxSupply)
}

func TestSubmitSellNowApprovesMarket(t *testing.T) {
	fake := remote.NewFake()
	fake.Respond(remote.MethodSeriesCreateAndApprove, map[string]any{})

	jnl, _, _ := testJournal(fake)

	req := submitRequest()
	req.SellNow = true

	_, err := jnl.Submit(context.Background(), req)
	require.NoError(t, err)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, remote.MethodSeriesCreateAndApprove, calls[0].Method)

	args, ok := calls[0].Args.(createAndApproveArgs)
	require.True(t, ok)
	assert.Equal(t, "market.test", args.AccountID)

	var msg saleConditions
	require.NoError(t, json.Unmarshal([]byte(args.Msg), &msg))
	require.Len(t, msg.SaleConditions, 1)
	assert.Equal(t, "near", msg.SaleConditions[0].FTTokenID)
	assert.Equal(t, "5", msg.SaleConditions[0].Price)
}

func TestSubmitValidationNeverJournals(t *testing.T) {
	tests := []struct {
		name  string
		apply func(*SubmitRequest)
	}{
		{"bad name", func(r *SubmitRequest) { r.Name = "bad name" }},
		{"bad price", func(r *SubmitRequest) { r.Price = "5.5" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := remote.NewFake()
			jnl, _, _ := testJournal(fake)

			req := submitRequest()
			tt.apply(&req)

			_, err := jnl.Submit(context.Background(), req)
			require.Error(t, err)

			var verr *series.ValidationError
			assert.ErrorAs(t, err, &verr)

			// No record and no remote call.
			_, ok, err := jnl.Pending(context.Background(), testAccount)
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Empty(t, fake.Calls())
		})
	}
}

func TestReconcileNoRecord(t *testing.T) {
	jnl, _, _ := testJournal(remote.NewFake())

	outcome, err := jnl.Reconcile(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAbsent, outcome)
}

func TestReconcileConfirmedDeletesRecord(t *testing.T) {
	fake := remote.NewFake()
	fake.Respond(remote.MethodSeriesCreate, map[string]any{})
	fake.Respond(remote.MethodSeriesData, map[string]any{"src": "@params\n{}\n@params\ndraw()"})

	jnl, _, _ := testJournal(fake)

	_, err := jnl.Submit(context.Background(), submitRequest())
	require.NoError(t, err)

	outcome, err := jnl.Reconcile(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, OutcomeConfirmed, outcome)

	_, ok, err := jnl.Pending(context.Background(), testAccount)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReconcileMismatchReissues(t *testing.T) {
	fake := remote.NewFake()
	fake.Respond(remote.MethodSeriesCreate, map[string]any{})
	fake.Respond(remote.MethodSeriesData, map[string]any{"src": "stale remote copy"})
	fake.Respond(remote.MethodSeriesUpdate, map[string]any{})

	jnl, _, bridge := testJournal(fake)

	_, err := jnl.Submit(context.Background(), submitRequest())
	require.NoError(t, err)

	outcome, err := jnl.Reconcile(context.Background(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, OutcomeReissued, outcome)

	// Record survives with an incremented attempt count.
	record, ok, err := jnl.Pending(context.Background(), testAccount)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, record.Attempts)

	// The update carries the original snapshot with no deposit.
	calls := fake.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, remote.MethodSeriesUpdate, calls[2].Method)
	assert.Equal(t, "", calls[2].Deposit)

	args, argsOK := calls[2].Args.(updateArgs)
	require.True(t, argsOK)
	assert.Equal(t, "my-series", args.SeriesName)
	assert.Equal(t, "@params\n{}\n@params\ndraw()", args.Src)

	entries := bridge.Entries()
	require.NotEmpty(t, entries)
	assert.Equal(t, "log: series updated my-series (attempt 1)", entries[len(entries)-1].Text)
}

func TestReconcileAttemptsAccumulate(t *testing.T) {
	fake := remote.NewFake()
	fake.Respond(remote.MethodSeriesCreate, map[string]any{})
	fake.Respond(remote.MethodSeriesData, map[string]any{"src": "never matches"})
	fake.Respond(remote.MethodSeriesUpdate, map[string]any{})

	jnl, _, _ := testJournal(fake)

	_, err := jnl.Submit(context.Background(), submitRequest())
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		outcome, err := jnl.Reconcile(context.Background(), testAccount)
		require.NoError(t, err)
		assert.Equal(t, OutcomeReissued, outcome)
	}

	record, ok, err := jnl.Pending(context.Background(), testAccount)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, record.Attempts)
}

func TestReconcileViewFailureKeepsRecord(t *testing.T) {
	fake := remote.NewFake()
	fake.Respond(remote.MethodSeriesCreate, map[string]any{})
	fake.Fail(remote.MethodSeriesData, errors.New("gateway timeout"))

	jnl, _, _ := testJournal(fake)

	_, err := jnl.Submit(context.Background(), submitRequest())
	require.NoError(t, err)

	_, err = jnl.Reconcile(context.Background(), testAccount)
	require.Error(t, err)

	_, ok, err := jnl.Pending(context.Background(), testAccount)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPendingKeyNamespacedByAccount(t *testing.T) {
	fake := remote.NewFake()
	fake.Respond(remote.MethodSeriesCreate, map[string]any{})

	jnl, kv, _ := testJournal(fake)

	_, err := jnl.Submit(context.Background(), submitRequest())
	require.NoError(t, err)

	_, ok, err := kv.Get(context.Background(), KeyPrefix+testAccount)
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = jnl.Pending(context.Background(), "someone-else.near")
	require.NoError(t, err)
	assert.False(t, ok)
}
