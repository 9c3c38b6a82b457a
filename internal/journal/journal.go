// Package journal tracks an in-flight series mutation until the
// authoritative remote state confirms it. The record is written before the
// risky call and only removed after positive confirmation, so a crash or
// page reload mid-call still leaves a recoverable trail.
package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/atelier/internal/remote"
	"github.com/roach88/atelier/internal/sandbox"
	"github.com/roach88/atelier/internal/series"
)

// KeyPrefix namespaces pending-update records per account.
const KeyPrefix = "__PENDING_SERIES_UPDATE__"

// PendingUpdate is the persisted record of an unconfirmed mutation.
// Attempts counts unresolved reconciliation passes; it is reported but not
// consulted to halt retries.
type PendingUpdate struct {
	SeriesName string `json:"series_name"`
	Src        string `json:"src"`
	Attempts   int    `json:"attempts"`
}

// KV is the opaque persistence collaborator the journal writes through.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
}

// Outcome reports what a reconciliation pass concluded.
type Outcome string

const (
	// OutcomeAbsent means no pending record existed for the account.
	OutcomeAbsent Outcome = "absent"
	// OutcomeConfirmed means the remote source matched the snapshot and
	// the record was deleted.
	OutcomeConfirmed Outcome = "confirmed"
	// OutcomeReissued means the mutation was re-issued; the record stays.
	OutcomeReissued Outcome = "reissued"
)

// Journal drives the pending-update state machine for one contract.
type Journal struct {
	kv       KV
	caller   remote.Caller
	bridge   *sandbox.Bridge
	marketID string
	deposit  string
}

// New creates a journal. Reconciliation outcomes are reported through the
// bridge's console log.
func New(kv KV, caller remote.Caller, bridge *sandbox.Bridge, marketID, deposit string) *Journal {
	return &Journal{
		kv:       kv,
		caller:   caller,
		bridge:   bridge,
		marketID: marketID,
		deposit:  deposit,
	}
}

// SubmitRequest describes a series creation to submit.
type SubmitRequest struct {
	AccountID string
	Name      string
	Price     string
	Src       string
	Params    *series.ParamSet

	// SellNow lists the series for sale in the same call.
	SellNow bool
}

// createArgs is the payload for series_create.
type createArgs struct {
	SeriesName string              `json:"series_name"`
	Bytes      string              `json:"bytes"`
	Params     series.CreateParams `json:"params"`
}

// createAndApproveArgs extends createArgs with the market approval.
type createAndApproveArgs struct {
	createArgs
	AccountID string `json:"account_id"`
	Msg       string `json:"msg"`
}

type saleConditions struct {
	SaleConditions []saleCondition `json:"sale_conditions"`
}

type saleCondition struct {
	FTTokenID string `json:"ft_token_id"`
	Price     string `json:"price"`
}

// Submit validates the request, persists the pending record, and issues
// the creation call. Validation failures never create a record; remote
// failures leave the record in place for the next reconciliation pass.
//
// The returned name is the normalized series name actually submitted.
func (j *Journal) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	name := series.NormalizeName(req.Name)
	if err := series.ValidateName(name); err != nil {
		return "", err
	}
	if err := series.ValidatePrice(req.Price); err != nil {
		return "", err
	}

	// Persist before the remote call: a crash mid-call must still leave a
	// recoverable record.
	record := PendingUpdate{SeriesName: name, Src: req.Src, Attempts: 0}
	if err := j.put(ctx, req.AccountID, record); err != nil {
		return "", fmt.Errorf("submit %s: persist pending record: %w", name, err)
	}

	args := createArgs{
		SeriesName: name,
		Bytes:      fmt.Sprintf("%d", len(req.Src)),
		Params:     req.Params.Summarize(),
	}

	method := remote.MethodSeriesCreate
	var err error
	if req.SellNow {
		msg, merr := json.Marshal(saleConditions{
			SaleConditions: []saleCondition{{FTTokenID: "near", Price: req.Price}},
		})
		if merr != nil {
			return "", fmt.Errorf("submit %s: encode sale conditions: %w", name, merr)
		}
		method = remote.MethodSeriesCreateAndApprove
		_, err = j.caller.Call(ctx, method, createAndApproveArgs{
			createArgs: args,
			AccountID:  j.marketID,
			Msg:        string(msg),
		}, j.deposit)
	} else {
		_, err = j.caller.Call(ctx, method, args, j.deposit)
	}
	if err != nil {
		// The record stays: reconciliation on next startup resolves it.
		return name, remote.WrapError(method, err)
	}

	return name, nil
}

// seriesDataArgs is the payload for series_data.
type seriesDataArgs struct {
	SeriesName string `json:"series_name"`
}

// seriesData is the authoritative remote record.
type seriesData struct {
	Src string `json:"src"`
}

// updateArgs is the payload for series_update.
type updateArgs struct {
	SeriesName string `json:"series_name"`
	Src        string `json:"src"`
}

// Reconcile checks the pending record for an account against authoritative
// remote state. A matching source deletes the record; a mismatch re-issues
// the update (same target, same snapshot), increments Attempts, and keeps
// the record for the next pass. Outcomes are reported through the bridge
// console log.
func (j *Journal) Reconcile(ctx context.Context, accountID string) (Outcome, error) {
	record, ok, err := j.get(ctx, accountID)
	if err != nil {
		return OutcomeAbsent, fmt.Errorf("reconcile: read pending record: %w", err)
	}
	if !ok {
		return OutcomeAbsent, nil
	}

	result, err := j.caller.View(ctx, remote.MethodSeriesData, seriesDataArgs{SeriesName: record.SeriesName})
	if err != nil {
		j.bridge.Errorf("reconcile %s: %v", record.SeriesName, err)
		return OutcomeAbsent, remote.WrapError(remote.MethodSeriesData, err)
	}

	var data seriesData
	if err := json.Unmarshal(result, &data); err != nil {
		return OutcomeAbsent, fmt.Errorf("reconcile %s: decode series data: %w", record.SeriesName, err)
	}

	if data.Src == record.Src {
		if err := j.kv.Del(ctx, KeyPrefix+accountID); err != nil {
			return OutcomeConfirmed, fmt.Errorf("reconcile %s: delete confirmed record: %w", record.SeriesName, err)
		}
		return OutcomeConfirmed, nil
	}

	// Re-issue and keep the record. Attempts is a counter, not a cap.
	record.Attempts++
	if err := j.put(ctx, accountID, record); err != nil {
		return OutcomeReissued, fmt.Errorf("reconcile %s: persist attempt count: %w", record.SeriesName, err)
	}

	_, err = j.caller.Call(ctx, remote.MethodSeriesUpdate, updateArgs{
		SeriesName: record.SeriesName,
		Src:        record.Src,
	}, "")
	if err != nil {
		j.bridge.Errorf("reconcile %s: %v", record.SeriesName, err)
		return OutcomeReissued, remote.WrapError(remote.MethodSeriesUpdate, err)
	}

	j.bridge.Logf("series updated %s (attempt %d)", record.SeriesName, record.Attempts)
	return OutcomeReissued, nil
}

// Pending returns the current record for an account, if any.
func (j *Journal) Pending(ctx context.Context, accountID string) (*PendingUpdate, bool, error) {
	record, ok, err := j.get(ctx, accountID)
	if err != nil || !ok {
		return nil, false, err
	}
	return &record, true, nil
}

func (j *Journal) get(ctx context.Context, accountID string) (PendingUpdate, bool, error) {
	var record PendingUpdate

	data, ok, err := j.kv.Get(ctx, KeyPrefix+accountID)
	if err != nil || !ok {
		return record, false, err
	}
	if err := json.Unmarshal(data, &record); err != nil {
		return record, false, fmt.Errorf("decode pending record: %w", err)
	}
	return record, true, nil
}

func (j *Journal) put(ctx context.Context, accountID string, record PendingUpdate) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return j.kv.Set(ctx, KeyPrefix+accountID, data)
}
