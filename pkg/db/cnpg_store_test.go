/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/Hunter-Bennett/Blinknet/pkg/models"
)

var (
	errFakeBatchResultsQuery = errors.New("Query not implemented in fakeBatchResults")
	errFakeBatchRowScan      = errors.New("Scan not implemented in fakeBatchRow")
	errBoom                  = errors.New("boom")
	errCloseFailed           = errors.New("close failed")
)

type fakeBatchResults struct {
	execCalls int
	execErrAt int
	execErr   error

	closeCalls int
	closeErr   error
}

func (f *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	defer func() { f.execCalls++ }()
	if f.execErr != nil && f.execCalls == f.execErrAt {
		return pgconn.CommandTag{}, f.execErr
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeBatchResults) Query() (pgx.Rows, error) {
	return nil, errFakeBatchResultsQuery
}

type fakeBatchRow struct{}

func (fakeBatchRow) Scan(...any) error { return errFakeBatchRowScan }

func (f *fakeBatchResults) QueryRow() pgx.Row {
	return fakeBatchRow{}
}

func (f *fakeBatchResults) Close() error {
	f.closeCalls++
	return f.closeErr
}

func TestSendBatchExecAll_EmptyBatchDoesNotSend(t *testing.T) {
	err := sendBatchExecAll(context.Background(), &pgx.Batch{}, func(context.Context, *pgx.Batch) pgx.BatchResults {
		t.Fatalf("SendBatch should not be called for empty batch")
		return nil
	}, "test")
	require.NoError(t, err)
}

func TestSendBatchExecAll_ExecErrorIncludesCommandIndexAndCloses(t *testing.T) {
	batch, err := buildUpsertBatch(sampleDevices())
	require.NoError(t, err)

	br := &fakeBatchResults{
		execErrAt: 1,
		execErr:   errBoom,
	}

	err = sendBatchExecAll(context.Background(), batch, func(context.Context, *pgx.Batch) pgx.BatchResults {
		return br
	}, "upsert devices")
	require.ErrorIs(t, err, errBoom)
	require.Contains(t, err.Error(), "upsert devices batch exec (command 1)")
	require.Equal(t, 1, br.closeCalls)
}

func TestSendBatchExecAll_CloseErrorReturnedWhenExecSucceeds(t *testing.T) {
	batch := &pgx.Batch{}
	batch.Queue("SELECT 1")

	br := &fakeBatchResults{closeErr: errCloseFailed}

	err := sendBatchExecAll(context.Background(), batch, func(context.Context, *pgx.Batch) pgx.BatchResults {
		return br
	}, "op-name")
	require.Error(t, err)
	require.Contains(t, err.Error(), "op-name batch close: close failed")
	require.Equal(t, 1, br.closeCalls)
}

func TestBuildUpsertBatchQueuesOneStatementPerDevice(t *testing.T) {
	devices := sampleDevices()

	batch, err := buildUpsertBatch(devices)
	require.NoError(t, err)
	require.Equal(t, len(devices), batch.Len())

	first := batch.QueuedQueries[0]
	require.Equal(t, upsertDeviceSQL, first.SQL)
	require.Len(t, first.Arguments, 10)
	require.Equal(t, int64(1), first.Arguments[0])
	require.Equal(t, "[10.5,0,12.34]", first.Arguments[8])
	require.Equal(t, "[true,false,true]", first.Arguments[9])

	empty, err := buildUpsertBatch([]models.Device{})
	require.NoError(t, err)
	require.Equal(t, 0, empty.Len())
}
