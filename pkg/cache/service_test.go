package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedEvent struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func TestService_GetHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db)

	mock.ExpectGet("festpass:events:detail:1").SetVal(`{"id":"1","title":"Sunburn"}`)

	var got cachedEvent
	require.NoError(t, svc.Get(context.Background(), "festpass:events:detail:1", &got))
	assert.Equal(t, "Sunburn", got.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GetMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db)

	mock.ExpectGet("missing").RedisNil()

	var got cachedEvent
	err := svc.Get(context.Background(), "missing", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GetOrSetFetchesOnMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db)

	value := cachedEvent{ID: "2", Title: "NH7"}
	payload, _ := json.Marshal(value)

	mock.ExpectGet("k").RedisNil()
	mock.ExpectSet("k", payload, time.Minute).SetVal("OK")

	calls := 0
	var got cachedEvent
	err := svc.GetOrSet(context.Background(), "k", time.Minute, func() (interface{}, error) {
		calls++
		return value, nil
	}, &got)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, value, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GetOrSetPropagatesFetcherError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db)

	sentinel := errors.New("not found")
	mock.ExpectGet("k").RedisNil()

	var got cachedEvent
	err := svc.GetOrSet(context.Background(), "k", time.Minute, func() (interface{}, error) {
		return nil, sentinel
	}, &got)

	assert.ErrorIs(t, err, sentinel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_DeletePattern(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db)

	mock.ExpectScan(0, "festpass:events:*", 100).SetVal([]string{"festpass:events:a", "festpass:events:b"}, 7)
	mock.ExpectDel("festpass:events:a", "festpass:events:b").SetVal(2)
	mock.ExpectScan(7, "festpass:events:*", 100).SetVal([]string{}, 0)

	require.NoError(t, svc.DeletePattern(context.Background(), "festpass:events:*"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
