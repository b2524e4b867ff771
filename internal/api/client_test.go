package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/tasknest-cli/internal/models"
	"github.com/tasknest/tasknest-cli/internal/output"
)

func newTestClient(t *testing.T, token string, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, StaticToken(token))
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func TestRequest_AttachesBearerWhenTokenPresent(t *testing.T) {
	var got string
	c := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		_, _ = io.WriteString(w, `{"ok":true}`)
	})

	require.NoError(t, c.Request(context.Background(), http.MethodGet, "/api/me", nil, nil))
	assert.Equal(t, "Bearer secret", got)
}

func TestRequest_NoTokenIsNotAnError(t *testing.T) {
	var got string
	var had bool
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		got, had = r.Header.Get("Authorization"), r.Header.Get("Authorization") != ""
		_, _ = io.WriteString(w, `{"ok":true}`)
	})

	require.NoError(t, c.Request(context.Background(), http.MethodGet, "/api/groups", nil, nil))
	assert.False(t, had)
	assert.Empty(t, got)
}

func TestRequest_ToleratesUnparseableBody(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>not json</html>`)
	})

	var out map[string]any
	require.NoError(t, c.Request(context.Background(), http.MethodGet, "/api/balance", nil, &out))
	assert.Empty(t, out)
}

func TestRequest_ExplicitOkFalseFails(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"ok":false,"error":"title missing"}`)
	})

	err := c.Request(context.Background(), http.MethodPost, "/api/groups/1/tasks", NewTask{}, nil)
	require.Error(t, err)
	e := output.AsError(err)
	assert.Equal(t, "title missing", e.Message)
	assert.Equal(t, http.StatusOK, e.HTTPStatus)
}

func TestRequest_StatusFallbackMessage(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	err := c.Request(context.Background(), http.MethodGet, "/api/tasks/9", nil, nil)
	require.Error(t, err)
	e := output.AsError(err)
	assert.Equal(t, "HTTP 404", e.Message)
	assert.Equal(t, output.CodeNotFound, e.Code)
}

func TestRequest_RetriesIdempotentServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, `{"ok":false,"error":"upstream"}`)
			return
		}
		_, _ = io.WriteString(w, `{"ok":true,"balance":42}`)
	})

	balance, err := c.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), balance)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRequest_DoesNotRetryMutations(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"ok":false,"error":"boom"}`)
	})

	_, err := c.CreateFinance(context.Background(), NewFinance{Title: "x", Amount: 1})
	require.Error(t, err)
	assert.Equal(t, "boom", output.AsError(err).Message)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRequest_UnauthorizedIsAuthError(t *testing.T) {
	c := newTestClient(t, "stale", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"ok":false,"error":"Token invalid"}`)
	})

	_, err := c.Me(context.Background())
	assert.True(t, output.IsCode(err, output.CodeAuth))
}

func TestRequest_NetworkError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", nil, WithMaxRetries(1))
	err := c.Request(context.Background(), http.MethodGet, "/api/me", nil, nil)
	assert.True(t, output.IsCode(err, output.CodeNetwork))
}

func TestGroupTasks_DecodesItems(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/groups/7/tasks", r.URL.Path)
		_, _ = io.WriteString(w, `{"ok":true,"items":[
			{"id":2,"title":"b","done":false,"urgent":true,"deadline":"2026-10-20"},
			{"id":1,"title":"a","done":true,"urgent":false,"deadline":null}]}`)
	})

	tasks, err := c.GroupTasks(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "2026-10-20", tasks[0].DeadlineISO())
	assert.Equal(t, "", tasks[1].DeadlineISO())
	assert.True(t, tasks[1].Done)
}

func TestGroups_MissingItemsIsEmpty(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"ok":true}`)
	})

	groups, err := c.Groups(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestDeleteMetaItem_SendsIDInBody(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/groups/7/finance/categories", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]int64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(3), body["id"])
		_, _ = io.WriteString(w, `{"ok":true}`)
	})

	require.NoError(t, c.DeleteMetaItem(context.Background(), 7, models.MetaCategories, 3))
}

func TestAuthTelegram(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "query_id=1", body["initData"])
		_, _ = io.WriteString(w, `{"ok":true,"access_token":"tok","default_group_id":5,
			"user":{"id":9,"tg_id":100,"first_name":"Ann","username":"ann"}}`)
	})

	s, err := c.AuthTelegram(context.Background(), "query_id=1")
	require.NoError(t, err)
	assert.Equal(t, "tok", s.AccessToken)
	assert.Equal(t, int64(5), s.DefaultGroupID)
	require.NotNil(t, s.User)
	assert.Equal(t, int64(9), s.User.ID)
}

func TestRetryHint(t *testing.T) {
	assert.Equal(t, "Try again in 7 seconds", retryHint("7"))
	assert.Equal(t, "Try again later", retryHint(""))
	assert.Equal(t, 7, parseRetryAfterHint("Try again in 7 seconds"))
	assert.Equal(t, 0, parseRetryAfterHint("Try again later"))
}
