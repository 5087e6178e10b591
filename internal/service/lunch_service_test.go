package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/lunchclub/internal/auth"
	"github.com/mmynk/lunchclub/internal/metrics"
	"github.com/mmynk/lunchclub/internal/storage/sqlite"
	"github.com/mmynk/lunchclub/pkg/api"
	"github.com/mmynk/lunchclub/pkg/api/apiconnect"
)

const (
	testOperator = "admin"
	testPassword = "lunch-is-served"
)

type testServer struct {
	client  apiconnect.LunchServiceClient
	metrics *metrics.Metrics
}

// setupTestServer creates a LunchService on a temp database behind a real
// Connect handler. withAuth enables operator login.
func setupTestServer(t *testing.T, withAuth bool) *testServer {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	opts := Options{
		MinGroupSize:  3,
		HistoryWindow: 90 * 24 * time.Hour,
		Metrics:       metrics.New(),
	}
	if withAuth {
		hash, err := auth.HashPassword(testPassword)
		require.NoError(t, err)
		opts.Authenticator = auth.NewPasswordAuthenticator(testOperator, hash)
		opts.JWTManager = auth.NewJWTManager("test-secret", time.Hour)
	}

	svc := NewLunchService(store, opts)
	path, handler := NewHandler(svc, opts.JWTManager)

	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testServer{
		client:  apiconnect.NewLunchServiceClient(http.DefaultClient, server.URL),
		metrics: opts.Metrics,
	}
}

func requireCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	require.Error(t, err)
	var connectErr *connect.Error
	require.True(t, errors.As(err, &connectErr), "expected connect.Error, got %T", err)
	require.Equal(t, code, connectErr.Code(), connectErr.Message())
}

func (ts *testServer) login(t *testing.T) string {
	t.Helper()
	resp, err := ts.client.Login(context.Background(), connect.NewRequest(&api.LoginRequest{
		Username: testOperator,
		Password: testPassword,
	}))
	require.NoError(t, err)
	require.NotEmpty(t, resp.Msg.Token)
	return resp.Msg.Token
}

func authed[T any](token string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func (ts *testServer) importRoster(t *testing.T, token string, members ...api.Member) {
	t.Helper()
	_, err := ts.client.ImportRoster(context.Background(), authed(token, &api.ImportRosterRequest{Members: members}))
	require.NoError(t, err)
}

func sixMembers() []api.Member {
	return []api.Member{
		{Username: "a1", Department: "X"},
		{Username: "a2", Department: "X"},
		{Username: "a3", Department: "X"},
		{Username: "b1", Department: "Y"},
		{Username: "b2", Department: "Y"},
		{Username: "b3", Department: "Y"},
	}
}

func TestLogin(t *testing.T) {
	ts := setupTestServer(t, true)
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := ts.client.Login(ctx, connect.NewRequest(&api.LoginRequest{
			Username: testOperator,
			Password: testPassword,
		}))
		require.NoError(t, err)
		require.NotEmpty(t, resp.Msg.Token)
		require.Greater(t, resp.Msg.ExpiresAt, time.Now().Unix())
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := ts.client.Login(ctx, connect.NewRequest(&api.LoginRequest{
			Username: testOperator,
			Password: "nope",
		}))
		requireCode(t, err, connect.CodeUnauthenticated)
	})
}

func TestLogin_AuthDisabled(t *testing.T) {
	ts := setupTestServer(t, false)

	_, err := ts.client.Login(context.Background(), connect.NewRequest(&api.LoginRequest{
		Username: testOperator,
		Password: testPassword,
	}))
	requireCode(t, err, connect.CodeFailedPrecondition)

	_, err = ts.client.ImportRoster(context.Background(), connect.NewRequest(&api.ImportRosterRequest{
		Members: sixMembers(),
	}))
	requireCode(t, err, connect.CodeFailedPrecondition)
}

func TestImportRoster(t *testing.T) {
	ts := setupTestServer(t, true)
	ctx := context.Background()
	token := ts.login(t)

	t.Run("requires a token", func(t *testing.T) {
		_, err := ts.client.ImportRoster(ctx, connect.NewRequest(&api.ImportRosterRequest{Members: sixMembers()}))
		requireCode(t, err, connect.CodeUnauthenticated)
	})

	t.Run("rejects a bad token", func(t *testing.T) {
		_, err := ts.client.ImportRoster(ctx, authed("garbage", &api.ImportRosterRequest{Members: sixMembers()}))
		requireCode(t, err, connect.CodeUnauthenticated)
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		_, err := ts.client.ImportRoster(ctx, authed(token, &api.ImportRosterRequest{Members: []api.Member{
			{Username: "a1", Department: "X"},
			{Username: "A1", Department: "Y"},
		}}))
		requireCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("stores sanitized members", func(t *testing.T) {
		resp, err := ts.client.ImportRoster(ctx, authed(token, &api.ImportRosterRequest{Members: []api.Member{
			{Username: "Jeff.Do", Department: "pem"},
			{Username: "max.zanko|eng", Department: "eng"},
		}}))
		require.NoError(t, err)
		require.Equal(t, 2, resp.Msg.MemberCount)

		list, err := ts.client.ListMembers(ctx, connect.NewRequest(&api.ListMembersRequest{}))
		require.NoError(t, err)
		require.Equal(t, []api.Member{
			{Username: "jeff.do", Department: "pem"},
			{Username: "max.zanko", Department: "eng"},
		}, list.Msg.Members)
	})
}

func TestFormGroups(t *testing.T) {
	ts := setupTestServer(t, true)
	ctx := context.Background()
	ts.importRoster(t, ts.login(t), sixMembers()...)

	t.Run("forms mixed groups", func(t *testing.T) {
		resp, err := ts.client.FormGroups(ctx, connect.NewRequest(&api.FormGroupsRequest{}))
		require.NoError(t, err)
		require.Len(t, resp.Msg.Groups, 2)

		seen := map[string]bool{}
		for _, g := range resp.Msg.Groups {
			require.Len(t, g.Members, 3)
			depts := map[string]bool{}
			for _, m := range g.Members {
				seen[m.Username] = true
				depts[m.Department] = true
			}
			require.Len(t, depts, 2)
		}
		require.Len(t, seen, 6)
		require.Zero(t, resp.Msg.RepeatPairs)
	})

	t.Run("seed makes formation reproducible", func(t *testing.T) {
		seed := uint64(1234)
		first, err := ts.client.FormGroups(ctx, connect.NewRequest(&api.FormGroupsRequest{Seed: &seed}))
		require.NoError(t, err)
		second, err := ts.client.FormGroups(ctx, connect.NewRequest(&api.FormGroupsRequest{Seed: &seed}))
		require.NoError(t, err)

		require.Equal(t, seed, first.Msg.Seed)
		require.Equal(t, first.Msg.Groups, second.Msg.Groups)
	})

	t.Run("roster too small", func(t *testing.T) {
		_, err := ts.client.FormGroups(ctx, connect.NewRequest(&api.FormGroupsRequest{MinGroupSize: 7}))
		requireCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("negative group size", func(t *testing.T) {
		_, err := ts.client.FormGroups(ctx, connect.NewRequest(&api.FormGroupsRequest{MinGroupSize: -1}))
		requireCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("bad formation date", func(t *testing.T) {
		_, err := ts.client.FormGroups(ctx, connect.NewRequest(&api.FormGroupsRequest{FormationDate: "2024-01-01"}))
		requireCode(t, err, connect.CodeInvalidArgument)
	})

	require.Equal(t, 3.0, testutil.ToFloat64(ts.metrics.FormationsTotal.WithLabelValues(metrics.OutcomeOK)))
	require.Equal(t, 3.0, testutil.ToFloat64(ts.metrics.FormationsTotal.WithLabelValues(metrics.OutcomeInvalid)))
}

func TestFormGroups_UsesHistoryWindow(t *testing.T) {
	ts := setupTestServer(t, true)
	ctx := context.Background()
	token := ts.login(t)
	ts.importRoster(t, token,
		api.Member{Username: "a1", Department: "X"},
		api.Member{Username: "a2", Department: "X"},
		api.Member{Username: "b1", Department: "Y"},
		api.Member{Username: "b2", Department: "Y"},
	)

	// Everyone lunched together on March 1st, so every pair is a repeat.
	_, err := ts.client.CommitRound(ctx, authed(token, &api.CommitRoundRequest{
		FormationDate: "20240301",
		Groups:        [][]string{{"a1", "a2", "b1", "b2"}},
	}))
	require.NoError(t, err)

	t.Run("inside the window", func(t *testing.T) {
		resp, err := ts.client.FormGroups(ctx, connect.NewRequest(&api.FormGroupsRequest{
			MinGroupSize:  2,
			FormationDate: "20240315",
		}))
		require.NoError(t, err)
		require.Len(t, resp.Msg.Groups, 2)
		require.Equal(t, 2, resp.Msg.RepeatPairs)
		require.Equal(t, 2.0, testutil.ToFloat64(ts.metrics.RepeatPairs))
	})

	t.Run("same day counts", func(t *testing.T) {
		resp, err := ts.client.FormGroups(ctx, connect.NewRequest(&api.FormGroupsRequest{
			MinGroupSize:  2,
			FormationDate: "20240301",
		}))
		require.NoError(t, err)
		require.Equal(t, 2, resp.Msg.RepeatPairs)
	})

	t.Run("outside the window", func(t *testing.T) {
		resp, err := ts.client.FormGroups(ctx, connect.NewRequest(&api.FormGroupsRequest{
			MinGroupSize:  2,
			FormationDate: "20241001",
		}))
		require.NoError(t, err)
		require.Zero(t, resp.Msg.RepeatPairs)
	})

	t.Run("before the round", func(t *testing.T) {
		resp, err := ts.client.FormGroups(ctx, connect.NewRequest(&api.FormGroupsRequest{
			MinGroupSize:  2,
			FormationDate: "20240201",
		}))
		require.NoError(t, err)
		require.Zero(t, resp.Msg.RepeatPairs)
	})
}

func TestRounds(t *testing.T) {
	ts := setupTestServer(t, true)
	ctx := context.Background()
	token := ts.login(t)

	t.Run("CommitRound requires a token", func(t *testing.T) {
		_, err := ts.client.CommitRound(ctx, connect.NewRequest(&api.CommitRoundRequest{
			FormationDate: "20240301",
			Groups:        [][]string{{"a1", "b1"}},
		}))
		requireCode(t, err, connect.CodeUnauthenticated)
	})

	t.Run("CommitRound validates input", func(t *testing.T) {
		tests := []struct {
			name string
			req  *api.CommitRoundRequest
		}{
			{"bad date", &api.CommitRoundRequest{FormationDate: "March", Groups: [][]string{{"a1"}}}},
			{"no groups", &api.CommitRoundRequest{FormationDate: "20240301"}},
			{"empty group", &api.CommitRoundRequest{FormationDate: "20240301", Groups: [][]string{{"a1"}, {}}}},
			{"member twice", &api.CommitRoundRequest{FormationDate: "20240301", Groups: [][]string{{"a1", "b1"}, {"A1|X"}}}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := ts.client.CommitRound(ctx, authed(token, tt.req))
				requireCode(t, err, connect.CodeInvalidArgument)
			})
		}
	})

	var committed *api.Round
	t.Run("CommitRound stores groups", func(t *testing.T) {
		resp, err := ts.client.CommitRound(ctx, authed(token, &api.CommitRoundRequest{
			FormationDate: "20240301",
			Groups:        [][]string{{"a1|X", "b1|Y"}, {"a2", "b2"}},
		}))
		require.NoError(t, err)
		committed = resp.Msg.Round

		require.NotEmpty(t, committed.ID)
		require.Equal(t, "20240301", committed.FormationDate)
		require.Len(t, committed.Groups, 2)
		require.Equal(t, []string{"a1", "b1"}, committed.Groups[0].Members)
		require.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.RoundsCommitted))
	})

	t.Run("GetRound", func(t *testing.T) {
		resp, err := ts.client.GetRound(ctx, connect.NewRequest(&api.GetRoundRequest{RoundID: committed.ID}))
		require.NoError(t, err)
		require.Equal(t, committed, resp.Msg.Round)
	})

	t.Run("GetRound not found", func(t *testing.T) {
		_, err := ts.client.GetRound(ctx, connect.NewRequest(&api.GetRoundRequest{RoundID: "nonexistent-id"}))
		requireCode(t, err, connect.CodeNotFound)
	})

	t.Run("GetRound requires an ID", func(t *testing.T) {
		_, err := ts.client.GetRound(ctx, connect.NewRequest(&api.GetRoundRequest{}))
		requireCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("ListRounds", func(t *testing.T) {
		_, err := ts.client.CommitRound(ctx, authed(token, &api.CommitRoundRequest{
			FormationDate: "20240401",
			Groups:        [][]string{{"a1", "b2", "c1"}},
		}))
		require.NoError(t, err)

		resp, err := ts.client.ListRounds(ctx, connect.NewRequest(&api.ListRoundsRequest{}))
		require.NoError(t, err)
		require.Len(t, resp.Msg.Rounds, 2)
		require.Equal(t, "20240401", resp.Msg.Rounds[0].FormationDate)
		require.Equal(t, 3, resp.Msg.Rounds[0].MemberCount)
		require.Equal(t, committed.ID, resp.Msg.Rounds[1].ID)
		require.Equal(t, 2, resp.Msg.Rounds[1].GroupCount)
	})
}

// logCapture collects JSON log records written by the server goroutines.
type logCapture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *logCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

// records returns every record whose msg equals msg.
func (c *logCapture) records(t *testing.T, msg string) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(c.buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		if rec["msg"] == msg {
			out = append(out, rec)
		}
	}
	return out
}

func captureLogs(t *testing.T) *logCapture {
	t.Helper()
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	capture := &logCapture{}
	slog.SetDefault(slog.New(slog.NewJSONHandler(capture, nil)))
	return capture
}

func TestMutatingRPCsLogOperator(t *testing.T) {
	ts := setupTestServer(t, true)
	ctx := context.Background()
	token := ts.login(t)
	logs := captureLogs(t)

	ts.importRoster(t, token, sixMembers()...)
	_, err := ts.client.CommitRound(ctx, authed(token, &api.CommitRoundRequest{
		FormationDate: "20240301",
		Groups:        [][]string{{"a1", "b1", "a2"}, {"b2", "a3", "b3"}},
	}))
	require.NoError(t, err)
	_, err = ts.client.CommitRound(ctx, connect.NewRequest(&api.CommitRoundRequest{
		FormationDate: "20240302",
		Groups:        [][]string{{"a1", "b1"}},
	}))
	requireCode(t, err, connect.CodeUnauthenticated)

	imported := logs.records(t, "Roster imported")
	require.Len(t, imported, 1)
	require.Equal(t, testOperator, imported[0]["operator"])

	committed := logs.records(t, "Round committed")
	require.Len(t, committed, 1)
	require.Equal(t, testOperator, committed[0]["operator"])

	var commitCalls []map[string]any
	for _, rec := range logs.records(t, "RPC ok") {
		if rec["procedure"] == apiconnect.LunchServiceCommitRoundProcedure {
			commitCalls = append(commitCalls, rec)
		}
	}
	require.Len(t, commitCalls, 1)
	require.Equal(t, testOperator, commitCalls[0]["operator"])

	rejected := logs.records(t, "RPC rejected")
	require.Len(t, rejected, 1)
	require.Equal(t, apiconnect.LunchServiceCommitRoundProcedure, rejected[0]["procedure"])
}
