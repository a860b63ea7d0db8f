package session_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	// Packages
	schema "github.com/mutablelogic/go-mcp/pkg/mcp/schema"
	session "github.com/mutablelogic/go-mcp/pkg/mcp/session"
	inmem "github.com/mutablelogic/go-mcp/pkg/mcp/transport/inmem"
	assert "github.com/stretchr/testify/assert"
)

////////////////////////////////////////////////////////////////////////////
// TEST FAKE SERVER

// fakeServer answers a fixed set of methods over an inmem.Pipe, producing
// the same envelope shapes the real dispatcher would, without pulling in
// the dispatcher package itself: these tests exercise the session against
// the wire, not against a second copy of the dispatcher. Replies to any
// server-initiated request the session answers (roots/list,
// sampling/createMessage) land on replies for the test to inspect.
type fakeServer struct {
	pipe *inmem.Pipe

	mu           sync.Mutex
	toolsResult  schema.ListToolsResult
	serverCaps   schema.ServerCapabilities
	sawPing      int
	delayTools   time.Duration
	suppressPing bool

	replies   chan *schema.Response
	cancelled chan *schema.Notification
}

func newFakeServer(pipe *inmem.Pipe) *fakeServer {
	return &fakeServer{
		pipe: pipe,
		serverCaps: schema.ServerCapabilities{
			Tools:   &schema.ToolsCapability{ListChanged: true},
			Logging: map[string]any{},
		},
		replies:   make(chan *schema.Response, 8),
		cancelled: make(chan *schema.Notification, 8),
	}
}

func (f *fakeServer) start(ctx context.Context) error {
	return f.pipe.Connect(ctx, func(msg []byte) {
		env, err := schema.DecodeEnvelope(msg)
		if err != nil {
			return
		}
		switch env.Kind {
		case schema.KindRequest:
			f.handleRequest(ctx, env.Request)
		case schema.KindResponse:
			f.replies <- env.Response
		case schema.KindNotification:
			if env.Notification.Method == schema.NotificationCancelled {
				select {
				case f.cancelled <- env.Notification:
				default:
				}
			}
		}
	})
}

func (f *fakeServer) handleRequest(ctx context.Context, req *schema.Request) {
	switch req.Method {
	case schema.MethodInitialize:
		f.reply(ctx, req.ID, schema.InitializeResult{
			ProtocolVersion: schema.LatestProtocolVersion,
			Capabilities:    f.serverCaps,
			ServerInfo:      schema.ServerInfo{Name: "fake-server", Version: "1.0.0"},
		})

	case schema.MethodPing:
		f.mu.Lock()
		f.sawPing++
		suppress := f.suppressPing
		f.mu.Unlock()
		if suppress {
			return // simulate a server that never answers, for timeout tests
		}
		f.reply(ctx, req.ID, struct{}{})

	case schema.MethodToolsList:
		if f.delayTools > 0 {
			time.Sleep(f.delayTools)
		}
		f.mu.Lock()
		result := f.toolsResult
		f.mu.Unlock()
		f.reply(ctx, req.ID, result)

	case schema.MethodToolsCall:
		var p schema.CallToolParams
		_ = json.Unmarshal(req.Params, &p)
		f.reply(ctx, req.ID, schema.CallToolResult{
			Content: []schema.Content{{Type: "text", Text: "ok:" + p.Name}},
		})

	default:
		f.reply(ctx, req.ID, schema.NewError(schema.ErrorCodeMethodNotFound, req.Method))
	}
}

func (f *fakeServer) reply(ctx context.Context, id schema.ID, result any) {
	data, _ := json.Marshal(result)
	_ = f.pipe.Send(ctx, mustEncode(schema.NewResponse(id, data)))
}

// sendRequest simulates a server-initiated request (roots/list,
// sampling/createMessage) toward the session under test; the session's
// reply arrives on f.replies.
func (f *fakeServer) sendRequest(ctx context.Context, id schema.ID, method string, params any) error {
	data, _ := json.Marshal(params)
	return f.pipe.Send(ctx, mustEncode(schema.NewRequest(id, method, data)))
}

func mustEncode(v any) []byte {
	data, err := schema.Encode(v)
	if err != nil {
		panic(err)
	}
	return data
}

////////////////////////////////////////////////////////////////////////////
// TESTS

func newTestSession(t *testing.T, opts ...session.Opt) (*session.Session, *fakeServer) {
	t.Helper()
	client, serverPipe := inmem.NewPair()
	server := newFakeServer(serverPipe)
	assert.NoError(t, server.start(context.Background()))

	allOpts := append([]session.Opt{
		session.WithTransport(client),
		session.WithRequestTimeout(2 * time.Second),
	}, opts...)

	s, err := session.New(allOpts...)
	assert.NoError(t, err)
	return s, server
}

func Test_session_001_handshake(t *testing.T) {
	s, _ := newTestSession(t)
	defer s.Close()

	assert.NoError(t, s.Start(context.Background()))
	assert.Equal(t, session.Initialized, s.State())
	assert.Equal(t, "fake-server", s.ServerInfo().Name)
	assert.True(t, s.ServerCapabilities().HasTools())
}

func Test_session_002_ping(t *testing.T) {
	s, _ := newTestSession(t)
	defer s.Close()

	assert.NoError(t, s.Start(context.Background()))
	assert.NoError(t, s.Ping(context.Background()))
}

func Test_session_003_tool_call_roundtrip(t *testing.T) {
	s, server := newTestSession(t)
	defer s.Close()

	server.toolsResult = schema.ListToolsResult{
		Tools: []schema.Tool{{Name: "echo", InputSchema: json.RawMessage(`{"type":"object"}`)}},
	}

	assert.NoError(t, s.Start(context.Background()))

	tools, err := s.ListTools(context.Background())
	assert.NoError(t, err)
	assert.Len(t, tools, 1)
	assert.Equal(t, "echo", tools[0].Name)

	result, err := s.CallTool(context.Background(), "echo", map[string]any{"x": 1}, nil)
	assert.NoError(t, err)
	assert.Equal(t, "ok:echo", result.Content[0].Text)
}

func Test_session_004_timeout_and_cancel(t *testing.T) {
	s, server := newTestSession(t, session.WithRequestTimeout(100*time.Millisecond))
	defer s.Close()

	assert.NoError(t, s.Start(context.Background()))

	server.mu.Lock()
	server.suppressPing = true
	server.mu.Unlock()

	err := s.Ping(context.Background())
	assert.Error(t, err)

	select {
	case n := <-server.cancelled:
		var p schema.CancelledParams
		assert.NoError(t, json.Unmarshal(n.Params, &p))
		assert.Equal(t, "timeout", p.Reason)
	case <-time.After(time.Second):
		t.Fatal("no notifications/cancelled sent for the timed-out ping")
	}
}

func Test_session_005_sampling(t *testing.T) {
	var gotMessages int
	handler := func(ctx context.Context, req schema.CreateMessageParams) (schema.CreateMessageResult, error) {
		gotMessages = len(req.Messages)
		return schema.CreateMessageResult{
			Role:    "assistant",
			Content: schema.Content{Type: "text", Text: "hi"},
			Model:   "test-model",
		}, nil
	}

	s, server := newTestSession(t, session.WithSamplingHandler(handler))
	defer s.Close()

	assert.NoError(t, s.Start(context.Background()))
	assert.NoError(t, server.sendRequest(context.Background(), schema.NewID(100), schema.MethodSamplingCreateMessage, schema.CreateMessageParams{
		Messages: []schema.SamplingMessage{{Role: "user", Content: schema.Content{Type: "text", Text: "hi"}}},
	}))

	select {
	case resp := <-server.replies:
		assert.Equal(t, int64(100), resp.ID.Int())
		var result schema.CreateMessageResult
		assert.NoError(t, json.Unmarshal(resp.Result, &result))
		assert.Equal(t, "test-model", result.Model)
	case <-time.After(time.Second):
		t.Fatal("session never answered sampling/createMessage")
	}
	assert.Equal(t, 1, gotMessages)
}

func Test_session_006_roots_listing(t *testing.T) {
	s, server := newTestSession(t, session.WithRoot(schema.Root{URI: "file:///a", Name: "A"}))
	defer s.Close()

	assert.NoError(t, s.Start(context.Background()))
	assert.Equal(t, []schema.Root{{URI: "file:///a", Name: "A"}}, s.Roots())

	assert.NoError(t, server.sendRequest(context.Background(), schema.NewID(3), schema.MethodRootsList, struct{}{}))

	select {
	case resp := <-server.replies:
		assert.Equal(t, int64(3), resp.ID.Int())
		var result schema.ListRootsResult
		assert.NoError(t, json.Unmarshal(resp.Result, &result))
		assert.Equal(t, []schema.Root{{URI: "file:///a", Name: "A"}}, result.Roots)
	case <-time.After(time.Second):
		t.Fatal("session never answered roots/list")
	}
}

func Test_session_007_list_changed_fanout(t *testing.T) {
	client, serverPipe := inmem.NewPair()
	server := newFakeServer(serverPipe)
	assert.NoError(t, server.start(context.Background()))
	server.toolsResult = schema.ListToolsResult{Tools: []schema.Tool{{Name: "first"}}}

	var mu sync.Mutex
	var received []schema.Tool
	notified := make(chan struct{}, 1)

	s, err := session.New(
		session.WithTransport(client),
		session.WithRequestTimeout(2*time.Second),
		session.WithToolsChangeConsumer(func(tools []schema.Tool) {
			mu.Lock()
			received = tools
			mu.Unlock()
			notified <- struct{}{}
		}),
	)
	assert.NoError(t, err)
	defer s.Close()
	assert.NoError(t, s.Start(context.Background()))

	server.toolsResult = schema.ListToolsResult{Tools: []schema.Tool{{Name: "first"}, {Name: "second"}}}
	assert.NoError(t, server.pipe.Send(context.Background(), mustEncode(schema.NewNotification(schema.NotificationToolsListChanged, nil))))

	select {
	case <-notified:
		mu.Lock()
		defer mu.Unlock()
		assert.Len(t, received, 2)
	case <-time.After(time.Second):
		t.Fatal("tools list_changed consumer was never invoked")
	}
}
