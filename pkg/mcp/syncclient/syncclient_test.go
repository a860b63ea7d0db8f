package syncclient_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	// Packages
	schema "github.com/mutablelogic/go-mcp/pkg/mcp/schema"
	session "github.com/mutablelogic/go-mcp/pkg/mcp/session"
	syncclient "github.com/mutablelogic/go-mcp/pkg/mcp/syncclient"
	inmem "github.com/mutablelogic/go-mcp/pkg/mcp/transport/inmem"
	assert "github.com/stretchr/testify/assert"
)

// fakeServer answers the handful of methods syncclient's tests exercise,
// following the same shape as the session package's own fake server test
// double: decode the envelope, reply on the same pipe.
type fakeServer struct {
	pipe        *inmem.Pipe
	toolsResult schema.ListToolsResult
}

func newFakeServer(pipe *inmem.Pipe) *fakeServer {
	return &fakeServer{pipe: pipe}
}

func (f *fakeServer) start(ctx context.Context) error {
	return f.pipe.Connect(ctx, func(msg []byte) {
		env, err := schema.DecodeEnvelope(msg)
		if err != nil || env.Kind != schema.KindRequest {
			return
		}
		req := env.Request
		switch req.Method {
		case schema.MethodInitialize:
			f.reply(ctx, req.ID, schema.InitializeResult{
				ProtocolVersion: schema.LatestProtocolVersion,
				Capabilities:    schema.ServerCapabilities{Tools: &schema.ToolsCapability{}},
				ServerInfo:      schema.ServerInfo{Name: "fake-server", Version: "1.0.0"},
			})
		case schema.MethodPing:
			f.reply(ctx, req.ID, struct{}{})
		case schema.MethodToolsList:
			f.reply(ctx, req.ID, f.toolsResult)
		case schema.MethodToolsCall:
			var p schema.CallToolParams
			_ = json.Unmarshal(req.Params, &p)
			f.reply(ctx, req.ID, schema.CallToolResult{
				Content: []schema.Content{{Type: "text", Text: "ok:" + p.Name}},
			})
		default:
			f.reply(ctx, req.ID, schema.NewError(schema.ErrorCodeMethodNotFound, req.Method))
		}
	})
}

func (f *fakeServer) reply(ctx context.Context, id schema.ID, result any) {
	data, _ := json.Marshal(result)
	encoded, _ := schema.Encode(schema.NewResponse(id, data))
	_ = f.pipe.Send(ctx, encoded)
}

func newTestClient(t *testing.T) *syncclient.Client {
	t.Helper()
	clientPipe, serverPipe := inmem.NewPair()
	server := newFakeServer(serverPipe)
	assert.NoError(t, server.start(context.Background()))
	server.toolsResult = schema.ListToolsResult{
		Tools: []schema.Tool{{Name: "echo", InputSchema: json.RawMessage(`{"type":"object"}`)}},
	}

	return syncclient.New(
		session.WithTransport(clientPipe),
		session.WithRequestTimeout(2*time.Second),
	)
}

func Test_syncclient_001_lazy_init(t *testing.T) {
	c := newTestClient(t)
	defer c.Close()

	assert.Nil(t, c.ServerInfo())
	assert.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, "fake-server", c.ServerInfo().Name)
}

func Test_syncclient_002_list_and_call_tool(t *testing.T) {
	c := newTestClient(t)
	defer c.Close()

	tools, err := c.ListTools(context.Background())
	assert.NoError(t, err)
	assert.Len(t, tools, 1)

	result, err := c.CallTool(context.Background(), "echo", map[string]any{})
	assert.NoError(t, err)
	assert.Equal(t, "ok:echo", result.Content[0].Text)
}

func Test_syncclient_003_call_unknown_tool(t *testing.T) {
	c := newTestClient(t)
	defer c.Close()

	_, err := c.CallTool(context.Background(), "missing", nil)
	assert.Error(t, err)
}

func Test_syncclient_004_close_is_idempotent_and_resets_state(t *testing.T) {
	c := newTestClient(t)

	assert.NoError(t, c.Ping(context.Background()))
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
	assert.Nil(t, c.ServerInfo())
}
