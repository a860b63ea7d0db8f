package dispatcher

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	// Packages
	schema "github.com/mutablelogic/go-mcp/pkg/mcp/schema"
	inmem "github.com/mutablelogic/go-mcp/pkg/mcp/transport/inmem"
	assert "github.com/stretchr/testify/assert"
)

func Test_dispatcher_response_routing(t *testing.T) {
	assert := assert.New(t)

	client, server := inmem.NewPair()
	defer client.Close()
	defer server.Close()

	var gotID schema.ID
	var gotResult json.RawMessage
	done := make(chan struct{})
	d := New(client, func(id schema.ID, result json.RawMessage, rpcErr error) {
		gotID = id
		gotResult = result
		close(done)
	}, nil, nil)

	assert.NoError(server.Connect(context.Background(), func([]byte) {}))
	assert.NoError(d.Start(context.Background()))

	resp := schema.NewResponse(schema.NewID(1), json.RawMessage(`{"ok":true}`))
	data, err := json.Marshal(resp)
	assert.NoError(err)
	assert.NoError(server.Send(context.Background(), data))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("response was not routed")
	}
	assert.Equal(int64(1), gotID.Int())
	assert.JSONEq(`{"ok":true}`, string(gotResult))
}

func Test_dispatcher_request_handler(t *testing.T) {
	assert := assert.New(t)

	client, server := inmem.NewPair()
	defer client.Close()
	defer server.Close()

	d := New(client, func(schema.ID, json.RawMessage, error) {}, nil, nil)
	d.HandleRequest("ping", func(ctx context.Context, params json.RawMessage) (any, error) {
		return map[string]any{}, nil
	})

	var received []byte
	gotResponse := make(chan struct{})
	assert.NoError(server.Connect(context.Background(), func(msg []byte) {
		received = msg
		close(gotResponse)
	}))
	assert.NoError(d.Start(context.Background()))

	req := schema.NewRequest(schema.NewID(5), "ping", nil)
	data, err := json.Marshal(req)
	assert.NoError(err)
	assert.NoError(server.Send(context.Background(), data))

	select {
	case <-gotResponse:
	case <-time.After(time.Second):
		t.Fatal("no response written")
	}

	env, err := schema.DecodeEnvelope(received)
	assert.NoError(err)
	assert.Equal(schema.KindResponse, env.Kind)
	assert.Equal(int64(5), env.Response.ID.Int())
}

func Test_dispatcher_unknown_method(t *testing.T) {
	assert := assert.New(t)

	client, server := inmem.NewPair()
	defer client.Close()
	defer server.Close()

	d := New(client, func(schema.ID, json.RawMessage, error) {}, nil, nil)

	var received []byte
	gotResponse := make(chan struct{})
	assert.NoError(server.Connect(context.Background(), func(msg []byte) {
		received = msg
		close(gotResponse)
	}))
	assert.NoError(d.Start(context.Background()))

	req := schema.NewRequest(schema.NewID(9), "bogus/method", nil)
	data, err := json.Marshal(req)
	assert.NoError(err)
	assert.NoError(server.Send(context.Background(), data))

	select {
	case <-gotResponse:
	case <-time.After(time.Second):
		t.Fatal("no error response written")
	}

	env, err := schema.DecodeEnvelope(received)
	assert.NoError(err)
	assert.Equal(schema.KindErrorResponse, env.Kind)
	assert.Equal(schema.ErrorCodeMethodNotFound, env.ErrorResp.Error.Code)
}

func Test_dispatcher_notification_handler(t *testing.T) {
	assert := assert.New(t)

	client, server := inmem.NewPair()
	defer client.Close()
	defer server.Close()

	d := New(client, func(schema.ID, json.RawMessage, error) {}, nil, nil)

	invoked := make(chan struct{})
	d.HandleNotification("notifications/tools/list_changed", func(ctx context.Context, params json.RawMessage) {
		close(invoked)
	})

	assert.NoError(server.Connect(context.Background(), func([]byte) {}))
	assert.NoError(d.Start(context.Background()))

	n := schema.NewNotification("notifications/tools/list_changed", nil)
	data, err := json.Marshal(n)
	assert.NoError(err)
	assert.NoError(server.Send(context.Background(), data))

	select {
	case <-invoked:
	case <-time.After(time.Second):
		t.Fatal("notification handler not invoked")
	}
}

func Test_dispatcher_unregistered_notification_is_ignored(t *testing.T) {
	assert := assert.New(t)

	client, server := inmem.NewPair()
	defer client.Close()
	defer server.Close()

	d := New(client, func(schema.ID, json.RawMessage, error) {}, nil, nil)
	assert.NoError(server.Connect(context.Background(), func([]byte) {}))
	assert.NoError(d.Start(context.Background()))

	n := schema.NewNotification("notifications/unknown", nil)
	data, err := json.Marshal(n)
	assert.NoError(err)
	assert.NoError(server.Send(context.Background(), data))

	// Give the inbound goroutine a moment; absence of a panic or crash is
	// the assertion here.
	time.Sleep(10 * time.Millisecond)
}
