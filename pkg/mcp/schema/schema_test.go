package schema

import (
	"encoding/json"
	"testing"

	// Packages
	assert "github.com/stretchr/testify/assert"
)

func Test_id_001(t *testing.T) {
	assert := assert.New(t)

	id := NewID(42)
	data, err := json.Marshal(id)
	assert.NoError(err)
	assert.Equal("42", string(data))

	var decoded ID
	assert.NoError(json.Unmarshal(data, &decoded))
	assert.True(decoded.Equal(id))
	assert.False(decoded.IsString())
}

func Test_id_002(t *testing.T) {
	assert := assert.New(t)

	id := NewStringID("req-1")
	data, err := json.Marshal(id)
	assert.NoError(err)
	assert.Equal(`"req-1"`, string(data))

	var decoded ID
	assert.NoError(json.Unmarshal(data, &decoded))
	assert.True(decoded.Equal(id))
	assert.True(decoded.IsString())
}

func Test_id_003(t *testing.T) {
	assert := assert.New(t)

	var id ID
	assert.NoError(json.Unmarshal([]byte("null"), &id))
	assert.True(id.IsZero())
}

func Test_envelope_001(t *testing.T) {
	assert := assert.New(t)

	raw := []byte(`{"jsonrpc":"2.0","id":0,"result":{"protocolVersion":"2024-11-05"}}`)
	env, err := DecodeEnvelope(raw)
	assert.NoError(err)
	assert.Equal(KindResponse, env.Kind)
	assert.NotNil(env.Response)
	assert.Equal(int64(0), env.Response.ID.Int())
}

func Test_envelope_002(t *testing.T) {
	assert := assert.New(t)

	raw := []byte(`{"jsonrpc":"2.0","id":"a","error":{"code":-32601,"message":"Method not found"}}`)
	env, err := DecodeEnvelope(raw)
	assert.NoError(err)
	assert.Equal(KindErrorResponse, env.Kind)
	assert.Equal(ErrorCodeMethodNotFound, env.ErrorResp.Error.Code)
	assert.True(env.ErrorResp.ID.IsString())
}

func Test_envelope_003(t *testing.T) {
	assert := assert.New(t)

	raw := []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	env, err := DecodeEnvelope(raw)
	assert.NoError(err)
	assert.Equal(KindNotification, env.Kind)
	assert.Equal(NotificationInitialized, env.Notification.Method)
}

func Test_envelope_004(t *testing.T) {
	assert := assert.New(t)

	raw := []byte(`{"jsonrpc":"2.0","id":7,"method":"sampling/createMessage","params":{}}`)
	env, err := DecodeEnvelope(raw)
	assert.NoError(err)
	assert.Equal(KindRequest, env.Kind)
	assert.Equal(MethodSamplingCreateMessage, env.Request.Method)
	assert.Equal(int64(7), env.Request.ID.Int())
}

func Test_envelope_roundtrip(t *testing.T) {
	assert := assert.New(t)

	req := NewRequest(NewID(1), MethodPing, nil)
	data, err := json.Marshal(req)
	assert.NoError(err)

	env, err := DecodeEnvelope(data)
	assert.NoError(err)
	assert.Equal(KindRequest, env.Kind)
	assert.Equal(req.Method, env.Request.Method)
	assert.True(req.ID.Equal(env.Request.ID))
}

func Test_envelope_malformed(t *testing.T) {
	assert := assert.New(t)

	_, err := DecodeEnvelope([]byte(`{"jsonrpc":"2.0"}`))
	assert.Error(err)

	_, err = DecodeEnvelope([]byte(`not json`))
	assert.Error(err)
}
