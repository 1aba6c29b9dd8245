package agentapi

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anycompany/claims-processing/internal/propbag"
)

func sampleEvent() InvocationEvent {
	return InvocationEvent{
		MessageVersion: MessageVersion,
		ActionGroup:    "claims_management",
		APIPath:        "/createClaim",
		HTTPMethod:     "POST",
		RequestBody: RequestBody{
			Content: map[string]Content{
				"application/json": {
					Properties: []propbag.Property{
						{Name: "claim_id", Type: "string", Value: "CLM-001"},
					},
				},
			},
		},
		SessionAttributes:       map[string]string{"session": "s-1"},
		PromptSessionAttributes: map[string]string{"prompt": "p-1"},
	}
}

func TestProperties(t *testing.T) {
	ev := sampleEvent()
	props := ev.Properties()
	require.Len(t, props, 1)
	assert.Equal(t, "claim_id", props[0].Name)

	assert.Empty(t, InvocationEvent{}.Properties())
}

func TestOK_EchoesEventAndEncodesBody(t *testing.T) {
	ev := sampleEvent()
	resp := OK(ev, map[string]any{"claim_id": "CLM-001", "message": "ok"})

	assert.Equal(t, MessageVersion, resp.MessageVersion)
	assert.Equal(t, "claims_management", resp.Response.ActionGroup)
	assert.Equal(t, "/createClaim", resp.Response.APIPath)
	assert.Equal(t, "POST", resp.Response.HTTPMethod)
	assert.Equal(t, 200, resp.Response.HTTPStatusCode)
	assert.Equal(t, ev.SessionAttributes, resp.SessionAttributes)
	assert.Equal(t, ev.PromptSessionAttributes, resp.PromptSessionAttributes)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.Response.ResponseBody["application/json"].Body), &body))
	assert.Equal(t, "CLM-001", body["claim_id"])
}

func TestError_WrapsMessageInto500(t *testing.T) {
	ev := sampleEvent()
	resp := Error(ev, errors.New("missing required field: claim_id"))

	assert.Equal(t, 500, resp.Response.HTTPStatusCode)
	assert.Equal(t, "claims_management", resp.Response.ActionGroup)

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(resp.Response.ResponseBody["application/json"].Body), &body))
	assert.Equal(t, "missing required field: claim_id", body["error"])
}

func TestEventDecodesFromAgentJSON(t *testing.T) {
	raw := `{
		"messageVersion": "1.0",
		"actionGroup": "claims_management",
		"apiPath": "/createClaim",
		"httpMethod": "POST",
		"requestBody": {
			"content": {
				"application/json": {
					"properties": [
						{"name": "claim_id", "type": "string", "value": "CLM-77"},
						{"name": "claim_details", "type": "object", "value": "{\"policy_number\":\"P1\"}"}
					]
				}
			}
		},
		"sessionAttributes": {},
		"promptSessionAttributes": {}
	}`

	var ev InvocationEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &ev))
	require.Len(t, ev.Properties(), 2)
	assert.Equal(t, "CLM-77", ev.Properties()[0].Value)
	assert.Equal(t, "object", ev.Properties()[1].Type)
}
