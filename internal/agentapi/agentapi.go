// Package agentapi defines the action-group invocation contract between the
// Bedrock agent and the lambdas: the inbound event with its property bag and
// the fixed response envelope the agent expects back.
package agentapi

import (
	"encoding/json"

	"github.com/anycompany/claims-processing/internal/propbag"
)

// MessageVersion is the envelope version the agent runtime speaks.
const MessageVersion = "1.0"

const jsonContentType = "application/json"

// InvocationEvent is the event an agent action group delivers to a lambda.
type InvocationEvent struct {
	MessageVersion          string            `json:"messageVersion"`
	ActionGroup             string            `json:"actionGroup"`
	APIPath                 string            `json:"apiPath"`
	HTTPMethod              string            `json:"httpMethod"`
	SessionID               string            `json:"sessionId,omitempty"`
	InputText               string            `json:"inputText,omitempty"`
	RequestBody             RequestBody       `json:"requestBody"`
	SessionAttributes       map[string]string `json:"sessionAttributes"`
	PromptSessionAttributes map[string]string `json:"promptSessionAttributes"`
}

// RequestBody carries the invocation payload keyed by content type.
type RequestBody struct {
	Content map[string]Content `json:"content"`
}

// Content is the typed property list for one content type.
type Content struct {
	Properties []propbag.Property `json:"properties"`
}

// Properties returns the JSON property bag of the event.
func (e InvocationEvent) Properties() []propbag.Property {
	return e.RequestBody.Content[jsonContentType].Properties
}

// InvocationResponse is the envelope returned to the agent. Session
// attributes are echoed from the event unchanged.
type InvocationResponse struct {
	MessageVersion          string            `json:"messageVersion"`
	Response                ActionResponse    `json:"response"`
	SessionAttributes       map[string]string `json:"sessionAttributes"`
	PromptSessionAttributes map[string]string `json:"promptSessionAttributes"`
}

// ActionResponse echoes the action coordinates and wraps the body.
type ActionResponse struct {
	ActionGroup    string                 `json:"actionGroup"`
	APIPath        string                 `json:"apiPath"`
	HTTPMethod     string                 `json:"httpMethod"`
	HTTPStatusCode int                    `json:"httpStatusCode"`
	ResponseBody   map[string]BodyContent `json:"responseBody"`
}

// BodyContent holds the JSON-encoded body string.
type BodyContent struct {
	Body string `json:"body"`
}

// respond builds the envelope with v JSON-encoded into the body.
func respond(ev InvocationEvent, status int, v any) InvocationResponse {
	b, _ := json.Marshal(v)
	return InvocationResponse{
		MessageVersion: MessageVersion,
		Response: ActionResponse{
			ActionGroup:    ev.ActionGroup,
			APIPath:        ev.APIPath,
			HTTPMethod:     ev.HTTPMethod,
			HTTPStatusCode: status,
			ResponseBody: map[string]BodyContent{
				jsonContentType: {Body: string(b)},
			},
		},
		SessionAttributes:       ev.SessionAttributes,
		PromptSessionAttributes: ev.PromptSessionAttributes,
	}
}

// OK wraps v into a 200 envelope.
func OK(ev InvocationEvent, v any) InvocationResponse {
	return respond(ev, 200, v)
}

// Error wraps a handled failure into a 500 envelope with the message in the
// body. No error escapes a handler unwrapped; the agent always needs an
// envelope back.
func Error(ev InvocationEvent, err error) InvocationResponse {
	return respond(ev, 500, map[string]string{"error": err.Error()})
}
