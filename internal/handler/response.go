package handler

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/sh3r4rd/file_metadata/internal/apperr"
	"github.com/sh3r4rd/file_metadata/internal/model"
)

var jsonHeaders = map[string]string{model.HeaderContentType: "application/json"}

func jsonResponse(status int, body any) events.APIGatewayProxyResponse {
	b, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		b = []byte(`{"error":"` + model.MsgInternalError + `"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    jsonHeaders,
		Body:       string(b),
	}
}

// errorResponse translates err into a client response. Client errors carry
// only their message; internal failures also carry the underlying error text.
func errorResponse(err error) events.APIGatewayProxyResponse {
	status := apperr.KindOf(err).StatusCode()
	if status >= http.StatusInternalServerError {
		return jsonResponse(status, model.ErrorResponse{Error: model.MsgInternalError, Details: err.Error()})
	}
	return jsonResponse(status, model.ErrorResponse{Error: apperr.Message(err)})
}
