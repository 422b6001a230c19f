package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/graphql-go/graphql"

	"go-shop-api/internal/graph"
	"go-shop-api/internal/model"
	"go-shop-api/pkg/apierror"
)

const maxRequestBody = 1 << 20

type GraphQLHandler struct {
	schema graphql.Schema
}

func NewGraphQLHandler(schema graphql.Schema) *GraphQLHandler {
	return &GraphQLHandler{schema: schema}
}

// ServeHTTP executes one operation. Executed operations always answer 200,
// with resolver failures reported in errors[]. Requests that cannot be
// decoded answer 400.
func (h *GraphQLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := decodeGraphQLRequest(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	if r.Method == http.MethodGet && graph.IsMutation(req) {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, apierror.New("METHOD_NOT_ALLOWED", "Mutations require POST", "", http.StatusMethodNotAllowed))
		return
	}

	writeJSON(w, http.StatusOK, graph.Execute(r.Context(), h.schema, req))
}

func decodeGraphQLRequest(w http.ResponseWriter, r *http.Request) (model.GraphQLRequest, error) {
	var req model.GraphQLRequest

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if raw := strings.TrimSpace(q.Get("variables")); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
				return req, apierror.BadRequest("invalid variables", "variables must be a JSON object")
			}
		}
	case http.MethodPost:
		defer r.Body.Close()
		if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			return req, apierror.New("UNSUPPORTED_MEDIA_TYPE", "Content-Type must be application/json", ct, http.StatusUnsupportedMediaType)
		}

		body := http.MaxBytesReader(w, r.Body, maxRequestBody)
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return req, apierror.New("PAYLOAD_TOO_LARGE", "request body too large", "", http.StatusRequestEntityTooLarge)
			}
			if errors.Is(err, io.EOF) {
				return req, apierror.BadRequest("request body is required", "")
			}
			return req, apierror.BadRequest("invalid JSON body", "")
		}
	default:
		return req, apierror.New("METHOD_NOT_ALLOWED", "method not allowed", r.Method, http.StatusMethodNotAllowed)
	}

	if strings.TrimSpace(req.Query) == "" {
		return req, apierror.BadRequest("query is required", "query")
	}

	return req, nil
}
