package graph

import (
	"context"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"

	"go-shop-api/internal/model"
)

// Execute runs a single GraphQL request against schema.
func Execute(ctx context.Context, schema graphql.Schema, req model.GraphQLRequest) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
}

// IsMutation reports whether the operation req would execute is a mutation.
// Unparseable documents report false and fail later during execution.
func IsMutation(req model.GraphQLRequest) bool {
	doc, err := parser.Parse(parser.ParseParams{Source: req.Query})
	if err != nil {
		return false
	}

	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if req.OperationName != "" && (op.Name == nil || op.Name.Value != req.OperationName) {
			continue
		}
		if op.Operation == ast.OperationTypeMutation {
			return true
		}
	}
	return false
}

// ErrorCodes collects the extension codes present in a result.
func ErrorCodes(result *graphql.Result) []string {
	if result == nil {
		return nil
	}
	codes := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		if code, ok := e.Extensions["code"].(string); ok {
			codes = append(codes, code)
		}
	}
	return codes
}
