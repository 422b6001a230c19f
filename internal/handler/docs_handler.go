package handler

import (
	"net/http"
)

// DocsHandler serves an in-browser GraphiQL client pointed at the API.
type DocsHandler struct {
	endpoint string
}

func NewDocsHandler(endpoint string) *DocsHandler {
	if endpoint == "" {
		endpoint = "/graphql"
	}
	return &DocsHandler{endpoint: endpoint}
}

func (h *DocsHandler) GraphiQL(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Security-Policy", "default-src 'self'; connect-src 'self'; script-src 'self' 'unsafe-inline' https://unpkg.com; style-src 'self' 'unsafe-inline' https://unpkg.com; img-src 'self' data:")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Shop API</title>
    <link rel="stylesheet" href="https://unpkg.com/graphiql@3/graphiql.min.css" />
    <style>body{margin:0;height:100vh;}#graphiql{height:100vh;}</style>
  </head>
  <body>
    <div id="graphiql"></div>
    <script src="https://unpkg.com/react@18/umd/react.production.min.js"></script>
    <script src="https://unpkg.com/react-dom@18/umd/react-dom.production.min.js"></script>
    <script src="https://unpkg.com/graphiql@3/graphiql.min.js"></script>
    <script>
      const fetcher = GraphiQL.createFetcher({ url: '` + h.endpoint + `' });
      ReactDOM.createRoot(document.getElementById('graphiql'))
        .render(React.createElement(GraphiQL, { fetcher }));
    </script>
  </body>
</html>`))
}
