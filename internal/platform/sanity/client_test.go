// Copyright (c) 2026 Kinora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sanity_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/kinora/internal/platform/sanity"
)

/*
TestClient_Query checks the request shape and result decoding.
*/
func TestClient_Query(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		gotPath = request.URL.Path
		gotQuery = request.URL.Query().Get("query")
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(`{"ms":3,"query":"x","result":[{"_id":"a1","title":"Neon Nights"}]}`))
	}))
	defer server.Close()

	client := sanity.NewClient(
		sanity.Config{ProjectID: "dm7gnw8i", Dataset: "production", APIVersion: "2023-05-03"},
		sanity.WithBaseURL(server.URL),
	)

	var rows []struct {
		ID    string `json:"_id"`
		Title string `json:"title"`
	}
	err := client.Query(context.Background(), `*[_type == "movie"]{_id,title}`, &rows)
	require.NoError(t, err)

	assert.Equal(t, "/v2023-05-03/data/query/production", gotPath)
	assert.Equal(t, `*[_type == "movie"]{_id,title}`, gotQuery)
	require.Len(t, rows, 1)
	assert.Equal(t, "Neon Nights", rows[0].Title)
}

/*
TestClient_QueryErrors covers API failures and malformed bodies.
*/
func TestClient_QueryErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"api_error", http.StatusBadRequest, `{"error":{"description":"unexpected token","type":"queryParseError"}}`, "unexpected token"},
		{"bare_status", http.StatusBadGateway, `<html>`, "unexpected status 502"},
		{"missing_result", http.StatusOK, `{"ms":1}`, "no result"},
		{"bad_json", http.StatusOK, `{"result":`, "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
				writer.WriteHeader(tt.status)
				_, _ = writer.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := sanity.NewClient(sanity.Config{ProjectID: "p", Dataset: "d"}, sanity.WithBaseURL(server.URL))

			var out []map[string]any
			err := client.Query(context.Background(), "*", &out)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
