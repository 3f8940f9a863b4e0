package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestTranslatesKeysBothWays(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Mika", body["display_name"], "outgoing keys are snake_case")
		assert.Equal(t, "x", body["avatar_url"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"display_name": "Mika",
			"liked_tracks": []map[string]interface{}{{"track_id": 7}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	res, err := c.Request(context.Background(), http.MethodPost, "/api/profile", map[string]interface{}{
		"displayName": "Mika",
		"avatarUrl":   "x",
	})
	require.NoError(t, err)

	body := res.(map[string]interface{})
	assert.Equal(t, "Mika", body["displayName"], "incoming keys are camelCase")
	tracks := body["likedTracks"].([]interface{})
	assert.Equal(t, float64(7), tracks[0].(map[string]interface{})["trackId"])
}

func TestRequestSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.Tokens().SetTokens("access-1", "refresh-1")

	res, err := c.Request(context.Background(), http.MethodGet, "/api/me", nil)
	require.NoError(t, err)
	assert.Nil(t, res, "empty body decodes to nil")
}

func TestRequestRefreshesOnceOn401(t *testing.T) {
	var apiCalls, refreshCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/api/me", func(w http.ResponseWriter, r *http.Request) {
		apiCalls++
		if r.Header.Get("Authorization") != "Bearer access-2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"user_name":"mika"}`)
	})
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "refresh-1", body["refresh_token"])
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"access_token":"access-2","refresh_token":"refresh-2"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL)
	c.Tokens().SetTokens("access-1", "refresh-1")

	res, err := c.Request(context.Background(), http.MethodGet, "/api/me", nil)
	require.NoError(t, err)
	assert.Equal(t, "mika", res.(map[string]interface{})["userName"])

	assert.Equal(t, 2, apiCalls, "original request plus one retry")
	assert.Equal(t, 1, refreshCalls)
	assert.Equal(t, "access-2", c.Tokens().AccessToken())
	assert.Equal(t, "refresh-2", c.Tokens().RefreshToken())
}

func TestFailedRefreshClearsTokens(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL)
	c.Tokens().SetTokens("stale", "stale-refresh")

	_, err := c.Request(context.Background(), http.MethodGet, "/api/me", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "session expired", apiErr.Message)

	assert.Empty(t, c.Tokens().AccessToken())
	assert.Empty(t, c.Tokens().RefreshToken())
}

func TestNoRefreshWithoutRefreshToken(t *testing.T) {
	var refreshCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/api/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"detail":"credentials required"}`)
	})
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Request(context.Background(), http.MethodGet, "/api/me", nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "credentials required", apiErr.Message)
	assert.Zero(t, refreshCalls)
}

func TestExtractErrorMessagePrecedence(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"message wins", `{"message":"msg","detail":"det","error":"err"}`, "msg"},
		{"detail next", `{"detail":"det","error":"err"}`, "det"},
		{"error next", `{"error":"err","non_field_errors":["nfe"]}`, "err"},
		{"non_field_errors next", `{"non_field_errors":["nfe","second"]}`, "nfe"},
		{"status fallback", `{"unrelated":1}`, "418 I'm a teapot"},
		{"non-json fallback", `<html>oops</html>`, "418 I'm a teapot"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := extractErrorMessage([]byte(c.body), "418 I'm a teapot")
			assert.Equal(t, c.want, got)
		})
	}
}

func TestRequestMultipartBypassesTranslation(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormField("display_name_or_whatever")
	require.NoError(t, err)
	io.WriteString(fw, "raw value")
	require.NoError(t, mw.Close())
	raw := buf.Bytes()

	var calls int
	mux := http.NewServeMux()
	mux.HandleFunc("/api/upload/audio", func(w http.ResponseWriter, r *http.Request) {
		calls++
		got, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, raw, got, "multipart body goes through untouched on every attempt")
		if calls == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"audio_url":"http://x"}`)
	})
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"access_token":"fresh"}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL)
	c.Tokens().SetTokens("stale", "refresh-1")

	res, err := c.RequestMultipart(context.Background(), http.MethodPost, "/api/upload/audio", bytes.NewReader(raw), mw.FormDataContentType())
	require.NoError(t, err)
	assert.Equal(t, "http://x", res.(map[string]interface{})["audioUrl"])
	assert.Equal(t, 2, calls)
}

func TestAPIErrorFormatting(t *testing.T) {
	err := &APIError{StatusCode: 404, Message: "track not found"}
	assert.Equal(t, "api error 404: track not found", err.Error())
	assert.True(t, errors.As(error(err), new(*APIError)))
}
