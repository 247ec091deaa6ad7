package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gtx", r.URL.Query().Get("client"))
		assert.Equal(t, "en", r.URL.Query().Get("sl"))
		assert.Equal(t, "fr", r.URL.Query().Get("tl"))
		assert.Equal(t, "Hello", r.URL.Query().Get("q"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[[["Bonjour","Hello",null,null,1]],null,"en"]`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)

	// Empty source language defaults to English
	translated, err := client.Translate(context.Background(), "Hello", "", "fr")
	assert.NoError(t, err)
	assert.Equal(t, "Bonjour", translated)
}

func TestTranslate_MultipleSegments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[[["Bonjour. ","Hello. ",null,null,1],["Bienvenue.","Welcome.",null,null,1]],null,"en"]`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)

	translated, err := client.Translate(context.Background(), "Hello. Welcome.", "en", "fr")
	assert.NoError(t, err)
	assert.Equal(t, "Bonjour. Bienvenue.", translated)
}

func TestTranslate_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)

	_, err := client.Translate(context.Background(), "Hello", "en", "fr")
	assert.Error(t, err)
}

func TestTranslate_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)

	_, err := client.Translate(context.Background(), "Hello", "en", "fr")
	assert.Error(t, err)
}
