package submission_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/UnknownOlympus/hestia/internal/submission"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelayTransport_Send(t *testing.T) {
	fields := url.Values{"firstName": {"Ann"}, "phoneNumber": {"0412 345 678"}}

	t.Run("accepted", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
			body, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			got, err := url.ParseQuery(string(body))
			assert.NoError(t, err)
			assert.Equal(t, fields, got)
			w.WriteHeader(http.StatusOK)
		}))
		t.Cleanup(srv.Close)

		receipt, err := submission.NewRelayTransport(srv.URL, slog.Default()).Send(t.Context(), fields)

		require.NoError(t, err)
		assert.True(t, receipt.Accepted)
		assert.Equal(t, http.StatusOK, receipt.Status)
		_, err = uuid.Parse(receipt.ID)
		assert.NoError(t, err)
	})

	t.Run("rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "nope", http.StatusBadRequest)
		}))
		t.Cleanup(srv.Close)

		receipt, err := submission.NewRelayTransport(srv.URL, slog.Default()).Send(t.Context(), fields)

		require.ErrorIs(t, err, submission.ErrRejected)
		assert.Nil(t, receipt)
	})

	t.Run("unreachable", func(t *testing.T) {
		receipt, err := submission.NewRelayTransport("http://127.0.0.1:1/relay", slog.Default()).Send(t.Context(), fields)

		require.ErrorContains(t, err, "failed to post quote")
		assert.Nil(t, receipt)
	})
}
