package submission_test

import (
	"log/slog"
	"net/http"
	"net/url"
	"testing"

	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/UnknownOlympus/hestia/internal/submission"
	"github.com/UnknownOlympus/hestia/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestArchivingTransport_Send(t *testing.T) {
	ctx := t.Context()
	fields := url.Values{"firstName": {"Ann"}}
	var savedID string
	saved := mock.MatchedBy(func(q models.Quote) bool {
		savedID = q.ID
		return q.ID != "" && q.Fields.Get("firstName") == "Ann"
	})

	t.Run("delivered", func(t *testing.T) {
		repo := mocks.NewInterface(t)
		inner := mocks.NewTransport(t)
		transport := submission.NewArchivingTransport(inner, repo, slog.Default())

		repo.On("SaveQuote", ctx, saved).Return(nil).Once()
		inner.On("Send", ctx, fields).Return(&models.Receipt{ID: "inner", Status: http.StatusOK, Accepted: true}, nil).Once()
		repo.On("MarkDelivered", ctx, mock.AnythingOfType("string")).Return(nil).Once()

		receipt, err := transport.Send(ctx, fields)

		require.NoError(t, err)
		assert.Equal(t, savedID, receipt.ID, "receipt carries the archive id")
		assert.Equal(t, http.StatusOK, receipt.Status)
	})

	t.Run("delivery fails after archiving", func(t *testing.T) {
		repo := mocks.NewInterface(t)
		inner := mocks.NewTransport(t)
		transport := submission.NewArchivingTransport(inner, repo, slog.Default())

		repo.On("SaveQuote", ctx, saved).Return(nil).Once()
		inner.On("Send", ctx, fields).Return(nil, submission.ErrRejected).Once()
		repo.On("IncrementFailureCount", ctx, mock.AnythingOfType("string"), mock.Anything).Return(assert.AnError).Once()

		receipt, err := transport.Send(ctx, fields)

		require.NoError(t, err)
		assert.True(t, receipt.Accepted)
		assert.Equal(t, http.StatusAccepted, receipt.Status)
	})

	t.Run("archive down delivers directly", func(t *testing.T) {
		repo := mocks.NewInterface(t)
		inner := mocks.NewTransport(t)
		transport := submission.NewArchivingTransport(inner, repo, slog.Default())

		repo.On("SaveQuote", ctx, mock.Anything).Return(assert.AnError).Once()
		inner.On("Send", ctx, fields).Return(nil, submission.ErrRejected).Once()

		receipt, err := transport.Send(ctx, fields)

		require.ErrorIs(t, err, submission.ErrRejected)
		assert.Nil(t, receipt)
	})
}

func TestNewTransport(t *testing.T) {
	logger := slog.Default()

	t.Run("relay", func(t *testing.T) {
		transport, err := submission.NewTransport(t.Context(), submission.TransportConfig{
			Type: submission.TransportTypeRelay, RelayURL: "http://relay.local/send", Logger: logger,
		})

		require.NoError(t, err)
		_, ok := transport.(*submission.RelayTransport)
		assert.True(t, ok)
	})

	t.Run("relay without url", func(t *testing.T) {
		_, err := submission.NewTransport(t.Context(), submission.TransportConfig{Type: submission.TransportTypeRelay, Logger: logger})

		require.ErrorContains(t, err, "relay URL is required")
	})

	t.Run("ses without addresses", func(t *testing.T) {
		_, err := submission.NewTransport(t.Context(), submission.TransportConfig{Type: submission.TransportTypeSES, Logger: logger})

		require.ErrorContains(t, err, "sender and recipient are required")
	})

	t.Run("archived relay", func(t *testing.T) {
		transport, err := submission.NewTransport(t.Context(), submission.TransportConfig{
			Type:     submission.TransportTypeRelay,
			RelayURL: "http://relay.local/send",
			Archive:  mocks.NewInterface(t),
			Logger:   logger,
		})

		require.NoError(t, err)
		_, ok := transport.(*submission.ArchivingTransport)
		assert.True(t, ok)
		_, ok = submission.Inner(transport).(*submission.RelayTransport)
		assert.True(t, ok)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := submission.NewTransport(t.Context(), submission.TransportConfig{Type: "pigeon", Logger: logger})

		require.ErrorContains(t, err, "unsupported transport type: pigeon")
	})
}
