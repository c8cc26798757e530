// Package submission hands a composed quote to whatever system delivers it.
package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/UnknownOlympus/hestia/internal/repository"
)

// Transport delivers a composed field set. A nil error always comes with an
// accepted receipt.
type Transport interface {
	Send(ctx context.Context, fields url.Values) (*models.Receipt, error)
}

// ErrRejected is returned when the receiving system answers but refuses the data.
var ErrRejected = errors.New("submission rejected")

// TransportType selects a Transport implementation.
type TransportType string

const (
	// TransportTypeRelay posts the form to an HTTP mail relay.
	TransportTypeRelay TransportType = "relay"
	// TransportTypeSES emails the quote through Amazon SES.
	TransportTypeSES TransportType = "ses"
)

// TransportConfig holds configuration for creating a transport.
type TransportConfig struct {
	Type      TransportType
	RelayURL  string               // endpoint of the mail relay
	SESRegion string               // AWS region of the SES endpoint
	From      string               // sender address for SES
	To        string               // recipient address for SES
	Archive   repository.Interface // optional; wraps the transport in an ArchivingTransport
	Logger    *slog.Logger
}

// NewTransport builds the configured transport. When an archive is given the
// result is an *ArchivingTransport around it; Inner returns the bare one.
func NewTransport(ctx context.Context, config TransportConfig) (Transport, error) {
	inner, err := newInner(ctx, config)
	if err != nil {
		return nil, err
	}

	if config.Archive == nil {
		return inner, nil
	}

	return NewArchivingTransport(inner, config.Archive, config.Logger), nil
}

func newInner(ctx context.Context, config TransportConfig) (Transport, error) {
	switch config.Type {
	case TransportTypeRelay:
		if config.RelayURL == "" {
			return nil, errors.New("relay URL is required for relay transport")
		}
		return NewRelayTransport(config.RelayURL, config.Logger), nil
	case TransportTypeSES:
		if config.From == "" || config.To == "" {
			return nil, errors.New("sender and recipient are required for SES transport")
		}
		return NewSESTransport(ctx, config.SESRegion, config.From, config.To, config.Logger)
	default:
		return nil, fmt.Errorf("unsupported transport type: %s", config.Type)
	}
}

// Inner returns the transport wrapped by an ArchivingTransport, or t itself.
func Inner(t Transport) Transport {
	if at, ok := t.(*ArchivingTransport); ok {
		return at.inner
	}

	return t
}
