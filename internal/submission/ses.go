package submission

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/UnknownOlympus/hestia/internal/quote"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

// SESService is the part of the SES client the transport uses.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESTransport emails each quote to a fixed recipient.
type SESTransport struct {
	client SESService
	from   string
	to     string
	log    *slog.Logger
	policy *bluemonday.Policy
}

// NewSESTransport loads the default AWS configuration for region.
func NewSESTransport(ctx context.Context, region, from, to string, log *slog.Logger) (*SESTransport, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewSESTransportWithClient(ses.NewFromConfig(cfg), from, to, log), nil
}

// NewSESTransportWithClient creates an SES transport around client.
func NewSESTransportWithClient(client SESService, from, to string, log *slog.Logger) *SESTransport {
	return &SESTransport{client: client, from: from, to: to, log: log, policy: bluemonday.StrictPolicy()}
}

// Send emails the quote. The visitor's address is set as Reply-To.
func (st *SESTransport) Send(ctx context.Context, fields url.Values) (*models.Receipt, error) {
	id := uuid.NewString()
	input := &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: []string{st.to}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(Subject(fields))},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(TextBody(fields))},
				Html: &types.Content{Data: aws.String(st.HTMLBody(fields))},
			},
		},
		Source: aws.String(st.from),
	}
	if email := fields.Get(quote.FieldEmail); email != "" {
		input.ReplyToAddresses = []string{email}
	}

	out, err := st.client.SendEmail(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to send quote email: %w", err)
	}

	st.log.InfoContext(ctx, "Quote emailed", "receipt", id, "message_id", aws.ToString(out.MessageId))

	return &models.Receipt{ID: id, Status: http.StatusOK, Accepted: true}, nil
}

// Subject is the email subject line of a quote.
func Subject(fields url.Values) string {
	name := strings.TrimSpace(fields.Get(quote.FieldFirstName) + " " + fields.Get(quote.FieldLastName))
	if name == "" {
		name = "website visitor"
	}

	return "Quote request from " + name
}

// TextBody lists the labelled fields, one per line.
func TextBody(fields url.Values) string {
	var sb strings.Builder
	for _, entry := range entries(fields) {
		fmt.Fprintf(&sb, "%s: %s\n", entry.Label, entry.Value)
	}

	return sb.String()
}

// HTMLBody renders the labelled fields as a table. Values are stripped of markup.
func (st *SESTransport) HTMLBody(fields url.Values) string {
	var sb strings.Builder
	sb.WriteString("<table>")
	for _, entry := range entries(fields) {
		fmt.Fprintf(&sb, "<tr><th>%s</th><td>%s</td></tr>", entry.Label, st.policy.Sanitize(entry.Value))
	}
	sb.WriteString("</table>")

	return sb.String()
}

func entries(fields url.Values) []quote.Entry {
	values := make(models.FieldValues, len(fields))
	for k := range fields {
		values[k] = fields.Get(k)
	}

	return quote.ReviewEntries(values)
}
