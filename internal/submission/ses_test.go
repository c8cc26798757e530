package submission_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"testing"

	"github.com/UnknownOlympus/hestia/internal/submission"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSESService is a mock implementation of SESService for testing.
type mockSESService struct {
	sendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *mockSESService) SendEmail(
	ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options),
) (*ses.SendEmailOutput, error) {
	return m.sendEmailFunc(ctx, params, optFns...)
}

var sesFields = url.Values{
	"firstName":      {"Ann"},
	"lastName":       {"Lee"},
	"emailAddress":   {"ann@example.com"},
	"messageContent": {"<script>alert(1)</script>Back door is open"},
}

func TestSESTransport_Send(t *testing.T) {
	t.Run("email sent", func(t *testing.T) {
		client := &mockSESService{
			sendEmailFunc: func(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
				assert.Equal(t, []string{"office@hestia.example"}, params.Destination.ToAddresses)
				assert.Equal(t, "quotes@hestia.example", aws.ToString(params.Source))
				assert.Equal(t, []string{"ann@example.com"}, params.ReplyToAddresses)
				assert.Equal(t, "Quote request from Ann Lee", aws.ToString(params.Message.Subject.Data))
				assert.Contains(t, aws.ToString(params.Message.Body.Text.Data), "Email: ann@example.com\n")
				assert.NotContains(t, aws.ToString(params.Message.Body.Html.Data), "<script>")
				return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
			},
		}
		transport := submission.NewSESTransportWithClient(client, "quotes@hestia.example", "office@hestia.example", slog.Default())

		receipt, err := transport.Send(t.Context(), sesFields)

		require.NoError(t, err)
		assert.True(t, receipt.Accepted)
		assert.Equal(t, http.StatusOK, receipt.Status)
		assert.NotEmpty(t, receipt.ID)
	})

	t.Run("ses failure", func(t *testing.T) {
		client := &mockSESService{
			sendEmailFunc: func(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
				return nil, assert.AnError
			},
		}
		transport := submission.NewSESTransportWithClient(client, "a@b.co", "c@d.co", slog.Default())

		receipt, err := transport.Send(t.Context(), sesFields)

		require.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, receipt)
	})
}

func TestBodies(t *testing.T) {
	transport := submission.NewSESTransportWithClient(nil, "a@b.co", "c@d.co", slog.Default())

	assert.Equal(t, "Quote request from website visitor", submission.Subject(url.Values{}))
	assert.Equal(t, "First Name: Ann\nLast Name: Lee\nEmail: ann@example.com\nMessage: <script>alert(1)</script>Back door is open\n",
		submission.TextBody(sesFields))
	assert.Equal(t,
		"<table><tr><th>First Name</th><td>Ann</td></tr><tr><th>Last Name</th><td>Lee</td></tr>"+
			"<tr><th>Email</th><td>ann@example.com</td></tr><tr><th>Message</th><td>Back door is open</td></tr></table>",
		transport.HTMLBody(sesFields))
}
