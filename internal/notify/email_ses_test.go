package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richcards/leadrelay/pkg/logging"
)

type mockSES struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (m *mockSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	m.inputs = append(m.inputs, in)
	if m.err != nil {
		return nil, m.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("ses-msg-1")}, nil
}

func TestNewSESSender_NilClient(t *testing.T) {
	assert.Nil(t, NewSESSender(nil, SESConfig{FromEmail: "noreply@rich.example"}, nil))
}

func TestSESSender_SendBuildsSimpleMessage(t *testing.T) {
	mock := &mockSES{}
	sender := NewSESSender(mock, SESConfig{FromEmail: "noreply@rich.example", FromName: "Rich"}, logging.New("error"))

	result, err := sender.Send(context.Background(), EmailMessage{
		To:      "jane@example.com",
		Subject: "Hello",
		Body:    "plain",
		HTML:    "<p>html</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "ses-msg-1", result.MessageID)

	require.Len(t, mock.inputs, 1)
	in := mock.inputs[0]
	assert.Equal(t, "Rich <noreply@rich.example>", aws.ToString(in.FromEmailAddress))
	assert.Equal(t, []string{"jane@example.com"}, in.Destination.ToAddresses)
	assert.Equal(t, "Hello", aws.ToString(in.Content.Simple.Subject.Data))
	assert.Equal(t, "UTF-8", aws.ToString(in.Content.Simple.Body.Html.Charset))
	assert.Equal(t, "<p>html</p>", aws.ToString(in.Content.Simple.Body.Html.Data))
	assert.Equal(t, "plain", aws.ToString(in.Content.Simple.Body.Text.Data))
}

func TestSESSender_BareFromAddressWithoutName(t *testing.T) {
	mock := &mockSES{}
	sender := NewSESSender(mock, SESConfig{FromEmail: "noreply@rich.example"}, logging.New("error"))

	_, err := sender.Send(context.Background(), EmailMessage{To: "a@b.co", Subject: "s", HTML: "<p>x</p>"})
	require.NoError(t, err)
	assert.Equal(t, "noreply@rich.example", aws.ToString(mock.inputs[0].FromEmailAddress))
	assert.Nil(t, mock.inputs[0].Content.Simple.Body.Text)
}

func TestSESSender_ClassifiesProviderErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ProviderErrorKind
	}{
		{
			name: "unverified address",
			err:  &smithy.GenericAPIError{Code: "MessageRejected", Message: "Email address is not verified. The following identities failed the check: noreply@rich.example"},
			want: KindUnverified,
		},
		{
			name: "mail from domain",
			err:  &smithy.GenericAPIError{Code: "MailFromDomainNotVerifiedException", Message: "domain"},
			want: KindUnverified,
		},
		{
			name: "rejected content",
			err:  &smithy.GenericAPIError{Code: "MessageRejected", Message: "Illegal address"},
			want: KindRejected,
		},
		{
			name: "throttled",
			err:  &smithy.GenericAPIError{Code: "TooManyRequestsException", Message: "slow down"},
			want: KindOther,
		},
		{
			name: "network",
			err:  errors.New("dial tcp: timeout"),
			want: KindOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := NewSESSender(&mockSES{err: tt.err}, SESConfig{FromEmail: "noreply@rich.example"}, logging.New("error"))
			_, err := sender.Send(context.Background(), EmailMessage{To: "a@b.co", Subject: "s", HTML: "x"})

			var perr *ProviderError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, "ses", perr.Provider)
			assert.Equal(t, tt.want, perr.Kind)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
