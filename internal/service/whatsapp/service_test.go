package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/lirio/internal/config"
	"github.com/mamadbah2/lirio/internal/domain/models"
	"github.com/mamadbah2/lirio/internal/service/commands"
	farmsvc "github.com/mamadbah2/lirio/internal/service/farm"
	client "github.com/mamadbah2/lirio/pkg/clients/whatsapp"
)

type fakeClient struct {
	sent []client.SendTextMessageRequest
	err  error
}

func (f *fakeClient) SendTextMessage(_ context.Context, req client.SendTextMessageRequest) (*client.SendTextMessageResponse, error) {
	f.sent = append(f.sent, req)
	if f.err != nil {
		return nil, f.err
	}
	return &client.SendTextMessageResponse{}, nil
}

type fakeAI struct {
	command string
	calls   int
}

func (f *fakeAI) TranslateToCommand(context.Context, string) (string, error) {
	f.calls++
	return f.command, nil
}

type stubDispatcher struct {
	got    []models.Command
	sender string
	err    error
}

func (d *stubDispatcher) HandleCommand(_ context.Context, cmd models.Command, sender string) (string, error) {
	d.got = append(d.got, cmd)
	d.sender = sender
	if d.err != nil {
		return "", d.err
	}
	return fmt.Sprintf("ok %s", cmd.Type), nil
}

func textPayload(from, name, body string) models.WebhookPayload {
	return models.WebhookPayload{
		Object: "whatsapp_business_account",
		Entry: []models.WebhookEntry{{
			Changes: []models.WebhookChange{{
				Field: "messages",
				Value: models.WebhookValue{
					Contacts: []models.Contact{{WaID: from, Profile: models.ContactProfile{Name: name}}},
					Messages: []models.InboundMessage{{From: from, ID: "wamid.x", Type: "text", Text: &models.TextContent{Body: body}}},
				},
			}},
		}},
	}
}

func TestVerifyWebhookToken(t *testing.T) {
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{VerifyToken: "abc"}, &fakeClient{}, nil, &stubDispatcher{}, nil)

	challenge, err := svc.VerifyWebhookToken("subscribe", "abc", "42")
	require.NoError(t, err)
	assert.Equal(t, "42", challenge)

	_, err = svc.VerifyWebhookToken("subscribe", "wrong", "42")
	require.Error(t, err)
	_, err = svc.VerifyWebhookToken("unsubscribe", "abc", "42")
	require.Error(t, err)
	_, err = svc.VerifyWebhookToken("", "", "42")
	require.Error(t, err)
}

func TestHandleWebhookDispatchesCommand(t *testing.T) {
	wa := &fakeClient{}
	d := &stubDispatcher{}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, nil, d, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("258840000001", "Elton", "/eggs Galinhas 40")))

	require.Len(t, d.got, 1)
	assert.Equal(t, models.CommandEggs, d.got[0].Type)
	assert.Equal(t, "Elton", d.sender)
	require.Len(t, wa.sent, 1)
	assert.Equal(t, "258840000001", wa.sent[0].To)
	assert.Equal(t, "ok eggs", wa.sent[0].Body)
}

func TestHandleWebhookRepliesWithErrors(t *testing.T) {
	wa := &fakeClient{}
	d := &stubDispatcher{err: fmt.Errorf("sale: %w", farmsvc.ErrInsufficientAnimals)}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, nil, d, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("258840000001", "", "/sale Porcos 99")))
	require.Len(t, wa.sent, 1)
	assert.Equal(t, "Not enough animals in that pen.", wa.sent[0].Body)
	assert.Equal(t, "258840000001", d.sender, "falls back to the phone number without a profile name")
}

func TestHandleWebhookFreeText(t *testing.T) {
	t.Run("without translator", func(t *testing.T) {
		wa := &fakeClient{}
		d := &stubDispatcher{}
		svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, nil, d, nil)

		require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("1", "Elton", "apanhei 40 ovos")))
		assert.Empty(t, d.got)
		require.Len(t, wa.sent, 1)
		assert.Contains(t, wa.sent[0].Body, commands.HelpText)
	})

	t.Run("with translator", func(t *testing.T) {
		wa := &fakeClient{}
		d := &stubDispatcher{}
		ai := &fakeAI{command: "/eggs Galinhas 40"}
		svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, ai, d, nil)

		require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("1", "Elton", "apanhei 40 ovos")))
		require.Len(t, d.got, 1)
		assert.Equal(t, []string{"Galinhas", "40"}, d.got[0].Args)
	})

	t.Run("unknown slash command skips translator", func(t *testing.T) {
		ai := &fakeAI{command: "/stock"}
		svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, &fakeClient{}, ai, &stubDispatcher{}, nil)

		require.NoError(t, svc.HandleWebhook(context.Background(), textPayload("1", "Elton", "/dance")))
		assert.Zero(t, ai.calls)
	})
}

func TestHandleWebhookDeliveryFailure(t *testing.T) {
	wa := &fakeClient{err: errors.New("meta down")}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, nil, &stubDispatcher{}, nil)

	err := svc.HandleWebhook(context.Background(), textPayload("1", "Elton", "/stock"))
	require.Error(t, err)
}

func TestHandleWebhookIgnoresEmptyMessages(t *testing.T) {
	wa := &fakeClient{}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, nil, &stubDispatcher{}, nil)

	payload := textPayload("1", "Elton", "")
	payload.Entry[0].Changes[0].Value.Messages[0].Text = nil
	require.NoError(t, svc.HandleWebhook(context.Background(), payload))
	assert.Empty(t, wa.sent)
}

func TestSendOutbound(t *testing.T) {
	wa := &fakeClient{}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, wa, nil, &stubDispatcher{}, nil)

	require.NoError(t, svc.SendOutbound(context.Background(), models.OutboundMessageRequest{To: "258", Message: "Daily summary"}))
	require.Len(t, wa.sent, 1)
	assert.Equal(t, "Daily summary", wa.sent[0].Body)
}
