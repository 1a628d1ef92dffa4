package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/lirio/internal/config"
	"github.com/mamadbah2/lirio/internal/domain/models"
	"github.com/mamadbah2/lirio/internal/service/commands"
	farmsvc "github.com/mamadbah2/lirio/internal/service/farm"
	"github.com/mamadbah2/lirio/pkg/clients/anthropic"
	client "github.com/mamadbah2/lirio/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// MessagingService describes the operations the HTTP layer and scheduler can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	ai         anthropic.Client
	dispatcher commands.Dispatcher
	logger     *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance. ai may be nil, in which
// case free text is answered with the command help.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, client client.Client, ai anthropic.Client, dispatcher commands.Dispatcher, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		cfg:        cfg,
		client:     client,
		ai:         ai,
		dispatcher: dispatcher,
		logger:     logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook processes inbound webhook payloads. Every message is answered;
// the first delivery failure is returned after all messages were tried.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				sender := change.Value.ContactName(msg.From)
				if err := s.handleInboundMessage(ctx, msg, sender); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}

	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage, sender string) error {
	text := strings.TrimSpace(msg.Body())
	if text == "" {
		s.logger.Debug("ignoring message without text", zap.String("type", msg.Type), zap.String("message_id", msg.ID))
		return nil
	}

	cmd := s.parse(ctx, text)

	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("sender", sender),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	var reply string
	if cmd.Type == models.CommandUnknown {
		reply = "Unknown command.\n" + commands.HelpText
	} else {
		out, err := s.dispatcher.HandleCommand(ctx, cmd, sender)
		if err != nil {
			s.logger.Warn("command failed", zap.String("command", string(cmd.Type)), zap.Error(err))
			reply = errorReply(err)
		} else {
			reply = out
		}
	}

	return s.send(ctx, msg.From, reply, false)
}

// parse reads a slash command, falling back to the AI translator for free text.
func (s *MetaWhatsAppService) parse(ctx context.Context, text string) models.Command {
	cmd := models.ParseCommand(text)
	if cmd.Type != models.CommandUnknown || s.ai == nil || strings.HasPrefix(text, "/") {
		return cmd
	}

	translated, err := s.ai.TranslateToCommand(ctx, text)
	if err != nil {
		s.logger.Warn("ai translation failed", zap.Error(err))
		return cmd
	}
	if translated == "" {
		return cmd
	}
	s.logger.Debug("translated free text", zap.String("text", text), zap.String("command", translated))
	return models.ParseCommand(translated)
}

// SendOutbound lets internal operators and scheduled jobs push notifications.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	return s.send(ctx, req.To, req.Message, req.PreviewURL)
}

func (s *MetaWhatsAppService) send(ctx context.Context, to, body string, preview bool) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         to,
		Body:       body,
		PreviewURL: preview,
	})
	return err
}

// errorReply turns a command failure into a message for the worker.
func errorReply(err error) string {
	switch {
	case errors.Is(err, commands.ErrInvalidArguments):
		return "Could not read that command.\n" + commands.HelpText
	case errors.Is(err, commands.ErrUnsupportedCommand):
		return "That command is not available."
	case errors.Is(err, farmsvc.ErrPenNotFound):
		return "No pen matches that name or type."
	case errors.Is(err, farmsvc.ErrFeedTypeNotFound):
		return "No feed type matches that name."
	case errors.Is(err, farmsvc.ErrInsufficientAnimals):
		return "Not enough animals in that pen."
	case errors.Is(err, farmsvc.ErrInsufficientStock):
		return "Not enough feed in stock."
	case errors.Is(err, farmsvc.ErrInvalidQuantity):
		return "Quantities must be greater than zero."
	case errors.Is(err, farmsvc.ErrInvalidInput):
		return "Invalid input: " + err.Error()
	default:
		return "Something went wrong, the operation was not saved."
	}
}
