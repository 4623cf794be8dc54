package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flashlark/larkmemo/internal/biz/domain"
	"github.com/flashlark/larkmemo/internal/biz/repo"
	"github.com/flashlark/larkmemo/internal/infra/retry"
)

// ReplyPollConfig tunes WaitForReply
type ReplyPollConfig struct {
	Interval   time.Duration
	Timeout    time.Duration
	PreviewLen int
}

// DefaultReplyPollConfig polls every second for ten seconds
func DefaultReplyPollConfig() ReplyPollConfig {
	return ReplyPollConfig{Interval: time.Second, Timeout: 10 * time.Second, PreviewLen: 50}
}

// MemoDeps groups the collaborators of MemoUsecase
type MemoDeps struct {
	Tokens      repo.TokenRepo
	Messages    repo.MessageRepo
	Uploads     repo.UploadRepo
	Webhooks    repo.WebhookRepo
	Settings    *SettingsUsecase
	History     *HistoryUsecase
	CustomChats *CustomChatUsecase
}

// MemoUsecase sends memos and records the outcome
type MemoUsecase struct {
	tokens      repo.TokenRepo
	messages    repo.MessageRepo
	uploads     repo.UploadRepo
	webhooks    repo.WebhookRepo
	settings    *SettingsUsecase
	history     *HistoryUsecase
	customChats *CustomChatUsecase

	retry  retry.Options
	poll   ReplyPollConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewMemoUsecase creates a new memo usecase
func NewMemoUsecase(deps MemoDeps, retryOpts retry.Options, poll ReplyPollConfig, logger *slog.Logger) *MemoUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultReplyPollConfig()
	if poll.Interval <= 0 {
		poll.Interval = def.Interval
	}
	if poll.Timeout <= 0 {
		poll.Timeout = def.Timeout
	}
	if poll.PreviewLen <= 0 {
		poll.PreviewLen = def.PreviewLen
	}
	// Token invalidation is retried alongside the transient failures
	base := retryOpts.Retryable
	if base == nil {
		base = retry.DefaultRetryable
	}
	retryOpts.Retryable = func(err error) bool {
		return base(err) || isInvalidToken(err)
	}

	return &MemoUsecase{
		tokens:      deps.Tokens,
		messages:    deps.Messages,
		uploads:     deps.Uploads,
		webhooks:    deps.Webhooks,
		settings:    deps.Settings,
		history:     deps.History,
		customChats: deps.CustomChats,
		retry:       retryOpts,
		poll:        poll,
		logger:      logger,
		now:         time.Now,
	}
}

// destination is a resolved send target
type destination struct {
	id         string
	name       string
	webhookURL string
	recipient  domain.Recipient
	botChat    bool
}

// Send delivers a memo and records it in history.
// Failures after validation are recorded before being returned.
func (uc *MemoUsecase) Send(ctx context.Context, req domain.MemoRequest) (*domain.SendResult, error) {
	if strings.TrimSpace(req.Text) == "" && len(req.Files) == 0 {
		return nil, &domain.ValidationError{Entity: "memo", Problems: []string{"text or files are required"}}
	}
	if err := domain.ValidateAttachments(req.Files); err != nil {
		return nil, err
	}

	settings, err := uc.settings.Effective(ctx)
	if err != nil {
		return nil, err
	}

	dest, err := uc.resolve(ctx, req, settings)
	if err != nil {
		uc.record(ctx, req, req.Destination, req.DestinationName, err)
		return nil, err
	}

	result := &domain.SendResult{
		Destination:     dest.id,
		DestinationName: dest.name,
		Webhook:         dest.webhookURL != "",
		BotChat:         dest.botChat,
	}
	text := domain.DecorateWithTimestamp(req.Text, settings.PrefixTimestamp, uc.now())

	if dest.webhookURL != "" {
		err = uc.sendWebhook(ctx, dest, req, text, result)
		uc.record(ctx, req, dest.id, dest.name, err)
		return result, err
	}

	creds := settings.Credentials()
	if missing := creds.Missing(); len(missing) > 0 {
		err := &domain.ConfigurationError{Fields: missing}
		uc.record(ctx, req, dest.id, dest.name, err)
		return nil, err
	}

	tok, err := uc.tokens.Token(ctx, creds)
	if err != nil {
		uc.record(ctx, req, dest.id, dest.name, err)
		return nil, err
	}

	// One idempotency key per logical send, reused across retries
	sendUUID := uuid.NewString()

	if strings.TrimSpace(req.Text) != "" {
		delivered, err := retry.Do(ctx, uc.retry, func(ctx context.Context) (*domain.DeliveryResult, error) {
			res, err := uc.messages.SendText(ctx, tok, text, dest.recipient, sendUUID)
			if err != nil && isInvalidToken(err) {
				uc.tokens.Invalidate(creds)
				if fresh, terr := uc.tokens.Token(ctx, creds); terr == nil {
					tok = fresh
				}
			}
			return res, err
		})
		if err != nil {
			uc.logger.Error("send memo text failed",
				slog.String("destination", dest.id),
				slog.Any("error", err),
			)
			uc.record(ctx, req, dest.id, dest.name, err)
			return nil, err
		}
		result.Text = delivered
	}

	for i := range req.Files {
		result.Files = append(result.Files, uc.sendFile(ctx, tok, &req.Files[i], dest.recipient, sendUUID, i))
	}

	var sendErr error
	if result.Text == nil && result.FailedFiles() == len(result.Files) {
		sendErr = fmt.Errorf("all %d files failed: %s", len(result.Files), result.Files[0].Error)
	}
	uc.record(ctx, req, dest.id, dest.name, sendErr)

	if sendErr == nil {
		if err := uc.settings.SetSelectedChatID(ctx, dest.id); err != nil {
			uc.logger.Warn("persist selected chat failed", slog.Any("error", err))
		}
		uc.logger.Info("memo sent",
			slog.String("destination", dest.id),
			slog.Int("files", len(result.Files)),
			slog.Int("failed_files", result.FailedFiles()),
		)
	}
	return result, sendErr
}

func (uc *MemoUsecase) resolve(ctx context.Context, req domain.MemoRequest, settings domain.Settings) (*destination, error) {
	target := strings.TrimSpace(req.Destination)

	if target != "" && uc.customChats != nil {
		chat, err := uc.customChats.Get(ctx, target)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if chat != nil {
			if chat.Type == domain.CustomChatWebhook {
				return &destination{id: chat.ID, name: chat.Name, webhookURL: chat.WebhookURL}, nil
			}
			return &destination{
				id:        chat.ID,
				name:      chat.Name,
				recipient: domain.Recipient{ID: chat.Target(), Kind: domain.ReceiveIDTypeChatID},
			}, nil
		}
	}

	if target == "" || target == strings.TrimSpace(settings.ReceiveID) {
		rcpt, err := domain.NewRecipient(settings.ReceiveID, settings.ReceiveIDType)
		if err != nil {
			return nil, err
		}
		name := req.DestinationName
		if name == "" {
			name = domain.DefaultChatName
		}
		return &destination{id: rcpt.ID, name: name, recipient: rcpt, botChat: true}, nil
	}

	name := req.DestinationName
	if name == "" {
		name = target
	}
	return &destination{
		id:        target,
		name:      name,
		recipient: domain.Recipient{ID: target, Kind: domain.ReceiveIDTypeChatID},
	}, nil
}

func (uc *MemoUsecase) sendWebhook(ctx context.Context, dest *destination, req domain.MemoRequest, text string, result *domain.SendResult) error {
	for _, f := range req.Files {
		result.Files = append(result.Files, domain.FileResult{Name: f.Name, Skipped: true, Error: "files cannot be sent to a webhook"})
	}
	if strings.TrimSpace(req.Text) == "" {
		return &domain.ValidationError{Entity: "memo", Problems: []string{"webhook chats accept text only"}}
	}

	_, err := retry.Do(ctx, uc.retry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, uc.webhooks.SendWebhook(ctx, dest.webhookURL, text)
	})
	if err != nil {
		uc.logger.Error("send webhook memo failed", slog.String("custom_chat", dest.id), slog.Any("error", err))
		return err
	}
	result.Text = &domain.DeliveryResult{CreateTime: uc.now()}
	return nil
}

func (uc *MemoUsecase) sendFile(ctx context.Context, tok domain.AccessToken, f *domain.AttachedFile, to domain.Recipient, sendUUID string, index int) domain.FileResult {
	res := domain.FileResult{Name: f.Name}

	mimeType := f.MimeType
	if mimeType == "" {
		mimeType = domain.MimeTypeFor(f.Name)
	}

	key, err := uc.uploads.Upload(ctx, tok, f.Data, f.Name, mimeType)
	if err != nil {
		uc.logger.Warn("upload attachment failed", slog.String("file", f.Name), slog.Any("error", err))
		res.Error = err.Error()
		return res
	}
	res.Key = key

	// Each file message needs its own idempotency key
	delivered, err := uc.messages.SendFile(ctx, tok, key, f.Name, mimeType, to, fmt.Sprintf("%s-f%d", sendUUID, index))
	if err != nil {
		uc.logger.Warn("send attachment failed", slog.String("file", f.Name), slog.Any("error", err))
		res.Error = err.Error()
		return res
	}
	res.MessageID = delivered.MessageID
	return res
}

// record appends the send outcome to history; write failures are only logged
func (uc *MemoUsecase) record(ctx context.Context, req domain.MemoRequest, dest, name string, sendErr error) {
	if strings.TrimSpace(dest) == "" {
		dest = domain.UnresolvedDestination
	}
	entry := domain.HistoryEntry{
		Content:         req.HistoryContent(),
		Destination:     dest,
		DestinationName: name,
		Timestamp:       uc.now(),
		Success:         sendErr == nil,
	}
	if sendErr != nil {
		entry.Error = sendErr.Error()
	}
	if err := uc.history.Record(ctx, entry); err != nil {
		uc.logger.Warn("record history failed", slog.Any("error", err))
	}
}

// WaitForReply polls chatID for an app message created after the given time.
// Poll errors end the wait without an error.
func (uc *MemoUsecase) WaitForReply(ctx context.Context, chatID string, after time.Time) (*domain.BotReply, bool) {
	settings, err := uc.settings.Effective(ctx)
	if err != nil {
		uc.logger.Warn("reply poll skipped", slog.Any("error", err))
		return nil, false
	}
	tok, err := uc.tokens.Token(ctx, settings.Credentials())
	if err != nil {
		uc.logger.Warn("reply poll skipped", slog.Any("error", err))
		return nil, false
	}

	ctx, cancel := context.WithTimeout(ctx, uc.poll.Timeout)
	defer cancel()

	ticker := time.NewTicker(uc.poll.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, false
		case <-ticker.C:
		}

		msgs, err := uc.messages.ListRecent(ctx, tok, chatID, 20)
		if err != nil {
			if !isContextErr(err) {
				uc.logger.Warn("reply poll failed", slog.String("chat_id", chatID), slog.Any("error", err))
			}
			return nil, false
		}
		for i := range msgs {
			m := &msgs[i]
			if m.IsFromApp() && m.IsAfter(after) {
				text := m.Text()
				return &domain.BotReply{
					MessageID: m.ID,
					Text:      text,
					Preview:   domain.PreviewText(text, uc.poll.PreviewLen),
					At:        m.CreateTime,
				}, true
			}
		}
	}
}

func isInvalidToken(err error) bool {
	code, ok := domain.CodeOf(err)
	return ok && domain.IsInvalidTokenCode(code)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
