package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/flashlark/larkmemo/internal/biz/domain"
	"github.com/flashlark/larkmemo/internal/biz/repo"
)

// Mock implementations

type mockHistoryRepo struct {
	entries []domain.HistoryEntry
	err     error
}

func (m *mockHistoryRepo) Load(ctx context.Context) ([]domain.HistoryEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]domain.HistoryEntry(nil), m.entries...), nil
}

func (m *mockHistoryRepo) Save(ctx context.Context, entries []domain.HistoryEntry) error {
	m.entries = entries
	return nil
}

func (m *mockHistoryRepo) Clear(ctx context.Context) error {
	m.entries = nil
	return nil
}

type mockCustomChatRepo struct {
	chats []domain.CustomChat
}

func (m *mockCustomChatRepo) Load(ctx context.Context) ([]domain.CustomChat, error) {
	return append([]domain.CustomChat(nil), m.chats...), nil
}

func (m *mockCustomChatRepo) Save(ctx context.Context, chats []domain.CustomChat) error {
	m.chats = chats
	return nil
}

func (m *mockCustomChatRepo) Clear(ctx context.Context) error {
	m.chats = nil
	return nil
}

type mockTemplateRepo struct {
	templates []domain.Template
	selected  string
}

func (m *mockTemplateRepo) Load(ctx context.Context) ([]domain.Template, error) {
	return append([]domain.Template(nil), m.templates...), nil
}

func (m *mockTemplateRepo) Save(ctx context.Context, templates []domain.Template) error {
	m.templates = templates
	return nil
}

func (m *mockTemplateRepo) SelectedID(ctx context.Context) (string, error) {
	return m.selected, nil
}

func (m *mockTemplateRepo) SetSelectedID(ctx context.Context, id string) error {
	m.selected = id
	return nil
}

type mockSettingsRepo struct {
	override domain.SettingsOverride
	selected string
}

func (m *mockSettingsRepo) LoadOverride(ctx context.Context) (domain.SettingsOverride, error) {
	return m.override, nil
}

func (m *mockSettingsRepo) SaveOverride(ctx context.Context, o domain.SettingsOverride) error {
	m.override = o
	return nil
}

func (m *mockSettingsRepo) SelectedChatID(ctx context.Context) (string, error) {
	return m.selected, nil
}

func (m *mockSettingsRepo) SetSelectedChatID(ctx context.Context, chatID string) error {
	m.selected = chatID
	return nil
}

type mockBotInfoRepo struct {
	mu      sync.Mutex
	entries map[string]*domain.CachedBotInfo
	puts    int
}

func newMockBotInfoRepo() *mockBotInfoRepo {
	return &mockBotInfoRepo{entries: make(map[string]*domain.CachedBotInfo)}
}

func (m *mockBotInfoRepo) Get(ctx context.Context, appID, receiverID string) (*domain.CachedBotInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[appID+":"+receiverID], nil
}

func (m *mockBotInfoRepo) Put(ctx context.Context, info *domain.CachedBotInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[info.AppID+":"+info.ReceiverID] = info
	m.puts++
	return nil
}

func (m *mockBotInfoRepo) Delete(ctx context.Context, appID, receiverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, appID+":"+receiverID)
	return nil
}

func (m *mockBotInfoRepo) DeleteOthers(ctx context.Context, appID, receiverID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.entries {
		if k != appID+":"+receiverID {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}

type mockTokenRepo struct {
	mu          sync.Mutex
	token       string
	err         error
	calls       int
	invalidated int
}

func (m *mockTokenRepo) Token(ctx context.Context, creds domain.Credentials) (domain.AccessToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return domain.AccessToken{}, m.err
	}
	tok := m.token
	if tok == "" {
		tok = "t-test"
	}
	return domain.AccessToken{Value: tok, Domain: creds.Domain, AppID: creds.AppID}, nil
}

func (m *mockTokenRepo) Invalidate(creds domain.Credentials) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated++
}

type sentMessage struct {
	text    string
	fileKey string
	to      domain.Recipient
	uuid    string
}

type mockMessageRepo struct {
	sent        []sentMessage
	textErrs    []error // consumed one per SendText call
	fileErr     map[string]error
	recent      []domain.Message
	recentErr   error
	recentCalls int
}

func (m *mockMessageRepo) SendText(ctx context.Context, tok domain.AccessToken, text string, to domain.Recipient, uuid string) (*domain.DeliveryResult, error) {
	m.sent = append(m.sent, sentMessage{text: text, to: to, uuid: uuid})
	if len(m.textErrs) > 0 {
		err := m.textErrs[0]
		m.textErrs = m.textErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &domain.DeliveryResult{MessageID: "om_text", ChatID: "oc_bot"}, nil
}

func (m *mockMessageRepo) SendFile(ctx context.Context, tok domain.AccessToken, fileKey, fileName, mimeType string, to domain.Recipient, uuid string) (*domain.DeliveryResult, error) {
	m.sent = append(m.sent, sentMessage{fileKey: fileKey, to: to, uuid: uuid})
	if err := m.fileErr[fileName]; err != nil {
		return nil, err
	}
	return &domain.DeliveryResult{MessageID: "om_" + fileName}, nil
}

func (m *mockMessageRepo) ListRecent(ctx context.Context, tok domain.AccessToken, chatID string, limit int) ([]domain.Message, error) {
	m.recentCalls++
	return m.recent, m.recentErr
}

type mockUploadRepo struct {
	uploaded []string
	failOn   string
}

func (m *mockUploadRepo) Upload(ctx context.Context, tok domain.AccessToken, base64Data, fileName, mimeType string) (string, error) {
	m.uploaded = append(m.uploaded, fileName)
	if fileName == m.failOn {
		return "", &domain.UploadError{Kind: domain.UploadErrorAPI, FileName: fileName, Code: 234001, Msg: "invalid file"}
	}
	return "key_" + strings.TrimSuffix(fileName, ".png"), nil
}

type mockWebhookRepo struct {
	urls  []string
	texts []string
	err   error
}

func (m *mockWebhookRepo) SendWebhook(ctx context.Context, url, text string) error {
	m.urls = append(m.urls, url)
	m.texts = append(m.texts, text)
	return m.err
}

type mockChatRepo struct {
	mu       sync.Mutex
	pages    map[string][]*repo.ChatPage // by chat type
	pageErr  map[string]error            // by chat type, returned on the last page
	bot      *domain.BotInfo
	botErr   error
	botCalls int
}

func (m *mockChatRepo) ListChatsPage(ctx context.Context, tok domain.AccessToken, chatType, pageToken string, pageSize int) (*repo.ChatPage, error) {
	pages := m.pages[chatType]
	idx := 0
	if pageToken != "" {
		for i := range pages {
			if pages[i].PageToken == pageToken {
				idx = i + 1
			}
		}
	}
	if idx >= len(pages) {
		if err := m.pageErr[chatType]; err != nil {
			return nil, err
		}
		return &repo.ChatPage{}, nil
	}
	return pages[idx], nil
}

func (m *mockChatRepo) BotInfo(ctx context.Context, tok domain.AccessToken) (*domain.BotInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.botCalls++
	if m.botErr != nil {
		return nil, m.botErr
	}
	return m.bot, nil
}

var (
	_ repo.HistoryRepo    = (*mockHistoryRepo)(nil)
	_ repo.CustomChatRepo = (*mockCustomChatRepo)(nil)
	_ repo.TemplateRepo   = (*mockTemplateRepo)(nil)
	_ repo.SettingsRepo   = (*mockSettingsRepo)(nil)
	_ repo.BotInfoRepo    = (*mockBotInfoRepo)(nil)
	_ repo.TokenRepo      = (*mockTokenRepo)(nil)
	_ repo.MessageRepo    = (*mockMessageRepo)(nil)
	_ repo.UploadRepo     = (*mockUploadRepo)(nil)
	_ repo.WebhookRepo    = (*mockWebhookRepo)(nil)
	_ repo.ChatRepo       = (*mockChatRepo)(nil)
)
