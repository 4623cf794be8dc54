package biz

import (
	"github.com/flashlark/larkmemo/internal/biz/usecase"
)

// Usecases contains all usecases
type Usecases struct {
	Settings   *usecase.SettingsUsecase
	History    *usecase.HistoryUsecase
	CustomChat *usecase.CustomChatUsecase
	Template   *usecase.TemplateUsecase
	ChatList   *usecase.ChatListUsecase
	Memo       *usecase.MemoUsecase
}
