package handler

import (
	"dmchat/internal/app/chat"
	"dmchat/internal/app/storage"
	"dmchat/internal/app/store"
	"dmchat/internal/configs"
)

// AppDeps bundles the shared dependencies injected into every handler.
type AppDeps struct {
	Config         *configs.AppConfig
	Store          store.Store
	Hub            *chat.Hub
	Conversations  *chat.ConversationService
	Messages       *chat.MessageService
	Directory      *chat.DirectoryService
	StorageService storage.StorageService
}
