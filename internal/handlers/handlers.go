package handlers

import (
	"go.uber.org/zap"

	"github.com/DevilCodeX-123/College-Hub-sub003/internal/database"
	"github.com/DevilCodeX-123/College-Hub-sub003/internal/handlers/admin"
	"github.com/DevilCodeX-123/College-Hub-sub003/internal/service"
)

// Handlers содержит все HTTP обработчики
type Handlers struct {
	Health *HealthHandler
	Reset  *admin.ResetHandler
	Level  *admin.LevelHandler
}

// HandlerDependencies содержит зависимости для создания handlers
type HandlerDependencies struct {
	Service      *service.Service
	DB           *database.DB
	HealthChecks []NamedCheck
	Logger       *zap.Logger
}

// NewHandlers создает новый экземпляр Handlers со всеми обработчиками
func NewHandlers(deps *HandlerDependencies) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(deps.DB, deps.HealthChecks...),
		Reset:  admin.NewResetHandler(deps.Service.WeeklyReset, deps.Logger),
		Level:  admin.NewLevelHandler(deps.Service.Level, deps.Logger),
	}
}
