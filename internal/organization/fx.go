package organization

import (
	"github.com/atriumhq/atrium/internal/organization/permissions"
	"github.com/atriumhq/atrium/internal/organization/repository"
	"github.com/atriumhq/atrium/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.New),
	fx.Provide(service.NewSigner),
	fx.Provide(service.New),
	fx.Provide(permissions.NewGuard),
)
