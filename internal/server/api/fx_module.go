package api

import (
	"go.uber.org/fx"
)

var Module = fx.Module("api",
	fx.Provide(NewSystemHandlers),
	fx.Provide(NewAuthHandlers),
	fx.Provide(NewPermissionHandlers),
	fx.Provide(NewLibraryHandlers),
	fx.Provide(NewStaffHandlers),
	fx.Provide(NewMemberHandlers),
	fx.Provide(NewCopyHandlers),
)
