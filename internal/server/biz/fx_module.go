package biz

import (
	"go.uber.org/fx"
)

var Module = fx.Module("biz",
	fx.Provide(NewAuthService),
	fx.Provide(NewUserService),
	fx.Provide(NewLibraryService),
	fx.Provide(NewStaffService),
	fx.Provide(NewMemberService),
	fx.Provide(NewCopyService),
)
