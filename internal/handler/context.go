package handler

type ContextKey string

var (
	RoleCtxKey       ContextKey = "role"
	SubCtxKey        ContextKey = "sub"
	MyInfoCtx        ContextKey = "myInfo"
	UserInfoCtx      ContextKey = "userInfo"
	LocationCtx      ContextKey = "location"
	ShiftTemplateCtx ContextKey = "shiftTemplate"
)
