package handler

type ContextKey string

var (
	RoleCtxKey                       ContextKey = "role"
	SubCtxKey                        ContextKey = "sub"
	MyInfoCtx                        ContextKey = "myInfo"
	UserInfoCtx                      ContextKey = "userInfo"
	RosterTemplateCtx                ContextKey = "rosterTemplate"
	RosterPlanCtx                    ContextKey = "rosterPlan"
	LatestSubmissionAvailablePlanCtx ContextKey = "latestSubmissionAvailablePlan"
)
