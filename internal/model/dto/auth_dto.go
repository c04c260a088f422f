package dto

// 登录结果状态
const (
	StatusSuccess  = "success"
	StatusInactive = "inactive"
	StatusInvalid  = "invalid"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Status  string       `json:"status"`
	Token   string       `json:"token,omitempty"`
	Role    string       `json:"role,omitempty"`
	Session *SessionInfo `json:"session,omitempty"`
}

// SessionInfo 登录成功后下发的完整设置快照，供调用方填充会话
type SessionInfo struct {
	Username        string `json:"username"`
	Role            string `json:"role"`
	Plan            string `json:"plan"`
	OpenrouterKey   string `json:"openrouter_key"`
	AimlapiKey      string `json:"aimlapi_key"`
	BytezKey        string `json:"bytez_key"`
	DefaultProvider string `json:"default_provider"`
	SMTPUser        string `json:"smtp_user"`
	SMTPPass        string `json:"smtp_pass"`
	GSheetsCreds    string `json:"gsheets_creds"`
	UsageCount      int    `json:"usage_count"`
	UsageLimit      int    `json:"usage_limit"`
	EmailCount      int    `json:"email_count"`
	EmailLimit      int    `json:"email_limit"`
}

// AuthResult Auth Gate 的判定结果
type AuthResult struct {
	Status  string
	Role    string
	Session *SessionInfo
}
