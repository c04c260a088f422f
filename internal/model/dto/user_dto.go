package dto

type AddUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=admin user"`
}

type UpdateUserRequest struct {
	Password   *string `json:"password,omitempty"`
	Role       *string `json:"role,omitempty"`
	Active     *bool   `json:"active,omitempty"`
	Plan       *string `json:"plan,omitempty"`
	UsageLimit *int    `json:"usage_limit,omitempty"`
	EmailLimit *int    `json:"email_limit,omitempty"`
}

type UpdateSettingsRequest struct {
	Settings map[string]any `json:"settings" binding:"required"`
}

// StorageStatus 存储后端状态面板数据
type StorageStatus struct {
	Kind        string `json:"kind"`
	DisplayName string `json:"display_name"`
	Persistent  bool   `json:"persistent"`
	TotalUsers  int    `json:"total_users"`
}
