package entity

import "time"

// AccountUpdates 账户更新字段
type AccountUpdates struct {
	Name               *string
	PasswordHash       *string
	Status             *string
	Locked             *bool
	FailedAttempts     *int
	ActivationCode     **string
	SecurityQuestion   *string
	SecurityAnswerHash *string
	LastLoginAt        *time.Time
	Deleted            *bool
	DeletedAt          *time.Time
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u AccountUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	if u.PasswordHash != nil {
		updates["password_hash"] = *u.PasswordHash
	}
	if u.Status != nil {
		updates["status"] = *u.Status
	}
	if u.Locked != nil {
		updates["locked"] = *u.Locked
	}
	if u.FailedAttempts != nil {
		updates["failed_attempts"] = *u.FailedAttempts
	}
	if u.ActivationCode != nil {
		// Double pointer so the code can be explicitly cleared to NULL.
		updates["activation_code"] = *u.ActivationCode
	}
	if u.SecurityQuestion != nil {
		updates["security_question"] = *u.SecurityQuestion
	}
	if u.SecurityAnswerHash != nil {
		updates["security_answer_hash"] = *u.SecurityAnswerHash
	}
	if u.LastLoginAt != nil {
		updates["last_login_at"] = *u.LastLoginAt
	}
	if u.Deleted != nil {
		updates["deleted"] = *u.Deleted
	}
	if u.DeletedAt != nil {
		updates["deleted_at"] = *u.DeletedAt
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u AccountUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// BookUpdates 图书更新字段
type BookUpdates struct {
	Title    *string
	Author   *string
	Quantity *int
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u BookUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Title != nil {
		updates["title"] = *u.Title
	}
	if u.Author != nil {
		updates["author"] = *u.Author
	}
	if u.Quantity != nil {
		updates["quantity"] = *u.Quantity
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u BookUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}
