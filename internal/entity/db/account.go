package db

import "time"

const (
	AccountKindStudent = "student"
	AccountKindStaff   = "staff"

	AccountStatusInactive = "INACTIVE"
	AccountStatusActive   = "ACTIVE"

	// Access levels actually checked by the API.
	AccessLevelUser      = 0
	AccessLevelLibrarian = 2
	AccessLevelAdmin     = 3
)

// Account 表示可登录的账户（学生或馆员）。
type Account struct {
	ID                 uint       `gorm:"primarykey" json:"id"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	Kind               string     `gorm:"column:kind;type:varchar(20);index;not null;default:student" json:"kind"`
	Name               string     `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Email              string     `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	RegistrationNo     string     `gorm:"column:registration_no;type:varchar(50);index" json:"registration_no,omitempty"`
	PasswordHash       string     `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	AccessLevel        int        `gorm:"column:access_level;not null;default:0" json:"access_level"`
	Status             string     `gorm:"column:status;type:varchar(20);not null;default:INACTIVE" json:"status"`
	Locked             bool       `gorm:"column:locked;not null;default:false" json:"locked"`
	FailedAttempts     int        `gorm:"column:failed_attempts;not null;default:0" json:"failed_attempts"`
	ActivationCode     *string    `gorm:"column:activation_code;type:varchar(16)" json:"-"`
	SecurityQuestion   string     `gorm:"column:security_question;type:varchar(255)" json:"security_question,omitempty"`
	SecurityAnswerHash string     `gorm:"column:security_answer_hash;type:varchar(255)" json:"-"`
	LastLoginAt        *time.Time `gorm:"column:last_login_at" json:"last_login_at,omitempty"`
	Deleted            bool       `gorm:"column:deleted;not null;default:false;index" json:"deleted"`
	DeletedAt          *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

// TableName 指定表名。
func (Account) TableName() string {
	return "accounts"
}

// CanLogin reports whether the account is in a state where a correct
// password may produce a session.
func (a *Account) CanLogin() bool {
	if a == nil {
		return false
	}
	return !a.Deleted && !a.Locked && a.Status == AccountStatusActive
}
