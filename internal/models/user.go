package models

import "time"

// User is a store account. Password holds the bcrypt hash and is never
// serialized. The reset token pair is either fully set or fully cleared, and
// ResetPasswordToken holds the token's SHA-256 digest, not the token.
type User struct {
	ID                   string     `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	FirstName            string     `json:"firstName" gorm:"type:varchar(100)" bson:"firstName"`
	LastName             string     `json:"lastName" gorm:"type:varchar(100)" bson:"lastName"`
	Email                string     `json:"email" gorm:"uniqueIndex;type:varchar(255)" bson:"email"`
	MobileNo             string     `json:"mobileNo" gorm:"type:varchar(11)" bson:"mobileNo"`
	Password             string     `json:"-" gorm:"type:varchar(255)" bson:"password"`
	IsAdmin              bool       `json:"isAdmin" bson:"isAdmin"`
	ProfileImage         string     `json:"profileImage" bson:"profileImage"`
	ResetPasswordToken   *string    `json:"-" gorm:"type:varchar(64);index" bson:"resetPasswordToken,omitempty"`
	ResetPasswordExpires *time.Time `json:"-" bson:"resetPasswordExpires,omitempty"`
	CreatedAt            time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// ResetTokenValid reports whether digest matches the stored reset token
// digest and has not expired at now.
func (u *User) ResetTokenValid(digest string, now time.Time) bool {
	if u.ResetPasswordToken == nil || u.ResetPasswordExpires == nil {
		return false
	}
	return *u.ResetPasswordToken == digest && u.ResetPasswordExpires.After(now)
}
