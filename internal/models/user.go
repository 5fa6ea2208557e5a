package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name           string               `bson:"name" json:"name"`
	Username       string               `bson:"username" json:"username"`
	Email          string               `bson:"email" json:"email"`
	Password       string               `bson:"password" json:"-"`
	Bio            string               `bson:"bio,omitempty" json:"bio,omitempty"`
	Website        string               `bson:"website,omitempty" json:"website,omitempty"`
	Phone          string               `bson:"phone,omitempty" json:"phone,omitempty"`
	ProfilePicture string               `bson:"profile_picture,omitempty" json:"profilePicture,omitempty"`
	IsVerified     bool                 `bson:"is_verified" json:"isVerified"`
	OTP            string               `bson:"otp,omitempty" json:"-"`
	OTPExpiry      *time.Time           `bson:"otp_expiry,omitempty" json:"-"`
	Followers      []primitive.ObjectID `bson:"followers" json:"followers"`
	Following      []primitive.ObjectID `bson:"following" json:"following"`
	CreatedAt      time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updated_at" json:"updatedAt"`
}

// Profile is the representation returned to other users: no credential, no
// OTP state.
type Profile struct {
	ID             primitive.ObjectID `json:"id"`
	Name           string             `json:"name"`
	Username       string             `json:"username"`
	Bio            string             `json:"bio,omitempty"`
	Website        string             `json:"website,omitempty"`
	Phone          string             `json:"phone,omitempty"`
	ProfilePicture string             `json:"profilePicture,omitempty"`
	Followers      int                `json:"followers"`
	Following      int                `json:"following"`
	CreatedAt      time.Time          `json:"createdAt"`
}

func (u *User) Profile() *Profile {
	return &Profile{
		ID:             u.ID,
		Name:           u.Name,
		Username:       u.Username,
		Bio:            u.Bio,
		Website:        u.Website,
		Phone:          u.Phone,
		ProfilePicture: u.ProfilePicture,
		Followers:      len(u.Followers),
		Following:      len(u.Following),
		CreatedAt:      u.CreatedAt,
	}
}
