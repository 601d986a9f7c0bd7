package models

//User represents a canteen account, either a student or staff member

type User struct {
	ID       interface{} `json:"id" bson:"_id,omitempty"`
	Username string      `json:"username" bson:"username"`
	Password string      `json:"password" bson:"password"`
	Role     string      `json:"role" bson:"role"`
}

const (
	RoleStudent = "student"
	RoleStaff   = "staff"
)

type PublicUser struct {
	Username string `json:"username" bson:"username"`
	Role     string `json:"role" bson:"role"`
}
