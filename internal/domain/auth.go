package domain

type Provider string

const (
	ProviderLocal Provider = "local"
)

type AuthPayload struct {
	UserID   string `json:"sub"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  *Users `json:"user,omitempty"`
}

type Credentials struct {
	UserName string  `json:"username"`
	Password string  `json:"password"`
	Email    *string `json:"email,omitempty"`
}
