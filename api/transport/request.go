package transport

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserCreateRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserUpdateRequest uses pointers so omitted fields stay unchanged.
type UserUpdateRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

type AccountRequest struct {
	Login    int64   `json:"login"`
	Server   string  `json:"server"`
	Name     string  `json:"name"`
	Group    string  `json:"group"`
	Leverage int     `json:"leverage"`
	Currency string  `json:"currency"`
	Balance  float64 `json:"balance"`
	Status   string  `json:"status"`
	OwnerID  string  `json:"owner_id"`
}
