package entity

// User is the principal produced by a successful credential check
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
