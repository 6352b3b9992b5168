package domain

const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// User is a registered account on the MediSage service. The mobile number is
// the login key; records are immutable once created on the client side.
type User struct {
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	MobileNumber string `json:"mobile_number"`
	Role         string `json:"role"`
}
