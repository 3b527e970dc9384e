package customer

import "errors"

var ErrNotFound = errors.New("customer matching query does not exist")

// Customer is a park visitor. UserID is the subject the auth provider assigns
// and is how an authenticated caller is tied to a row.
type Customer struct {
	ID            int64  `json:"id"`
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	FamilyMembers int    `json:"family_members"`
}
