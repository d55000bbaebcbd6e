package address

// Input carries inline address fields supplied at checkout when the
// buyer has no saved address to reference.
type Input struct {
	FullName     string  `json:"fullName" validate:"required,max=191"`
	Phone        *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	AddressLine1 string  `json:"addressLine1" validate:"required,max=191"`
	AddressLine2 *string `json:"addressLine2,omitempty" validate:"omitempty,max=191"`
	City         string  `json:"city" validate:"required,max=100"`
	State        string  `json:"state" validate:"required,max=100"`
	PostalCode   string  `json:"postalCode" validate:"required,max=20"`
	Country      string  `json:"country" validate:"omitempty,max=100"`
	IsDefault    bool    `json:"isDefault"`
}

// Selection picks an address for one role (shipping or billing): either an
// existing address id owned by the user, or inline fields to insert.
type Selection struct {
	AddressID *int64
	Inline    *Input
}

// Empty reports whether neither form was provided.
func (s Selection) Empty() bool {
	return s.AddressID == nil && s.Inline == nil
}
