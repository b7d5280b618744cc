package model

// Profile is the per-user contact record stored at users/{uid}.
//
// Every field is kept as the string the user typed, age and dob included.
// A save always writes all fields.
type Profile struct {
	UID          string `json:"uid"`
	Name         string `json:"name"`
	MiddleName   string `json:"middlename"`
	LastName     string `json:"lastname"`
	Age          string `json:"age"`
	Phone        string `json:"phone"`
	DOB          string `json:"dob"`
	Address      string `json:"address"`
	City         string `json:"city"`
	Baranggay    string `json:"baranggay"`
	PostalCode   string `json:"postalCode"`
	EmployeeCode string `json:"employeeCode"`
}

// DefaultProfile is the empty profile shown before a user saves anything.
func DefaultProfile(uid string) Profile {
	return Profile{UID: uid}
}

// Fields returns the profile as store fields keyed by their JSON names.
func (p Profile) Fields() map[string]any {
	return map[string]any{
		"uid":          p.UID,
		"name":         p.Name,
		"middlename":   p.MiddleName,
		"lastname":     p.LastName,
		"age":          p.Age,
		"phone":        p.Phone,
		"dob":          p.DOB,
		"address":      p.Address,
		"city":         p.City,
		"baranggay":    p.Baranggay,
		"postalCode":   p.PostalCode,
		"employeeCode": p.EmployeeCode,
	}
}

// DisplayName is "First Last", or "" when no first name is set.
func (p Profile) DisplayName() string {
	if p.Name == "" {
		return ""
	}
	if p.LastName == "" {
		return p.Name
	}
	return p.Name + " " + p.LastName
}
