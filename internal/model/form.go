package model

// FormState holds in-progress values before a create is submitted.
// The zero value is the cleared form.
type FormState struct {
	Name        string
	Description string
}

func (f FormState) IsZero() bool { return f.Name == "" && f.Description == "" }
