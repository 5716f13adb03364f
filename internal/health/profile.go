package health

// Profile holds the patient demographics and free-text conditions used
// to tailor daily trend checks and caregiver reports.
type Profile struct {
	Name           string `json:"name,omitempty"`
	Age            string `json:"age,omitempty"`
	Conditions     string `json:"conditions,omitempty"`
	CaregiverEmail string `json:"caregiver_email,omitempty"`
}
