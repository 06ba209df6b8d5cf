package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type CreateUserMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ResetPasswordMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type ChangeEmailMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}

type GenerationReportMailData struct {
	FullName           string       `json:"fullName"`
	GeneratedFrom      string       `json:"generatedFrom"`
	GeneratedTo        string       `json:"generatedTo"`
	ShiftsCreatedCount int          `json:"shiftsCreatedCount"`
	ShiftsSkippedCount int          `json:"shiftsSkippedCount"`
	SkipReasons        []SkipReason `json:"skipReasons"`
	Errors             []string     `json:"errors"`
}
