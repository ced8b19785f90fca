package domain

// Profile mirrors /api/profile/.
type Profile struct {
	Username             string `json:"username"`
	Email                string `json:"email"`
	TelegramMobileNumber string `json:"telegram_mobile_number"`
	SubscriptionPlan     string `json:"subscription_plan"`
	AgentTrainingStatus  string `json:"agent_training_status"`
}

// Credentials is the body of POST /api/login/.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the body of POST /api/register/.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by both login and registration.
type AuthResponse struct {
	Access      string `json:"access"`
	Refresh     string `json:"refresh"`
	Username    string `json:"username"`
	UserID      int64  `json:"user_id"`
	IsOnboarded bool   `json:"is_onboarded"`
}
