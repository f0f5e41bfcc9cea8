package domain

// ChatStatus counts today's user and ai messages for one user. UserCount is
// the part of ChatCount the daily limit applies to.
type ChatStatus struct {
	UserName  string `json:"user_name"`
	ChatCount int    `json:"chat_cnt"`
	UserCount int    `json:"-"`
}

// BehaviorReport is an LLM summary of a user's topics and active hours.
type BehaviorReport struct {
	UserName string `json:"user_name"`
	Report   string `json:"report"`
}
