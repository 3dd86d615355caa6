package models

type GenerateRequest struct {
	GroupID        string     `json:"group_id"`
	LoopID         string     `json:"loop_id"`
	Difficulty     Difficulty `json:"difficulty"`
	Count          int        `json:"count,omitempty"`
	PromptOverride string     `json:"prompt_override,omitempty"`
}

type GenerateResponse struct {
	Difficulty Difficulty `json:"difficulty"`
	Count      int        `json:"count"`
	ShareToken string     `json:"share_token"`
}

type SelectPresetRequest struct {
	GroupID      string       `json:"group_id"`
	LoopID       string       `json:"loop_id"`
	PresetID     string       `json:"preset_id"`
	PresetName   string       `json:"preset_name"`
	Distribution Distribution `json:"distribution"`
}

type SelectPresetResponse struct {
	PresetID string                `json:"preset_id"`
	Counts   map[Difficulty]int    `json:"counts"`
	Tokens   map[Difficulty]string `json:"share_tokens"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
