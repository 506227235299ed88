package domain

// EligibilityRequest es la consulta en seco de una subida
type EligibilityRequest struct {
	FileName    string `json:"file_name"`
	FileSize    int64  `json:"file_size"`
	ContentType string `json:"content_type"`
}

// SubscriptionRequest cambia el plan de un usuario (uso administrativo)
type SubscriptionRequest struct {
	UserID   string `json:"user_id"`
	PlanName string `json:"plan_name"`
	Status   string `json:"status"`
}
