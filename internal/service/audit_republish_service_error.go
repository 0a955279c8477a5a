package service

type AuditRepublishResponse struct {
	SuccessIDs []string `json:"success_ids,omitempty"` // IDs of records that were published to Kafka successfully
	FailedIDs  []string `json:"failed_ids,omitempty"`  // IDs of records that failed to publish to Kafka
	ErrorMsg   string   `json:"error,omitempty"`       // Error message from the audit republish service
	Message    string   `json:"message,omitempty"`     // Message from the audit republish service
}

func (r *AuditRepublishResponse) SetError(err error) {
	if err != nil {
		r.ErrorMsg = err.Error()
	}
}
