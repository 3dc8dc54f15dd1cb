package documents

import "compliance-backend/internal/llm"

type uploadResponse struct {
	Message     string      `json:"message"`
	DocumentID  string      `json:"document_id"`
	LLMResponse llm.Verdict `json:"llm_response"`
}

type failureDetails struct {
	DocumentID  string `json:"document_id"`
	FailedStage Stage  `json:"failed_stage"`
}

func toUploadResponse(res Result) uploadResponse {
	return uploadResponse{
		Message:     "Document uploaded successfully",
		DocumentID:  res.Document.ID,
		LLMResponse: res.Verdict,
	}
}
