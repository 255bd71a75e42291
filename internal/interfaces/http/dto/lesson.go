package dto

// OutlineRequest 大纲生成请求
type OutlineRequest struct {
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty,omitempty"`
	Purpose    string `json:"purpose,omitempty"`
}

// GenerateNotesRequest 单章笔记生成请求
type GenerateNotesRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateNotesResponse 单章笔记生成响应
type GenerateNotesResponse struct {
	Parsed string `json:"parsed"`
}

// MessageResponse 操作结果
type MessageResponse struct {
	Message string `json:"message"`
}
