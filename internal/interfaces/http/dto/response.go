package dto

// Response is the envelope for every API response
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo describes a failed request. Reason carries the domain code
// when it is more specific than Code.
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	Reason    string             `json:"reason,omitempty"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail names one rejected field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Meta is pagination metadata
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewSuccessResponse wraps data
func NewSuccessResponse(data any) Response {
	return Response{Success: true, Data: data}
}

// NewSuccessResponseWithMeta wraps a page of data
func NewSuccessResponseWithMeta(data any, total int64, page, pageSize int) Response {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
		},
	}
}

// NewErrorResponse builds an error envelope
func NewErrorResponse(code, message string) Response {
	return Response{Error: &ErrorInfo{Code: code, Message: message}}
}

// NewErrorResponseWithRequestID builds an error envelope tagged with the request id
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return Response{Error: &ErrorInfo{Code: code, Message: message, RequestID: requestID}}
}

// NewValidationErrorResponse builds a 400 envelope listing rejected fields
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	return Response{Error: &ErrorInfo{
		Code:      ErrCodeValidation,
		Message:   message,
		RequestID: requestID,
		Details:   details,
	}}
}

// DefaultPageSize applies when a list request does not set page_size
const DefaultPageSize = 20

// IDRequest binds an :id path parameter
type IDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}
