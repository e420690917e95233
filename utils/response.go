package utils

import "github.com/gin-gonic/gin"

// Error codes returned in the JSON error envelope.
const (
	CodeAuth401     = "AUTH_401"
	CodeRBAC403     = "RBAC_403"
	CodeTenant403   = "TENANT_403"
	CodeValidation  = "VAL_400"
	CodeNotFound    = "NOT_FOUND_404"
	CodeConflict    = "CONFLICT_409"
	CodeRateLimited = "RATE_429"
	CodeInternal    = "INTERNAL_500"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, status int, code string, err error) {
	c.JSON(status, JSONResponse{
		Status:  false,
		Code:    code,
		Message: err.Error(),
		Data:    nil,
	})
}
