package middleware

import (
	"net/http"
	"strings"

	"innovator-portal/pkg/utils"
)

// ContentTypeJSON 验证请求Content-Type为application/json
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 只对带请求体的POST、PUT、PATCH请求验证Content-Type
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			contentType := r.Header.Get("Content-Type")
			if contentType == "" {
				utils.WriteErrorResponse(w, http.StatusUnsupportedMediaType, "Content-Type header is required")
				return
			}

			// 检查是否为application/json（忽略charset等参数）
			if !strings.HasPrefix(strings.ToLower(contentType), "application/json") {
				utils.WriteErrorResponse(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// MaxBodySize 限制请求体大小
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
