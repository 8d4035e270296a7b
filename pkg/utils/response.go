package utils

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ErrorBody 错误响应结构（与后端 {"detail": "..."} 约定一致）
type ErrorBody struct {
	Detail string `json:"detail"`
}

// legacyEnvelope 旧版网关使用的包装结构 {"success":false,"error":{"message":...}}
type legacyEnvelope struct {
	Success *bool `json:"success"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// WriteJSONResponse 写入JSON响应
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// 头已写出，只能放弃
		return
	}
}

// WriteSuccessResponse 写入成功响应
func WriteSuccessResponse(w http.ResponseWriter, data interface{}) {
	WriteJSONResponse(w, http.StatusOK, data)
}

// WriteCreatedResponse 写入创建成功响应
func WriteCreatedResponse(w http.ResponseWriter, data interface{}) {
	WriteJSONResponse(w, http.StatusCreated, data)
}

// WriteErrorResponse 写入错误响应
func WriteErrorResponse(w http.ResponseWriter, statusCode int, detail string) {
	WriteJSONResponse(w, statusCode, ErrorBody{Detail: detail})
}

// WriteBadRequestResponse 写入400错误响应
func WriteBadRequestResponse(w http.ResponseWriter, detail string) {
	WriteErrorResponse(w, http.StatusBadRequest, detail)
}

// WriteUnauthorizedResponse 写入401错误响应
func WriteUnauthorizedResponse(w http.ResponseWriter, detail string) {
	WriteErrorResponse(w, http.StatusUnauthorized, detail)
}

// WriteForbiddenResponse 写入403错误响应
func WriteForbiddenResponse(w http.ResponseWriter, detail string) {
	WriteErrorResponse(w, http.StatusForbidden, detail)
}

// WriteNotFoundResponse 写入404错误响应
func WriteNotFoundResponse(w http.ResponseWriter, detail string) {
	WriteErrorResponse(w, http.StatusNotFound, detail)
}

// WriteInternalServerErrorResponse 写入500错误响应
func WriteInternalServerErrorResponse(w http.ResponseWriter, detail string) {
	WriteErrorResponse(w, http.StatusInternalServerError, detail)
}

// ParseJSONBody 解析JSON请求体
func ParseJSONBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// ErrorDetail 从错误响应体中提取可读信息
// 优先使用 detail 字段，其次兼容旧版 error.message；body 不是合法 JSON 时返回 false
func ErrorDetail(body []byte) (string, bool) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return "", false
	}

	var raw struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &raw); err == nil && len(raw.Detail) > 0 {
		if msg := detailMessage(raw.Detail); msg != "" {
			return msg, true
		}
	}

	var env legacyEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil && strings.TrimSpace(env.Error.Message) != "" {
		return env.Error.Message, true
	}

	return "", false
}

// detailMessage 处理 detail 的两种形态：字符串，或校验错误列表 [{"msg": ...}]
func detailMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return ""
	}
	msgs := make([]string, 0, len(items))
	for _, it := range items {
		if m := strings.TrimSpace(it.Msg); m != "" {
			msgs = append(msgs, m)
		}
	}
	return strings.Join(msgs, "; ")
}
