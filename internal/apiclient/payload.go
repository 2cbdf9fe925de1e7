package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractMessage 从错误响应体中提取可读信息
// 优先级：message → error（字符串，或对象内的 message/error/code）→ 空
func ExtractMessage(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}
	if trimmed[0] != '{' {
		if trimmed[0] == '"' {
			var s string
			if err := json.Unmarshal(trimmed, &s); err == nil {
				return strings.TrimSpace(s)
			}
		}
		return ""
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return ""
	}
	if msg := stringField(obj, "message"); msg != "" {
		return msg
	}
	errRaw, ok := obj["error"]
	if !ok {
		return ""
	}
	if msg := ExtractMessage(errRaw); msg != "" {
		return msg
	}
	var nested map[string]json.RawMessage
	if err := json.Unmarshal(errRaw, &nested); err == nil {
		return stringField(nested, "code")
	}
	return ""
}

func stringField(obj map[string]json.RawMessage, key string) string {
	raw, ok := obj[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// ExtractList 从响应中取列表，兼容 data.<key>、data 数组、裸数组三种形态
// 都不匹配时返回空列表
func ExtractList[T any](raw []byte, key string) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return []T{}, nil
	}
	if trimmed[0] == '[' {
		return decodeList[T](trimmed)
	}
	if trimmed[0] != '{' {
		return []T{}, nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	data := bytes.TrimSpace(envelope.Data)
	if len(data) == 0 {
		return []T{}, nil
	}
	if data[0] == '[' {
		return decodeList[T](data)
	}
	if data[0] != '{' {
		return []T{}, nil
	}
	var inner map[string]json.RawMessage
	if err := json.Unmarshal(data, &inner); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	list := bytes.TrimSpace(inner[key])
	if len(list) == 0 || list[0] != '[' {
		return []T{}, nil
	}
	return decodeList[T](list)
}

// ExtractObject 取 data.<key>，没有该键时退回 data 本身
func ExtractObject[T any](raw []byte, key string) (*T, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	data := bytes.TrimSpace(envelope.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	if key != "" {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(data, &inner); err == nil {
			if nested, ok := inner[key]; ok && len(bytes.TrimSpace(nested)) > 0 && !bytes.Equal(bytes.TrimSpace(nested), []byte("null")) {
				data = nested
			}
		}
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	return &out, nil
}

func decodeList[T any](raw []byte) ([]T, error) {
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
