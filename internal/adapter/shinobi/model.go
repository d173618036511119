package shinobi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type monitor struct {
	Mid  string `json:"mid"`
	Name string `json:"name"`
	Mode string `json:"mode"`
}

type video struct {
	Mid      string  `json:"mid"`
	Filename string  `json:"filename"`
	Time     rawText `json:"time"`
	End      rawText `json:"end"`
	Size     number  `json:"size"`
}

type shinobiEvent struct {
	Mid     string       `json:"mid"`
	Time    rawText      `json:"time"`
	Details eventDetails `json:"details"`
}

type eventDetails struct {
	Plug       string `json:"plug"`
	Name       string `json:"name"`
	Reason     string `json:"reason"`
	Confidence number `json:"confidence"`
}

// rawText 兼容字符串与数字，统一保存为字符串
type rawText string

func (r *rawText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*r = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = rawText(s)
		return nil
	}
	*r = rawText(b)
	return nil
}

// number 兼容数字与数字字符串，无法解析时为 0
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	var s rawText
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(s)), 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = number(v)
	return nil
}

func (n number) Float64() float64 { return float64(n) }

func (n number) Int64() int64 { return int64(n) }

// unwrapList 接口有时直接返回数组，有时包在 {key: [...]} 中
func unwrapList[T any](raw json.RawMessage, key string) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var out []T
	if raw[0] == '[' {
		err := json.Unmarshal(raw, &out)
		return out, err
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	inner, ok := obj[key]
	if !ok {
		return nil, fmt.Errorf("missing %q in response", key)
	}
	if string(bytes.TrimSpace(inner)) == "null" {
		return nil, nil
	}
	err := json.Unmarshal(inner, &out)
	return out, err
}
