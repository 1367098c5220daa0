package push

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// CountShape 未读数主题可能出现的消息形态
type CountShape int

const (
	ShapeUnknown    CountShape = iota
	ShapeNumber                // 5
	ShapeObject                // {"count":5}
	ShapeDataObject            // {"data":{"count":5}}
	ShapeSerialized            // "5" / "{\"count\":5}" / "{\"data\":{\"count\":5}}"
)

func (s CountShape) String() string {
	switch s {
	case ShapeNumber:
		return "number"
	case ShapeObject:
		return "object"
	case ShapeDataObject:
		return "data_object"
	case ShapeSerialized:
		return "serialized"
	default:
		return "unknown"
	}
}

// CountPayload 归一化后的未读数
type CountPayload struct {
	Shape CountShape
	Count int64
}

var ErrUnknownCountShape = errors.New("unrecognized count payload")

// ParseCount 把各种形态的未读数消息归一成一个非负整数。
// 序列化字符串只解一层，内层必须是前三种形态之一。
func ParseCount(raw []byte) (CountPayload, error) {
	n, shape, err := parseCount(raw, true)
	if err != nil {
		return CountPayload{}, fmt.Errorf("%w: %s", err, truncate(raw))
	}
	return CountPayload{Shape: shape, Count: n}, nil
}

func parseCount(raw []byte, allowString bool) (int64, CountShape, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, ShapeUnknown, ErrUnknownCountShape
	}
	switch raw[0] {
	case '"':
		if !allowString {
			return 0, ShapeUnknown, ErrUnknownCountShape
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, ShapeUnknown, ErrUnknownCountShape
		}
		n, _, err := parseCount([]byte(s), false)
		if err != nil {
			return 0, ShapeUnknown, err
		}
		return n, ShapeSerialized, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return 0, ShapeUnknown, ErrUnknownCountShape
		}
		if v, ok := obj["count"]; ok {
			n, err := parseNumber(v)
			return n, ShapeObject, err
		}
		if v, ok := obj["data"]; ok {
			var inner map[string]json.RawMessage
			if err := json.Unmarshal(v, &inner); err != nil {
				return 0, ShapeUnknown, ErrUnknownCountShape
			}
			c, ok := inner["count"]
			if !ok {
				return 0, ShapeUnknown, ErrUnknownCountShape
			}
			n, err := parseNumber(c)
			return n, ShapeDataObject, err
		}
		return 0, ShapeUnknown, ErrUnknownCountShape
	default:
		n, err := parseNumber(raw)
		return n, ShapeNumber, err
	}
}

// parseNumber 接受整数或整数值的浮点（3.0），拒绝负数/小数/非数字
func parseNumber(raw []byte) (int64, error) {
	var num json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&num); err != nil {
		return 0, ErrUnknownCountShape
	}
	if dec.More() {
		return 0, ErrUnknownCountShape
	}
	if n, err := num.Int64(); err == nil {
		if n < 0 {
			return 0, ErrUnknownCountShape
		}
		return n, nil
	}
	f, err := num.Float64()
	if err != nil || f < 0 || f != math.Trunc(f) || f > math.MaxInt64 {
		return 0, ErrUnknownCountShape
	}
	return int64(f), nil
}

func truncate(b []byte) string {
	const max = 64
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
