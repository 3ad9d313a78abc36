package dialer

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
)

// Param 单个表单参数
type Param struct {
	Key   string
	Value interface{}
}

// Params 有序参数列表（平台只接受 form 编码，不接受 JSON）
type Params []Param

// P 构造单个参数
func P(key string, value interface{}) Param {
	return Param{Key: key, Value: value}
}

// With 追加参数并返回新列表
func (ps Params) With(extra ...Param) Params {
	out := make(Params, 0, len(ps)+len(extra))
	out = append(out, ps...)
	return append(out, extra...)
}

// Get 读取参数（不存在返回 nil）
func (ps Params) Get(key string) interface{} {
	for _, p := range ps {
		if p.Key == key {
			return p.Value
		}
	}
	return nil
}

// reservedKeys 固定鉴权字段，调用方参数不可覆盖
var reservedKeys = map[string]bool{
	"source":   true,
	"user":     true,
	"pass":     true,
	"function": true,
}

// formValue 将参数值转换为表单字符串；nil 与空指针跳过
func formValue(v interface{}) (string, bool) {
	if v == nil {
		return "", false
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}

	switch val := rv.Interface().(type) {
	case string:
		return val, true
	case fmt.Stringer:
		return val.String(), true
	default:
		return fmt.Sprint(val), true
	}
}

// encodeForm 按顺序编码：source, user, pass, function，然后是调用方参数
func encodeForm(fixed [][2]string, params Params) string {
	var b strings.Builder
	write := func(k, v string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(v))
	}

	for _, kv := range fixed {
		write(kv[0], kv[1])
	}
	for _, p := range params {
		if reservedKeys[p.Key] {
			continue
		}
		v, ok := formValue(p.Value)
		if !ok {
			continue
		}
		write(p.Key, v)
	}

	return b.String()
}
