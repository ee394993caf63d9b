package config

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// envBinder 按 `env` 标签把环境变量写入配置字段。
// 嵌套结构体的标签拼接为前缀，例如 STUDYFLOW_CACHE_TTL。
type envBinder struct {
	prefix string
	lookup func(string) (string, bool)
	errs   []error
}

func (b *envBinder) bind(cfg *Config) error {
	b.walk(reflect.ValueOf(cfg).Elem(), b.prefix)
	return errors.Join(b.errs...)
}

func (b *envBinder) walk(v reflect.Value, prefix string) {
	for i := range v.NumField() {
		tag := v.Type().Field(i).Tag.Get("env")
		if tag == "" || tag == "-" {
			continue
		}
		name := prefix + "_" + tag
		field := v.Field(i)

		if field.Kind() == reflect.Struct {
			b.walk(field, name)
			continue
		}
		raw, ok := b.lookup(name)
		if !ok || raw == "" {
			continue
		}
		if err := assign(field.Addr().Interface(), raw); err != nil {
			b.errs = append(b.errs, fmt.Errorf("%s=%q: %w", name, raw, err))
		}
	}
}

// assign 解析 raw 并写入 dst 指向的字段
func assign(dst any, raw string) error {
	var err error
	switch p := dst.(type) {
	case *string:
		*p = raw
	case *bool:
		*p, err = strconv.ParseBool(raw)
	case *int:
		*p, err = strconv.Atoi(raw)
	case *int64:
		*p, err = strconv.ParseInt(raw, 10, 64)
	case *float64:
		*p, err = strconv.ParseFloat(raw, 64)
	case *time.Duration:
		*p, err = time.ParseDuration(raw)
	case *[]string:
		*p = splitList(raw)
	default:
		err = fmt.Errorf("unsupported field type %T", dst)
	}
	return err
}

// splitList 逗号分隔，去掉空白项
func splitList(raw string) []string {
	var out []string
	for item := range strings.SplitSeq(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
