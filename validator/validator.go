package validator

import (
	"fmt"
	"reflect"
)

// Validator 表示数据验证器接口
type Validator interface {
	Validate(data interface{}) error
}

// optionalFloat 表示可能缺失的数值字段
type optionalFloat interface {
	Float() (float64, bool)
}

// OrderValidator 表示顺序验证器，要求字段值单调不减，缺失的字段跳过
type OrderValidator struct {
	Fields []string
}

// Validate 验证字段顺序
func (ov *OrderValidator) Validate(data interface{}) error {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return fmt.Errorf("数据为空")
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return fmt.Errorf("数据必须是结构体类型, 实际为 %s", v.Kind())
	}

	var (
		prevName string
		prev     float64
		havePrev bool
	)
	for _, name := range ov.Fields {
		value, ok, err := numericField(v, name)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if havePrev && value < prev {
			return fmt.Errorf("字段 %s 的值 %g 小于字段 %s 的值 %g", name, value, prevName, prev)
		}
		prevName, prev, havePrev = name, value, true
	}

	return nil
}

// RangeValidator 表示范围验证器
type RangeValidator struct {
	Field string
	Min   float64
	Max   float64
}

// Validate 验证数据字段是否在指定范围内，缺失的字段视为通过
func (rv *RangeValidator) Validate(data interface{}) error {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return fmt.Errorf("数据为空")
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return fmt.Errorf("数据必须是结构体类型, 实际为 %s", v.Kind())
	}

	value, ok, err := numericField(v, rv.Field)
	if err != nil || !ok {
		return err
	}

	if value < rv.Min || value > rv.Max {
		return fmt.Errorf("字段 %s 的值 %g 不在范围 [%g, %g] 内", rv.Field, value, rv.Min, rv.Max)
	}

	return nil
}

func numericField(v reflect.Value, name string) (float64, bool, error) {
	field := v.FieldByName(name)
	if !field.IsValid() {
		return 0, false, fmt.Errorf("字段 %s 不存在", name)
	}

	if field.CanInterface() {
		if of, ok := field.Interface().(optionalFloat); ok {
			value, set := of.Float()
			return value, set, nil
		}
	}

	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		return field.Float(), true, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(field.Int()), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(field.Uint()), true, nil
	default:
		return 0, false, fmt.Errorf("字段 %s 不是数值类型", name)
	}
}
